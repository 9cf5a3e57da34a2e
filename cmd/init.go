package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/toggl2jira/internal/config"
)

// initCmd writes the sample configuration file to the home folder.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the " + config.FileName + " configuration file in the home folder",
	Long: `Create $HOME/` + config.FileName + ` from the sample configuration.

Fill in the Toggl API token and the credentials of both Jira deployments afterwards.
An existing configuration file is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.HomePath()
		if err != nil {
			return err
		}
		return writeSampleConfig(cmd.OutOrStdout(), path)
	},
}

func writeSampleConfig(out io.Writer, path string) error {
	err := config.WriteSample(path)
	if errors.Is(err, config.ErrConfigExists) {
		fmt.Fprintf(out, "Aborted.\nConfiguration file already exists in %s\n", path)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Configuration file created in %s\n", path)
	return nil
}
