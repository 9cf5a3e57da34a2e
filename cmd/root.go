package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"github.com/danielolaszy/toggl2jira/internal/config"
	"github.com/danielolaszy/toggl2jira/internal/jira"
	"github.com/danielolaszy/toggl2jira/internal/logging"
	"github.com/danielolaszy/toggl2jira/internal/pipeline"
	"github.com/danielolaszy/toggl2jira/internal/toggl"
)

var (
	cfgFile  string
	timespan int
	since    string
	speed    bool
	verbose  bool
	dryRun   bool
)

var rootCmd = &cobra.Command{
	Use:   "toggl2jira",
	Short: "Push Toggl time entries to Jira Tempo timesheets",
	Long: `toggl2jira reads finished Toggl time entries and logs them as Tempo worklogs in Jira.

The Jira issue key is taken from the start of the entry description (e.g. "MMP-42 - fix login")
or from the globalReplacements rules of the configuration file. Entries for the MMP, UMP,
INT-24 and INT-25 keys go to the united Jira, every other key goes to the wt Jira.

Pushed entries are tagged "_logged" on Toggl so they are not logged twice.
Running entries and entries without an issue key are skipped.`,
	Example: `
  # Create the configuration file in the home folder
  toggl2jira init

  # Push entries of the default time span
  toggl2jira

  # Push entries of the last 3 days and print the execution time
  toggl2jira -t 3 -s

  # Show what would be pushed since a given date
  toggl2jira --since 2021-01-25 --dry-run
`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSync,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./"+config.FileName+", then $HOME/"+config.FileName+")")

	rootCmd.Flags().IntVarP(&timespan, "timespan", "t", 0, "Number of days to retrieve time entries from Toggl (default from config)")
	rootCmd.Flags().StringVar(&since, "since", "", "Retrieve time entries started on or after this date")
	rootCmd.Flags().BoolVarP(&speed, "speed", "s", false, "Print script execution times")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print verbose output messages")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be pushed without writing to Jira or Toggl")
	rootCmd.MarkFlagsMutuallyExclusive("timespan", "since")

	rootCmd.AddCommand(initCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	started := time.Now()
	if verbose {
		logging.EnableVerbose()
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		_ = cmd.Help()
		return err
	}

	logging.Debug("configuration loaded",
		"toggl_url", cfg.Toggl.URL,
		"toggl_token", logging.MaskSensitive(cfg.Toggl.APIToken),
		"issue_rules", len(cfg.GlobalReplacements.IssueID),
		"project_rules", len(cfg.GlobalReplacements.ProjectID))

	start, err := startDate(cmd, cfg, started)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	syncer, err := newSyncer(cfg, out)
	if err != nil {
		return err
	}

	syncer.Run(cmd.Context(), start)

	if speed || verbose {
		fmt.Fprintf(out, "Total execution time: %s\n", time.Since(started).Round(time.Millisecond))
	}
	return nil
}

// startDate picks the lower bound of the Toggl query: --since, else local
// midnight --timespan (or the configured default) days ago.
func startDate(cmd *cobra.Command, cfg *config.Config, now time.Time) (time.Time, error) {
	if since != "" {
		parsed, err := dateparse.ParseIn(since, now.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --since date %q: %w", since, err)
		}
		return parsed, nil
	}

	days := cfg.Toggl.DefaultTimeSpan
	if cmd.Flags().Changed("timespan") {
		days = timespan
	}
	// A negative span moves the window start into the future.
	return toggl.LookbackStart(now, days), nil
}

func newSyncer(cfg *config.Config, out io.Writer) (*pipeline.Syncer, error) {
	togglClient, err := toggl.NewClient(toggl.ClientConfig{
		BaseURL:  cfg.Toggl.URL,
		APIToken: cfg.Toggl.APIToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize toggl client: %w", err)
	}

	unitedClient, err := jira.NewUnitedClient(cfg.Jira.United)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize united jira client: %w", err)
	}

	wtClient, err := jira.NewWTClient(cfg.Jira.WT)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize wt jira client: %w", err)
	}

	return pipeline.New(pipeline.Options{
		Source:       togglClient,
		United:       unitedClient,
		WT:           wtClient,
		Replacements: cfg.GlobalReplacements,
		Author:       cfg.Jira.United.Username,
		Worker:       cfg.Jira.WT.Worker,
		Out:          out,
		DryRun:       dryRun,
	}), nil
}
