package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrConfigExists is returned by WriteSample when the target file is already present.
var ErrConfigExists = errors.New("configuration file already exists")

//go:embed sample.json
var sample []byte

// Sample returns the template written by the init command.
func Sample() []byte {
	return sample
}

// HomePath returns $HOME/.toggl2jira.json.
func HomePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// WriteSample creates path with the sample configuration. It never overwrites
// an existing file.
func WriteSample(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	if _, err := f.Write(sample); err != nil {
		f.Close()
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return f.Close()
}
