// Package config provides centralized configuration management for the application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	// FileName is the configuration file looked up in the working directory and in $HOME.
	FileName = ".toggl2jira.json"

	configName = ".toggl2jira"
	envPrefix  = "TOGGL2JIRA"
)

// scalarKeys lists the settings that may be overridden from the environment,
// e.g. TOGGL2JIRA_TOGGL_API_TOKEN.
var scalarKeys = []string{
	"toggl.url",
	"toggl.api_token",
	"toggl.default_time_span",
	"jira.united.url",
	"jira.united.usr",
	"jira.united.pwd",
	"jira.wt.url",
	"jira.wt.usr",
	"jira.wt.pwd",
	"jira.wt.worker",
}

// Config holds all configuration parameters for the application.
type Config struct {
	Toggl TogglConfig `mapstructure:"toggl"`
	Jira  JiraConfig  `mapstructure:"jira"`

	// GlobalReplacements is decoded separately so rule order and key case survive.
	GlobalReplacements Replacements `mapstructure:"-" validate:"-"`
}

// TogglConfig holds Toggl specific configuration.
type TogglConfig struct {
	URL             string `mapstructure:"url" validate:"required,url"`
	APIToken        string `mapstructure:"api_token" validate:"required"`
	DefaultTimeSpan int    `mapstructure:"default_time_span" validate:"gte=0"`
}

// JiraConfig holds the two Jira deployments worklogs are pushed to.
type JiraConfig struct {
	United JiraTarget `mapstructure:"united"`
	WT     JiraTarget `mapstructure:"wt"`
}

// JiraTarget holds the connection settings of a single Jira deployment.
type JiraTarget struct {
	URL      string `mapstructure:"url" validate:"required,url"`
	Username string `mapstructure:"usr" validate:"required"`
	Password string `mapstructure:"pwd" validate:"required"`
	// Worker is the Tempo worker key; only the wt deployment uses it.
	Worker string `mapstructure:"worker"`
}

// Load reads the configuration file at path. When path is empty the file is
// looked up as ./.toggl2jira.json first and $HOME/.toggl2jira.json second.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("missing configuration file: %w", err)
	}

	raw, err := os.ReadFile(v.ConfigFileUsed())
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	return decode(v, raw)
}

// LoadContent parses configuration from raw JSON content.
func LoadContent(content []byte) (*Config, error) {
	v := newViper()
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return decode(v, content)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range scalarKeys {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(key)
	}
	v.SetDefault("toggl.default_time_span", 1)
	return v
}

func decode(v *viper.Viper, raw []byte) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Toggl.URL = trimURL(cfg.Toggl.URL)
	cfg.Jira.United.URL = trimURL(cfg.Jira.United.URL)
	cfg.Jira.WT.URL = trimURL(cfg.Jira.WT.URL)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	replacements, err := parseReplacements(raw)
	if err != nil {
		return nil, err
	}
	cfg.GlobalReplacements = replacements

	return &cfg, nil
}

// validateConfig ensures that all required configuration values are provided.
func validateConfig(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func trimURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}
