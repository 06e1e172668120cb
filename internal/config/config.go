// Package config loads the settings of a report run from an optional YAML file,
// a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// MinDaysBack and MaxDaysBack bound the lookback window.
	MinDaysBack = 1
	MaxDaysBack = 90
	// DefaultDaysBack is used when no window is given on the command line.
	DefaultDaysBack = 7
	// DefaultTitleWidth is the display width titles are padded or cut to.
	DefaultTitleWidth = 60
)

// Fetch modes.
const (
	ModeEvents  = "events"
	ModeSearch  = "search"
	ModeGraphQL = "graphql"
)

// Environment variables read by Load.
const (
	EnvToken      = "GITHUB_TOKEN"
	EnvConfigPath = "GH_REVIEW_ACTIVITY_CONFIG"
	EnvMode       = "GH_REVIEW_ACTIVITY_MODE"
)

// ErrMissingToken is returned by Validate when no GitHub token is configured.
var ErrMissingToken = errors.New(EnvToken + " environment variable is not set")

// Config holds the settings of a report run.
type Config struct {
	GitHub GitHubConfig `yaml:"github"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

type GitHubConfig struct {
	// Token is never read from the YAML file.
	Token           string `yaml:"-"`
	Mode            string `yaml:"mode"`
	WaitOnRateLimit bool   `yaml:"wait_on_rate_limit"`
}

type OutputConfig struct {
	TitleWidth int  `yaml:"title_width"`
	Summary    bool `yaml:"summary"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		GitHub: GitHubConfig{Mode: ModeSearch},
		Output: OutputConfig{TitleWidth: DefaultTitleWidth, Summary: true},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
// path takes precedence over GH_REVIEW_ACTIVITY_CONFIG. A .env file in the working
// directory is loaded first when present; variables already set are not overridden.
func Load(path string) (Config, error) {
	cfg := Default()

	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.GitHub.Token = strings.TrimSpace(os.Getenv(EnvToken))
	if mode := os.Getenv(EnvMode); mode != "" {
		cfg.GitHub.Mode = mode
	}

	return cfg, nil
}

// Validate checks the configuration before any network call is made.
func (c Config) Validate() error {
	if c.GitHub.Token == "" {
		return ErrMissingToken
	}
	switch c.GitHub.Mode {
	case ModeEvents, ModeSearch, ModeGraphQL:
	default:
		return fmt.Errorf("unknown mode %q (want %s, %s or %s)", c.GitHub.Mode, ModeEvents, ModeSearch, ModeGraphQL)
	}
	if c.Output.TitleWidth < 4 {
		return fmt.Errorf("title width must be at least 4, got %d", c.Output.TitleWidth)
	}
	return nil
}

// ValidateDaysBack checks that days lies within the supported lookback window.
func ValidateDaysBack(days int) error {
	if days < MinDaysBack || days > MaxDaysBack {
		return fmt.Errorf("days must be between %d and %d, got %d", MinDaysBack, MaxDaysBack, days)
	}
	return nil
}

var loginPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,38}$`)

// ValidateUsername checks that user is a well-formed GitHub login.
func ValidateUsername(user string) error {
	if !loginPattern.MatchString(user) {
		return fmt.Errorf("invalid GitHub username %q", user)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
