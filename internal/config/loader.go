package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".leadscan"

// EnvAPIKey is the environment variable consulted for the render-service
// API key when the config file does not set one.
const EnvAPIKey = "LEADSCAN_API_KEY"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the structure of the .leadscan configuration file. All fields
// are optional; anything unset keeps its Config default.
type File struct {
	// APIKey authenticates against the render service.
	APIKey string `yaml:"api_key,omitempty"`

	// DataDir overrides the XDG data directory.
	DataDir string `yaml:"data_dir,omitempty"`

	// PageBudget overrides the default page budget.
	PageBudget int `yaml:"page_budget,omitempty"`

	// FetchTimeout, ItemDelay, PollInterval, and StallTimeout accept
	// Go duration strings ("90s", "3m").
	FetchTimeout string `yaml:"fetch_timeout,omitempty"`
	ItemDelay    string `yaml:"item_delay,omitempty"`
	PollInterval string `yaml:"poll_interval,omitempty"`
	StallTimeout string `yaml:"stall_timeout,omitempty"`

	// UserAgent overrides the render-request User-Agent.
	UserAgent string `yaml:"user_agent,omitempty"`
}

// LoadConfigFile loads the yaml configuration from path. If the file does
// not exist it returns ErrConfigNotFound; callers decide whether that is
// fatal based on whether the path was explicitly requested.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile resolves the configuration file path:
//  1. an explicitly specified path wins (empty return if it is missing)
//  2. .leadscan in the current directory
//  3. .leadscan in the XDG config directory
//  4. .leadscan in the home directory
//
// Returns empty string when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	candidate := filepath.Join(XDGConfigDir(), DefaultConfigFile)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

// Apply merges the file's values into cfg. Unset file fields leave the
// existing value alone. The environment API key fills in only when
// neither the flag nor the file set one.
func (cf *File) Apply(cfg *Config) error {
	if cf.APIKey != "" {
		cfg.RenderAPIKey = cf.APIKey
	}
	if cf.DataDir != "" {
		cfg.DataDir = cf.DataDir
	}
	if cf.PageBudget > 0 {
		cfg.PageBudget = cf.PageBudget
	}
	if cf.UserAgent != "" {
		cfg.UserAgent = cf.UserAgent
	}

	durations := []struct {
		raw string
		dst *time.Duration
	}{
		{cf.FetchTimeout, &cfg.FetchTimeout},
		{cf.ItemDelay, &cfg.ItemDelay},
		{cf.PollInterval, &cfg.PollInterval},
		{cf.StallTimeout, &cfg.StallTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return err
		}
		*d.dst = parsed
	}
	return nil
}

// ResolveAPIKey fills the API key from the environment when it is still
// empty after flags and the config file.
func ResolveAPIKey(cfg *Config) {
	if cfg.RenderAPIKey == "" {
		cfg.RenderAPIKey = os.Getenv(EnvAPIKey)
	}
}
