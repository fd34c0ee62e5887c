package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/acmgrab/config.yml.
type GlobalConfig struct {
	WorkspacePath string  `yaml:"workspace_path,omitempty"`
	BaseURL       string  `yaml:"base_url,omitempty"`
	UserAgent     string  `yaml:"user_agent,omitempty"`
	PageSize      int     `yaml:"page_size,omitempty"`
	RatePerSec    float64 `yaml:"rate_per_sec,omitempty"`
	SettleSeconds int     `yaml:"settle_seconds,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "acmgrab"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// DefaultBaseURL is the search endpoint origin.
const DefaultBaseURL = "https://dl.acm.org"

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/acmgrab/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.WorkspacePath != "" {
		cfg.WorkspacePath = ExpandPath(cfg.WorkspacePath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetWorkspacePath returns the configured workspace path from global config.
func GetWorkspacePath() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.WorkspacePath
}

// GetBaseURL returns the configured search origin, or the default.
func GetBaseURL() string {
	cfg, _ := LoadGlobalConfig()
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	return DefaultBaseURL
}

// ErrWorkspaceNotConfigured is returned when workspace_path is not set in config.
var ErrWorkspaceNotConfigured = errors.New("workspace_path not configured")

// ErrWorkspaceNotExist is returned when the configured workspace_path doesn't exist.
var ErrWorkspaceNotExist = errors.New("workspace_path does not exist")

// ValidateWorkspacePath returns the workspace path from global config after
// validation. Returns an error if not configured or if the path doesn't exist.
func ValidateWorkspacePath() (string, error) {
	path := GetWorkspacePath()
	if path == "" {
		return "", ErrWorkspaceNotConfigured
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrWorkspaceNotExist, path)
	}
	return path, nil
}

// FindWorkspace resolves the workspace to operate in: an explicit override
// first, then the current directory when it is initialized, then the globally
// configured path.
func FindWorkspace(override string) (string, error) {
	if override != "" {
		return ExpandPath(override), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if IsWorkspace(cwd) {
		return cwd, nil
	}
	if path, err := ValidateWorkspacePath(); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("no workspace found in %s\n\n%s", cwd, HelpfulConfigMessage())
}

// HelpfulConfigMessage returns a helpful message when workspace_path is not
// configured.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No crawl workspace found.

Tip: Create %s to set a default workspace:
  mkdir -p %s
  echo 'workspace_path: /path/to/your/workspace' > %s

Or pass --workspace / run acmgrab init in the directory you want to use.`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
