// Package userconfig reads and writes the CLI's per-user settings in
// ~/.config/taskflow/config.yaml.
package userconfig

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "taskflow"
	configFileName = "config.yaml"

	// EnvAPIBaseURL overrides the configured API base URL
	EnvAPIBaseURL = "TASKFLOW_API_BASE_URL"

	// DefaultAPIBaseURL is used when neither the environment nor the file sets one
	DefaultAPIBaseURL = "https://task-flow-app-ibcu.onrender.com/api/"
)

// UserConfig represents the user's local configuration
type UserConfig struct {
	APIBaseURL string `yaml:"api_base_url,omitempty"`
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", configDirName)
	return filepath.Join(configDir, configFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// SetAPIBaseURL validates and stores the API base URL
func SetAPIBaseURL(raw string) error {
	normalized, err := NormalizeBaseURL(raw)
	if err != nil {
		return err
	}

	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.APIBaseURL = normalized
	return Save(cfg)
}

// ResolveBaseURL returns the API base URL: the environment first, then the
// config file, then DefaultAPIBaseURL
func ResolveBaseURL() (string, error) {
	if env := strings.TrimSpace(os.Getenv(EnvAPIBaseURL)); env != "" {
		return NormalizeBaseURL(env)
	}

	cfg, err := Load()
	if err != nil {
		return "", err
	}
	if cfg.APIBaseURL != "" {
		return NormalizeBaseURL(cfg.APIBaseURL)
	}

	return DefaultAPIBaseURL, nil
}

// NormalizeBaseURL checks raw is an absolute http(s) URL and gives it a
// trailing slash
func NormalizeBaseURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid API base URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid API base URL %q: must be an absolute http(s) URL", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String(), nil
}
