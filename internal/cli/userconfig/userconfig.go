package userconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "hireboard"
	configFileName = "config.yaml"
)

// UserConfig represents the user's local configuration stored in
// ~/.config/hireboard/config.yaml
type UserConfig struct {
	// LastUsername is offered as the default at the login prompt
	LastUsername string `yaml:"last_username,omitempty"`
	// APIBaseURL overrides HIREBOARD_API_BASE_URL when set
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

	// If config doesn't exist, return empty config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
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

	// Create config directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
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

// SetLastUsername remembers the username of the last successful login
func SetLastUsername(username string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.LastUsername = username
	return Save(cfg)
}

// GetLastUsername returns the remembered username, or empty string if not set
func GetLastUsername() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	return cfg.LastUsername, nil
}

// SetAPIBaseURL stores a backend override; an empty value removes it
func SetAPIBaseURL(baseURL string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.APIBaseURL = baseURL
	return Save(cfg)
}
