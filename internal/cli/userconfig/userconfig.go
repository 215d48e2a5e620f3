package userconfig

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "lifecycle"
	configFileName = "config.yaml"
)

// Server is a backend the CLI can talk to
type Server struct {
	Alias string `yaml:"alias"`
	URL   string `yaml:"url"` // Backend origin; the API lives under /api
}

// UserConfig represents the user's local configuration stored in ~/.config/lifecycle/config.yaml
type UserConfig struct {
	Servers        []Server `yaml:"servers"`
	SelectedServer string   `yaml:"selected_server,omitempty"`
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
	if errors.Is(err, os.ErrNotExist) {
		// If config doesn't exist, return empty config
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

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// FindServer looks a server up by URL first, then by alias
func (c *UserConfig) FindServer(urlOrAlias string) (*Server, bool) {
	normalized := NormalizeURL(urlOrAlias)
	for i := range c.Servers {
		if c.Servers[i].URL == normalized {
			return &c.Servers[i], true
		}
	}
	for i := range c.Servers {
		if c.Servers[i].Alias == urlOrAlias {
			return &c.Servers[i], true
		}
	}
	return nil, false
}

// AddServer registers a server, replacing any entry with the same alias
func (c *UserConfig) AddServer(alias, rawURL string) (*Server, error) {
	if alias == "" {
		return nil, fmt.Errorf("alias is required")
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("server URL must be an absolute http(s) URL, got %q", rawURL)
	}

	server := Server{Alias: alias, URL: NormalizeURL(rawURL)}
	for i := range c.Servers {
		if c.Servers[i].Alias == alias {
			c.Servers[i] = server
			return &c.Servers[i], nil
		}
	}

	c.Servers = append(c.Servers, server)
	return &c.Servers[len(c.Servers)-1], nil
}

// SetSelectedServer updates the selected server URL and saves the config
func SetSelectedServer(serverURL string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.SelectedServer = serverURL
	return Save(cfg)
}

// NormalizeURL drops trailing slashes so URLs compare and key consistently
func NormalizeURL(rawURL string) string {
	return strings.TrimRight(strings.TrimSpace(rawURL), "/")
}
