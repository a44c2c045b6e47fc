package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds all process-level daemon configuration. Domain settings
// (scan cadence, feature toggles) live in the store's settings table, not
// here.
type Config struct {
	DataDir    string `json:"data_dir"`
	SocketPath string `json:"socket_path"`
	GitBinary  string `json:"git_binary"`
	GrokModel  string `json:"grok_model"`
}

// DefaultDataDir returns the default data directory (~/.sixarms).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".sixarms")
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	dataDir := DefaultDataDir()
	return &Config{
		DataDir:    dataDir,
		SocketPath: filepath.Join(dataDir, "sixarmsd.sock"),
		GitBinary:  "git",
	}
}

// Load reads configuration from a JSON file, falling back to defaults
// for any unset fields. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	var overrides Config
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, err
	}

	// The socket path follows an overridden data dir unless it is itself
	// overridden.
	if overrides.DataDir != "" {
		cfg.DataDir = overrides.DataDir
		cfg.SocketPath = filepath.Join(cfg.DataDir, "sixarmsd.sock")
	}
	if overrides.SocketPath != "" {
		cfg.SocketPath = overrides.SocketPath
	}
	if overrides.GitBinary != "" {
		cfg.GitBinary = overrides.GitBinary
	}
	if overrides.GrokModel != "" {
		cfg.GrokModel = overrides.GrokModel
	}

	return cfg, nil
}

// EnsureDataDir creates the data directory if it does not exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}

// ConfigPath returns the default path to the config file.
func ConfigPath() string {
	return filepath.Join(DefaultDataDir(), "config.json")
}
