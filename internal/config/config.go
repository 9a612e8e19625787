// Package config loads the optional config file and the required API
// credential.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNoAPIKey means neither the environment nor the config file carries a
// Gemini API key.
var ErrNoAPIKey = errors.New("GEMINI_API_KEY not set (export it or add api_key to ~/.trolyvanban/config.yaml)")

// Config holds the runtime settings. Everything except the API key has a
// working default.
type Config struct {
	APIKey     string `yaml:"api_key,omitempty"`
	Model      string `yaml:"model,omitempty"`
	TitleModel string `yaml:"title_model,omitempty"`
	ListenAddr string `yaml:"listen_addr,omitempty"`
	DataDir    string `yaml:"data_dir,omitempty"`
}

// Load reads ~/.trolyvanban/config.yaml when present and applies environment
// overrides. A missing file degrades to defaults; a corrupt file is an error
// naming the file.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}
	return LoadFrom(filepath.Join(home, ".trolyvanban", "config.yaml"))
}

// LoadFrom reads the config from a specific path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No config file, defaults apply.
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.TitleModel == "" {
		cfg.TitleModel = cfg.Model
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:0"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Dir(path)
	}
	return cfg, nil
}
