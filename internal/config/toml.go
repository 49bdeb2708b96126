// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Guide    GuideConfig    `toml:"guide"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Speech   SpeechConfig   `toml:"speech"`
	Log      LogConfig      `toml:"log"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Level       *string  `toml:"level"`
	Padding     *float64 `toml:"padding"`
	Supersample *int     `toml:"supersample"`
}

// GuideConfig maps stroke data settings.
type GuideConfig struct {
	BaseURL   *string `toml:"base-url"`
	CacheSize *int    `toml:"cache-size"`
	Offline   *bool   `toml:"offline"`
}

// CatalogConfig maps character list settings.
type CatalogConfig struct {
	Path *string `toml:"path"`
}

// SpeechConfig maps text-to-speech settings.
type SpeechConfig struct {
	Command *string `toml:"command"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
