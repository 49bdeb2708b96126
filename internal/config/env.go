package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds overrides read from TUIHANZI_* environment variables.
type EnvConfig struct {
	Level       *string  `env:"TUIHANZI_LEVEL"`
	Padding     *float64 `env:"TUIHANZI_PADDING"`
	Supersample *int     `env:"TUIHANZI_SUPERSAMPLE"`
	GuideURL    *string  `env:"TUIHANZI_GUIDE_URL"`
	CacheSize   *int     `env:"TUIHANZI_GUIDE_CACHE_SIZE"`
	Offline     *bool    `env:"TUIHANZI_OFFLINE"`
	CatalogPath *string  `env:"TUIHANZI_CATALOG"`
	SpeechCmd   *string  `env:"TUIHANZI_SPEECH_COMMAND"`
	LogLevel    *string  `env:"TUIHANZI_LOG_LEVEL"`
}

// ParseEnv loads overrides from the environment.
func ParseEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("failed to parse env: %w", err)
	}
	return cfg, nil
}

// Apply overlays the environment values set on top of the file config.
func (e EnvConfig) Apply(cfg FileConfig) FileConfig {
	cfg.Practice.Level = pick(e.Level, cfg.Practice.Level)
	cfg.Practice.Padding = pick(e.Padding, cfg.Practice.Padding)
	cfg.Practice.Supersample = pick(e.Supersample, cfg.Practice.Supersample)
	cfg.Guide.BaseURL = pick(e.GuideURL, cfg.Guide.BaseURL)
	cfg.Guide.CacheSize = pick(e.CacheSize, cfg.Guide.CacheSize)
	cfg.Guide.Offline = pick(e.Offline, cfg.Guide.Offline)
	cfg.Catalog.Path = pick(e.CatalogPath, cfg.Catalog.Path)
	cfg.Speech.Command = pick(e.SpeechCmd, cfg.Speech.Command)
	cfg.Log.Level = pick(e.LogLevel, cfg.Log.Level)
	return cfg
}

// Load reads the config file and applies environment overrides.
func Load(path string) (FileConfig, error) {
	fileCfg, err := LoadConfig(path)
	if err != nil {
		return FileConfig{}, err
	}
	envCfg, err := ParseEnv()
	if err != nil {
		return FileConfig{}, err
	}
	return envCfg.Apply(fileCfg), nil
}

func pick[T any](override, base *T) *T {
	if override != nil {
		return override
	}
	return base
}
