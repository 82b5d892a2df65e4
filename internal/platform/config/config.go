package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL       = "https://schools.mybrightwheel.com/api/v1/"
	DefaultClientVersion = "106"
	DefaultUserAgent     = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
)

type Config struct {
	AppDataPath string      `yaml:"-"`
	ConfigPath  string      `yaml:"-"`
	DBPath      string      `yaml:"db_path"`
	LogLevel    string      `yaml:"log_level"`
	API         APIConfig   `yaml:"api"`
	Media       MediaConfig `yaml:"media"`
}

type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	ClientVersion  string `yaml:"client_version"`
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type MediaConfig struct {
	Dir          string   `yaml:"dir"`
	ExiftoolPath string   `yaml:"exiftool_path"`
	Latitude     *float64 `yaml:"latitude"`
	Longitude    *float64 `yaml:"longitude"`
}

// New returns defaults for appDataPath overlaid with the YAML file at configPath.
// An empty configPath means <appDataPath>/config.yaml; a missing file is not an error.
func New(appDataPath, configPath string) (Config, error) {
	if appDataPath == "" {
		return Config{}, fmt.Errorf("app data path is required")
	}
	if configPath == "" {
		configPath = filepath.Join(appDataPath, "config.yaml")
	}
	cfg := Config{
		AppDataPath: appDataPath,
		ConfigPath:  configPath,
		DBPath:      filepath.Join(appDataPath, "feedvault.db"),
		LogLevel:    "info",
		API: APIConfig{
			BaseURL:       DefaultBaseURL,
			ClientVersion: DefaultClientVersion,
			UserAgent:     DefaultUserAgent,
		},
		Media: MediaConfig{
			Dir:          "media",
			ExiftoolPath: "exiftool",
		},
	}
	raw, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", configPath, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(appDataPath, "feedvault.db")
	} else if !filepath.IsAbs(cfg.DBPath) {
		cfg.DBPath = filepath.Join(appDataPath, cfg.DBPath)
	}
	if cfg.API.TimeoutSeconds < 0 {
		return Config{}, fmt.Errorf("api.timeout_seconds must not be negative")
	}
	return cfg, nil
}
