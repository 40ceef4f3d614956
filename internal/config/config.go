package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	API  APIConfig  `mapstructure:"api"`
	UI   UIConfig   `mapstructure:"ui"`
	Stub StubConfig `mapstructure:"stub"`
	Log  LogConfig  `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL        string  `mapstructure:"base_url" envconfig:"API_BASE_URL"`
	StorageBaseURL string  `mapstructure:"storage_base_url" envconfig:"STORAGE_BASE_URL"`
	Token          string  `mapstructure:"token" envconfig:"API_TOKEN"`
	CSRFPath       string  `mapstructure:"csrf_path" envconfig:"CSRF_PATH"`
	RequestsPerSec float64 `mapstructure:"requests_per_sec" envconfig:"REQUESTS_PER_SEC"`
}

type UIConfig struct {
	ItemsPerPage int    `mapstructure:"items_per_page" envconfig:"ITEMS_PER_PAGE"`
	SkeletonRows int    `mapstructure:"skeleton_rows" envconfig:"SKELETON_ROWS"`
	Language     string `mapstructure:"language" envconfig:"LANGUAGE"`
}

type StubConfig struct {
	Port int `mapstructure:"port" envconfig:"STUB_PORT"`
}

type LogConfig struct {
	File  string `mapstructure:"file" envconfig:"LOG_FILE"`
	Level string `mapstructure:"level" envconfig:"LOG_LEVEL"`
}

// LoadConfig reads config.yaml (cwd, then ./config), then applies
// LABADMIN_* environment overrides. A missing file is fine, the
// defaults plus environment are enough to run against the stub.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("labadmin", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("api.base_url", "http://localhost:8090")
	viper.SetDefault("api.csrf_path", "/sanctum/csrf-cookie")
	viper.SetDefault("api.requests_per_sec", 10.0)
	viper.SetDefault("ui.items_per_page", 10)
	viper.SetDefault("ui.skeleton_rows", 6)
	viper.SetDefault("ui.language", "fr")
	viper.SetDefault("stub.port", 8090)
	viper.SetDefault("log.file", "labadmin.log")
	viper.SetDefault("log.level", "info")
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.UI.ItemsPerPage < 1 {
		return fmt.Errorf("ui.items_per_page must be positive, got %d", c.UI.ItemsPerPage)
	}
	if c.API.StorageBaseURL == "" {
		c.API.StorageBaseURL = strings.TrimSuffix(c.API.BaseURL, "/") + "/storage"
	}
	return nil
}
