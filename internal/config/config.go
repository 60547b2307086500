package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	DataDir         string `mapstructure:"DATA_DIR"`
	DatabasePath    string `mapstructure:"DATABASE_PATH"`
	HTTPAddr        string `mapstructure:"HTTP_ADDR"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	WeddingDate     string `mapstructure:"WEDDING_DATE"`
	WeddingLocation string `mapstructure:"WEDDING_LOCATION"`
	BrideName       string `mapstructure:"BRIDE_NAME"`
	GroomName       string `mapstructure:"GROOM_NAME"`
}

// WhatsAppDataDir is where the WhatsApp session store lives
func (c *Config) WhatsAppDataDir() string {
	return filepath.Join(c.DataDir, "whatsapp")
}

// LoadConfig loads configuration from an optional .env file, environment variables, or defaults
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("DATABASE_PATH", "")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("WEDDING_DATE", "Saturday, January 1, 2025")
	v.SetDefault("WEDDING_LOCATION", "Venue TBD")
	v.SetDefault("BRIDE_NAME", "Bride")
	v.SetDefault("GROOM_NAME", "Groom")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(cfg.DataDir, "seating.db")
	}
	return cfg, nil
}
