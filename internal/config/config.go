// Package config loads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port      string `env:"KRETS_PORT" envDefault:"8080"`
	DBPath    string `env:"KRETS_DB_PATH" envDefault:"krets.db"`
	BaseURL   string `env:"KRETS_BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel  string `env:"KRETS_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"KRETS_LOG_FORMAT" envDefault:"text"`

	// Email. When the Postmark token is empty the portal logs magic links
	// to the console instead of sending mail.
	PostmarkToken string `env:"KRETS_POSTMARK_TOKEN"`
	FromEmail     string `env:"KRETS_FROM_EMAIL" envDefault:"no-reply@localhost"`

	// Profile image storage (S3-compatible). Image upload is disabled when
	// the bucket is not configured.
	S3Endpoint  string `env:"KRETS_S3_ENDPOINT"`
	S3Region    string `env:"KRETS_S3_REGION" envDefault:"eu-north-1"`
	S3Bucket    string `env:"KRETS_S3_BUCKET"`
	S3AccessKey string `env:"KRETS_S3_ACCESS_KEY"`
	S3SecretKey string `env:"KRETS_S3_SECRET_KEY"`
}

// Load reads a .env file if present, then parses KRETS_* variables.
func Load() (Config, error) {
	// The .env file is optional; a missing file is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
