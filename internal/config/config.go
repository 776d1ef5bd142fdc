// Package config reads the process configuration from environment variables.
//
// Every field has a default except JWT_SECRET, so a development instance
// starts with:
//
//	JWT_SECRET=$(openssl rand -hex 32) go run ./cmd/server
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Page storage backends.
const (
	BackendFS = "fs"
	BackendS3 = "s3"
)

type Config struct {
	Port       string `env:"PORT"        envDefault:"8080"`
	PublicPort string `env:"PUBLIC_PORT" envDefault:"5000"`
	// BaseURL prefixes every public link, e.g. "http://localhost:5000/3f9a0c12".
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:5000"`
	DBPath  string `env:"DB_PATH"  envDefault:"data/smartbio.db"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Generation is disabled when OpenAIKey is empty.
	OpenAIKey         string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string        `env:"OPENAI_BASE_URL"`
	OpenAIModel       string        `env:"OPENAI_MODEL"       envDefault:"gpt-4o-mini"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"30s"`

	PageBackend string `env:"PAGE_BACKEND" envDefault:"fs"`
	PagesDir    string `env:"PAGES_DIR"    envDefault:"bios_pages"`

	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"     envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return load(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error

	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.GenerationTimeout <= 0 {
		errs = append(errs, errors.New("GENERATION_TIMEOUT must be positive"))
	}
	switch c.PageBackend {
	case BackendFS:
		if c.PagesDir == "" {
			errs = append(errs, errors.New("PAGES_DIR must not be empty"))
		}
	case BackendS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when PAGE_BACKEND=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("PAGE_BACKEND must be %q or %q, got %q", BackendFS, BackendS3, c.PageBackend))
	}
	if c.Port == c.PublicPort {
		errs = append(errs, errors.New("PORT and PUBLIC_PORT must differ"))
	}

	return errors.Join(errs...)
}
