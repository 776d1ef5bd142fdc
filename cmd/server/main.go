// Package main is the entry point for the SmartBio server.
//
// The main package is kept minimal. Its job is to:
//  1. Read configuration (environment variables, see internal/config)
//  2. Create the logger
//  3. Hand both to internal/server and start it
//
// Example:
//
//	JWT_SECRET=$(openssl rand -hex 32) \
//	OPENAI_API_KEY=sk-... \
//	LOG_FORMAT=pretty \
//	go run ./cmd/server
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sakif/smartbio/internal/config"
	"github.com/sakif/smartbio/internal/llm"
	"github.com/sakif/smartbio/internal/logging"
	"github.com/sakif/smartbio/internal/pages"
	"github.com/sakif/smartbio/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// === 2. SET UP LOGGING ===
	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// === 3. CREATE AND START THE SERVER ===
	srv, err := server.New(serverConfig(cfg), logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		return err
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func serverConfig(cfg config.Config) server.Config {
	return server.Config{
		Port:       cfg.Port,
		PublicPort: cfg.PublicPort,
		BaseURL:    cfg.BaseURL,
		DBPath:     cfg.DBPath,
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		OpenAI: llm.Config{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		},
		GenerationTimeout: cfg.GenerationTimeout,
		PageBackend:       cfg.PageBackend,
		PagesDir:          cfg.PagesDir,
		S3: pages.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		},
	}
}
