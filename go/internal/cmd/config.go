package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/mcdev12/auctiondraft/go/internal/dbconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	backendFile     = "file"
	backendPostgres = "postgres"
)

// Config is the process configuration read from the environment.
type Config struct {
	DataDir        string `env:"DRAFT_DATA_DIR" envDefault:"data"`
	ConfigFile     string `env:"DRAFT_CONFIG_FILE"`
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"file"`
	AdminPort      int    `env:"ADMIN_PORT" envDefault:"8175"`
	PublicPort     int    `env:"PUBLIC_PORT" envDefault:"8176"`
	NATSURL        string `env:"NATS_URL"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`

	DB dbconfig.Config
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageBackend {
	case backendFile, backendPostgres:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", backendFile, backendPostgres, c.StorageBackend)
	}
	if c.AdminPort == c.PublicPort {
		return fmt.Errorf("ADMIN_PORT and PUBLIC_PORT must differ (both %d)", c.AdminPort)
	}
	if c.DataDir == "" {
		return fmt.Errorf("DRAFT_DATA_DIR must not be empty")
	}
	return nil
}

// ConfigPath is the draft configuration document. It is always a local file, YAML or
// JSON by extension.
func (c Config) ConfigPath() string {
	if c.ConfigFile != "" {
		return c.ConfigFile
	}
	return filepath.Join(c.DataDir, "config.yaml")
}

func (c Config) dataFile(name string) string {
	return filepath.Join(c.DataDir, name)
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		log.Warn().Str("level", level).Msg("unknown LOG_LEVEL, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
