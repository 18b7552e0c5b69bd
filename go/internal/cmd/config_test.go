package main

import (
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"DRAFT_DATA_DIR", "DRAFT_CONFIG_FILE", "STORAGE_BACKEND", "ADMIN_PORT", "PUBLIC_PORT", "NATS_URL", "LOG_LEVEL", "DB_NAME"} {
		t.Setenv(key, "")
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.DataDir != "data" || cfg.StorageBackend != backendFile {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.AdminPort != 8175 || cfg.PublicPort != 8176 {
		t.Fatalf("ports = %d/%d", cfg.AdminPort, cfg.PublicPort)
	}
	if cfg.DB.Database != "auctiondraft" {
		t.Fatalf("db name = %q", cfg.DB.Database)
	}
	if got := cfg.ConfigPath(); got != filepath.Join("data", "config.yaml") {
		t.Fatalf("ConfigPath = %q", got)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DRAFT_DATA_DIR", "/srv/draft")
	t.Setenv("DRAFT_CONFIG_FILE", "/etc/draft/league.json")
	t.Setenv("STORAGE_BACKEND", " Postgres ")
	t.Setenv("ADMIN_PORT", "9000")
	t.Setenv("PUBLIC_PORT", "9001")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.StorageBackend != backendPostgres || cfg.AdminPort != 9000 || cfg.PublicPort != 9001 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.ConfigPath() != "/etc/draft/league.json" {
		t.Fatalf("ConfigPath = %q", cfg.ConfigPath())
	}
	if cfg.dataFile("players.json") != "/srv/draft/players.json" {
		t.Fatalf("dataFile = %q", cfg.dataFile("players.json"))
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown backend", env: map[string]string{"STORAGE_BACKEND": "s3"}},
		{name: "same ports", env: map[string]string{"ADMIN_PORT": "8080", "PUBLIC_PORT": "8080"}},
		{name: "bad port", env: map[string]string{"ADMIN_PORT": "eighty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STORAGE_BACKEND", "")
			t.Setenv("ADMIN_PORT", "")
			t.Setenv("PUBLIC_PORT", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := loadConfig(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
