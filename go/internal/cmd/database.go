package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/auctiondraft/go/internal/docstore"
	"github.com/mcdev12/auctiondraft/go/internal/draft"
	"github.com/mcdev12/auctiondraft/go/internal/draft/actionlog"
	"github.com/mcdev12/auctiondraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Storage is every document the binary reads or writes.
type Storage struct {
	Docs      draft.Documents
	ActionLog docstore.Store[actionlog.Document]

	pool *pgxpool.Pool
}

func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func setupStorage(ctx context.Context, cfg Config) (*Storage, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	configStore := docstore.NewFileStore[models.Configuration](cfg.ConfigPath())

	if cfg.StorageBackend == backendPostgres {
		return setupPostgresStorage(ctx, cfg, configStore)
	}

	log.Info().Str("data_dir", cfg.DataDir).Msg("using file storage")
	return &Storage{
		Docs: draft.Documents{
			State:   docstore.NewFileStore[models.DraftState](cfg.dataFile("draft_state.json"), docstore.WithValidator[models.DraftState](draft.StateValidator)),
			Players: docstore.NewFileStore[[]models.Player](cfg.dataFile("players.json")),
			Owners:  docstore.NewFileStore[[]models.Owner](cfg.dataFile("owners.json")),
			Config:  configStore,
		},
		ActionLog: docstore.NewFileStore[actionlog.Document](cfg.dataFile("action_log.json")),
	}, nil
}

func setupPostgresStorage(ctx context.Context, cfg Config, configStore docstore.Store[models.Configuration]) (*Storage, error) {
	pool, err := pgxpool.New(ctx, cfg.DB.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := docstore.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info().
		Str("host", cfg.DB.Host).
		Int("port", cfg.DB.Port).
		Str("database", cfg.DB.Database).
		Msg("using postgres storage")

	return &Storage{
		Docs: draft.Documents{
			State:   docstore.NewPostgresStore[models.DraftState](pool, "draft_state", docstore.WithValidator[models.DraftState](draft.StateValidator)),
			Players: docstore.NewPostgresStore[[]models.Player](pool, "players"),
			Owners:  docstore.NewPostgresStore[[]models.Owner](pool, "owners"),
			Config:  configStore,
		},
		ActionLog: docstore.NewPostgresStore[actionlog.Document](pool, "action_log"),
		pool:      pool,
	}, nil
}
