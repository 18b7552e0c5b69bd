package main

import (
	"context"
	"fmt"

	"github.com/mcdev12/auctiondraft/go/internal/draft"
	"github.com/mcdev12/auctiondraft/go/internal/draft/actionlog"
	"github.com/mcdev12/auctiondraft/go/internal/draft/gateway"
	"github.com/mcdev12/auctiondraft/go/internal/draft/outbox"
	"github.com/rs/zerolog/log"
)

type Services struct {
	App         *draft.App
	Draft       *draft.Service
	Gateway     *gateway.Service
	Relay       *outbox.Relay
	RelayHealth *outbox.HealthChecker

	storage   *Storage
	publisher outbox.EventPublisher
}

// setupServices wires storage, repository, action log and relay into the engine and its
// two HTTP surfaces. The relay is created but not started.
func setupServices(ctx context.Context, cfg Config, withRelay bool) (*Services, error) {
	storage, err := setupStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	repo, err := draft.NewDocumentRepository(ctx, storage.Docs)
	if err != nil {
		storage.Close()
		return nil, err
	}
	actionLog := actionlog.New(storage.ActionLog)

	svcs := &Services{storage: storage}
	var opts []draft.Option
	if withRelay {
		publisher, err := setupPublisher(ctx, cfg)
		if err != nil {
			storage.Close()
			return nil, err
		}
		counters := outbox.NewCounters()
		svcs.publisher = publisher
		svcs.Relay = outbox.NewRelay(publisher, outbox.DefaultConfig(), outbox.WithMetrics(counters))
		svcs.RelayHealth = outbox.NewHealthChecker(svcs.Relay, counters, publisher)
		opts = append(opts, draft.WithPublisher(svcs.Relay))
	}

	app, err := draft.NewApp(repo, actionLog, opts...)
	if err != nil {
		svcs.Close()
		return nil, err
	}
	svcs.App = app
	svcs.Draft = draft.NewService(app)
	svcs.Gateway = gateway.NewService(app)
	return svcs, nil
}

func setupPublisher(ctx context.Context, cfg Config) (outbox.EventPublisher, error) {
	if cfg.NATSURL == "" {
		log.Info().Msg("NATS_URL not set, action events are not published")
		return outbox.NoopPublisher{}, nil
	}

	jsCfg := outbox.DefaultJetStreamConfig()
	jsCfg.URL = cfg.NATSURL
	publisher, err := outbox.NewJetStreamPublisher(ctx, jsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream publisher: %w", err)
	}
	log.Info().
		Str("url", jsCfg.URL).
		Str("stream", jsCfg.StreamName).
		Msg("publishing action events to JetStream")
	return publisher, nil
}

func (s *Services) Close() {
	if c, ok := s.publisher.(*outbox.JetStreamPublisher); ok {
		_ = c.Close()
	}
	s.storage.Close()
}
