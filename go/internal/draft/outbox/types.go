package outbox

import (
	"context"

	"github.com/mcdev12/auctiondraft/go/internal/draft/actionlog"
	"github.com/rs/zerolog/log"
)

// EventPublisher delivers one committed action log entry downstream.
type EventPublisher interface {
	Publish(ctx context.Context, entry actionlog.Entry) error
}

// NoopPublisher accepts every entry and only logs it. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, entry actionlog.Entry) error {
	log.Debug().
		Str("entry_id", entry.ID.String()).
		Str("action", string(entry.Action())).
		Int64("version", entry.Version).
		Msg("no broker configured, dropping action event")
	return nil
}
