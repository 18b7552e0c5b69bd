package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mcdev12/auctiondraft/go/internal/draft/actionlog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		BufferSize: 1024,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// Relay forwards committed entries to an EventPublisher off the engine's hot path.
// Enqueue never blocks; when the buffer is full the entry is dropped, since the action
// log on disk stays authoritative.
type Relay struct {
	publisher EventPublisher
	metrics   MetricsCollector
	config    Config
	queue     chan actionlog.Entry

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

type RelayOption func(*Relay)

func WithMetrics(m MetricsCollector) RelayOption {
	return func(r *Relay) { r.metrics = m }
}

func NewRelay(publisher EventPublisher, cfg Config, opts ...RelayOption) *Relay {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	r := &Relay{
		publisher: publisher,
		metrics:   NoOpMetricsCollector{},
		config:    cfg,
		queue:     make(chan actionlog.Entry, cfg.BufferSize),
		stopChan:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enqueue hands entry to the relay without blocking.
func (r *Relay) Enqueue(entry actionlog.Entry) {
	select {
	case r.queue <- entry:
	default:
		r.metrics.RecordEventDropped(string(entry.Action()))
		log.Warn().
			Str("entry_id", entry.ID.String()).
			Str("action", string(entry.Action())).
			Int64("version", entry.Version).
			Msg("relay buffer full, dropping action event")
	}
}

// Pending returns the number of buffered entries.
func (r *Relay) Pending() int {
	return len(r.queue)
}

// Running reports whether the worker goroutine is active.
func (r *Relay) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Relay) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("relay already running")
	}
	r.running = true
	r.mu.Unlock()

	r.wg.Add(1)
	go r.run(ctx)

	log.Info().
		Int("buffer_size", r.config.BufferSize).
		Int("max_retries", r.config.MaxRetries).
		Msg("action relay started")
	return nil
}

// Stop halts the worker after it has published whatever is already buffered.
func (r *Relay) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return fmt.Errorf("relay not running")
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopChan)
	r.wg.Wait()

	log.Info().Msg("action relay stopped")
	return nil
}

func (r *Relay) run(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			r.drain(ctx)
			return
		case entry := <-r.queue:
			r.process(ctx, entry)
		}
	}
}

func (r *Relay) drain(ctx context.Context) {
	for {
		select {
		case entry := <-r.queue:
			r.process(ctx, entry)
		default:
			return
		}
	}
}

func (r *Relay) process(ctx context.Context, entry actionlog.Entry) {
	start := time.Now()
	err := r.publishWithRetry(ctx, entry)
	r.metrics.RecordEventProcessed(string(entry.Action()), err == nil, time.Since(start))
	if err != nil {
		log.Error().Err(err).
			Str("entry_id", entry.ID.String()).
			Str("action", string(entry.Action())).
			Msg("failed to publish action event")
	}
}

func (r *Relay) publishWithRetry(ctx context.Context, entry actionlog.Entry) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.config.RetryDelay * time.Duration(attempt)):
			}
		}

		err := r.publisher.Publish(ctx, entry)
		r.metrics.RecordPublishAttempt(string(entry.Action()), attempt+1, err == nil)
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn().Err(err).
			Str("entry_id", entry.ID.String()).
			Int("attempt", attempt+1).
			Msg("failed to publish action event, retrying")
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
