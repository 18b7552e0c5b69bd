package outbox

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector defines the interface for collecting relay metrics
type MetricsCollector interface {
	RecordEventProcessed(action string, success bool, duration time.Duration)
	RecordEventDropped(action string)
	RecordPublishAttempt(action string, attempt int, success bool)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordEventProcessed(string, bool, time.Duration) {}
func (NoOpMetricsCollector) RecordEventDropped(string)                        {}
func (NoOpMetricsCollector) RecordPublishAttempt(string, int, bool)           {}

// Counters is an in-process MetricsCollector backing the relay health endpoint.
type Counters struct {
	published atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
	retries   atomic.Uint64

	mu        sync.Mutex
	lastEvent time.Time
	byAction  map[string]uint64
}

func NewCounters() *Counters {
	return &Counters{byAction: make(map[string]uint64)}
}

func (c *Counters) RecordEventProcessed(action string, success bool, _ time.Duration) {
	if !success {
		c.failed.Add(1)
		return
	}
	c.published.Add(1)

	c.mu.Lock()
	c.lastEvent = time.Now()
	c.byAction[action]++
	c.mu.Unlock()
}

func (c *Counters) RecordEventDropped(string) {
	c.dropped.Add(1)
}

func (c *Counters) RecordPublishAttempt(_ string, attempt int, _ bool) {
	if attempt > 1 {
		c.retries.Add(1)
	}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Published     uint64            `json:"published"`
	Failed        uint64            `json:"failed"`
	Dropped       uint64            `json:"dropped"`
	Retries       uint64            `json:"retries"`
	LastEventTime time.Time         `json:"last_event_time"`
	ByAction      map[string]uint64 `json:"by_action"`
}

func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	byAction := make(map[string]uint64, len(c.byAction))
	for k, v := range c.byAction {
		byAction[k] = v
	}
	return Snapshot{
		Published:     c.published.Load(),
		Failed:        c.failed.Load(),
		Dropped:       c.dropped.Load(),
		Retries:       c.retries.Load(),
		LastEventTime: c.lastEvent,
		ByAction:      byAction,
	}
}
