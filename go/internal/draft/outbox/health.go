package outbox

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// maxPending is the buffered depth past which the relay reports unhealthy.
const maxPending = 1000

type HealthStatus struct {
	Healthy       bool     `json:"healthy"`
	RelayRunning  bool     `json:"relay_running"`
	NATSConnected *bool    `json:"nats_connected,omitempty"`
	Pending       int      `json:"pending"`
	Counters      Snapshot `json:"counters"`
	Errors        []string `json:"errors"`
}

type connectionChecker interface {
	IsConnected() bool
}

// HealthChecker reports on a relay and, when it has one, its broker connection.
type HealthChecker struct {
	relay     *Relay
	counters  *Counters
	publisher EventPublisher
}

func NewHealthChecker(relay *Relay, counters *Counters, publisher EventPublisher) *HealthChecker {
	return &HealthChecker{relay: relay, counters: counters, publisher: publisher}
}

func (h *HealthChecker) Check() HealthStatus {
	status := HealthStatus{
		Healthy:      true,
		RelayRunning: h.relay.Running(),
		Pending:      h.relay.Pending(),
		Errors:       []string{},
	}
	if h.counters != nil {
		status.Counters = h.counters.Snapshot()
	}

	if !status.RelayRunning {
		status.Healthy = false
		status.Errors = append(status.Errors, "relay not running")
	}
	if cc, ok := h.publisher.(connectionChecker); ok {
		connected := cc.IsConnected()
		status.NATSConnected = &connected
		if !connected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}
	if status.Pending > maxPending {
		status.Errors = append(status.Errors, fmt.Sprintf("high pending event count: %d", status.Pending))
	}

	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.Check()

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Error().Err(err).Msg("failed to encode relay health")
	}
}
