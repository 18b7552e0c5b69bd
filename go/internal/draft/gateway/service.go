package gateway

import (
	"net/http"
)

// Service is the read-only draft surface: state, rosters, reference data and history.
type Service struct {
	stateHandler *StateHandler
}

// NewService creates a new read-only gateway service
func NewService(stateProvider StateProvider) *Service {
	return &Service{stateHandler: NewStateHandler(stateProvider)}
}

// RegisterRoutes registers the gateway routes on mux
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.stateHandler.RegisterStateRoutes(mux)
}

// Handler returns the full read-only handler with CORS applied.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return CORSMiddleware(mux)
}
