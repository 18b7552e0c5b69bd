package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mcdev12/auctiondraft/go/internal/draft"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// setupAdminServer serves the read-write DraftService plus the read-only routes.
func setupAdminServer(cfg Config, services *Services) *http.Server {
	mux := http.NewServeMux()

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{draft.VersionHeader, draft.ErrorCodeHeader},
	})

	path, handler := draft.NewDraftServiceHandler(services.Draft)
	mux.Handle(path, handler)
	services.Gateway.RegisterRoutes(mux)
	if services.RelayHealth != nil {
		mux.Handle("GET /health/relay", services.RelayHealth)
	}
	setupHealthCheck(mux)

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.AdminPort),
		Handler: h2c.NewHandler(c.Handler(mux), &http2.Server{}),
	}
}

// setupPublicServer serves only the read-only surface.
func setupPublicServer(cfg Config, services *Services) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.PublicPort),
		Handler:      h2c.NewHandler(services.Gateway.Handler(), &http2.Server{}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}

// runServers serves until ctx is cancelled or a server fails, then shuts both down.
func runServers(ctx context.Context, servers ...*http.Server) error {
	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			log.Info().Str("addr", srv.Addr).Msg("HTTP server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	case runErr = <-errCh:
		log.Error().Err(runErr).Msg("HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Str("addr", srv.Addr).Msg("HTTP server shutdown failed")
		}
	}
	return runErr
}
