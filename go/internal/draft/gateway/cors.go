package gateway

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSMiddleware allows any origin to read; browsers are never offered a mutating method.
func CORSMiddleware(next http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With"},
		MaxAge:         86400, // 24 hours
	})
	return c.Handler(next)
}
