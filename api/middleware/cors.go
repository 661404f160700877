package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/tuanvle/dacsan-backend/pkg/config"
)

// CORS applies the allowed-origin policy for the browser client.
// Origins come from configuration so each deployment lists its own
// frontend hosts.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
