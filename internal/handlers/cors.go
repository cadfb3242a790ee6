package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

const corsMaxAgeSeconds = 600

// corsMiddleware admits browser calls from the listed origins. Requests from other origins
// pass through without CORS headers, so the browser blocks them.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			allowed = append(allowed, origin)
		}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         corsMaxAgeSeconds,
	})
}
