package middleware

import (
	"net/http"
	"net/url"
	"slices"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// CORSMiddleware allows the configured origins plus the Mini App's own origin
// derived from webAppURL. allowAll (development) accepts any origin.
func CORSMiddleware(allowedOrigins []string, webAppURL string, allowAll bool) func(http.Handler) http.Handler {
	origins := AllowedOrigins(allowedOrigins, webAppURL)
	if allowAll || len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Key", "X-Bot-Key"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// AllowedOrigins merges origins with the scheme://host of webAppURL.
func AllowedOrigins(origins []string, webAppURL string) []string {
	out := slices.Clone(origins)
	if u, err := url.Parse(webAppURL); err == nil && u.Scheme != "" && u.Host != "" {
		if origin := u.Scheme + "://" + u.Host; !slices.Contains(out, origin) {
			out = append(out, origin)
		}
	}
	return out
}

// DefaultMiddlewareStack returns the middleware every route shares
func DefaultMiddlewareStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.CleanPath,
		middleware.Compress(5),
	}
}
