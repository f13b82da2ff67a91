package kit

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows read-only cross origin access from the trusted origins. With no
// origins configured the middleware is a passthrough.
func CORS(trustedOrigins []string) func(http.Handler) http.Handler {
	if len(trustedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: trustedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	})
}
