package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// BasicAuth protects dashboard pages when a username is configured. An empty
// username disables authentication.
func BasicAuth(username, password string) func(http.Handler) http.Handler {
	if username == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.BasicAuth("mewoai", map[string]string{username: password})
}
