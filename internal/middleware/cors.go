package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
)

var (
	corsAllowedHeaders = []string{
		"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization",
		"X-Request-ID", "MCP-Protocol-Version", "MCP-Session-Id",
	}
	corsAllowedMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}
)

// Cors allows the configured origins plus localhost and chrome extensions.
// Requests without an Origin header (curl, the CLI, MCP clients) are not cross origin and pass through.
func Cors(allowedOrigins []string) func(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimSuffix(o, "/")] = true
	}

	return handlers.CORS(
		handlers.AllowedOriginValidator(func(origin string) bool {
			return allowed["*"] ||
				allowed[origin] ||
				strings.HasPrefix(origin, "http://localhost:") ||
				strings.HasPrefix(origin, "chrome-extension://")
		}),
		handlers.AllowedHeaders(corsAllowedHeaders),
		handlers.AllowedMethods(corsAllowedMethods),
		handlers.ExposedHeaders([]string{"MCP-Session-Id", "Retry-After"}),
	)
}
