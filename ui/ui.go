// Package ui serves the browser control panel.
package ui

import (
	"net/http"
	"strings"
)

// apiPrefix is owned by the API; the panel never answers under it.
const apiPrefix = "/api/"

// isAPIPath reports whether p belongs to the API namespace.
func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, apiPrefix)
}

// guard answers 404 for API paths so unknown endpoints do not fall
// through to the panel.
func guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAPIPath(r.URL.Path) {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
