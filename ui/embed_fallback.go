//go:build !ui_embed

package ui

import (
	"net/http"
)

// Handler sends the panel's root to the API docs when the control panel
// is not embedded. Other paths are not found.
func Handler() (http.Handler, error) {
	return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && r.URL.Path != "/index.html" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/docs", http.StatusFound)
	})), nil
}
