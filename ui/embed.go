//go:build ui_embed

package ui

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// Build with: go build -tags ui_embed .
// Requires the control panel build output in ui/dist.

//go:embed all:dist
var distFS embed.FS

// Handler serves the embedded control panel. Unknown paths without an
// extension get index.html so client-side routes survive a reload.
func Handler() (http.Handler, error) {
	fsys, err := fs.Sub(distFS, "dist")
	if err != nil {
		return nil, err
	}
	fileServer := http.FileServer(http.FS(fsys))

	return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := path.Clean(r.URL.Path)

		if !isFile(fsys, strings.TrimPrefix(p, "/")) && !strings.Contains(path.Base(p), ".") {
			r.URL.Path = "/"
		}

		// Bundled assets carry a content hash in their name.
		if strings.HasPrefix(r.URL.Path, "/assets/") {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		fileServer.ServeHTTP(w, r)
	})), nil
}

func isFile(fsys fs.FS, name string) bool {
	if name == "" {
		return false
	}
	stat, err := fs.Stat(fsys, name)
	return err == nil && !stat.IsDir()
}
