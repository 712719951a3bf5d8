// Package frontend serves the embedded dashboard page
package frontend

import (
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"

	static "github.com/ethpandaops/aerosense/frontend"
)

type handler struct {
	fileHandler http.Handler
	filesystem  fs.FS
}

// NewHandler creates the dashboard page handler. Unknown paths without a file
// extension fall back to index.html.
func NewHandler() (http.Handler, error) {
	dashboardFS, err := fs.Sub(static.FS, "build/dashboard")
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard filesystem: %w", err)
	}

	h := &handler{
		filesystem:  dashboardFS,
		fileHandler: http.FileServer(http.FS(dashboardFS)),
	}

	return h, nil
}

// ServeHTTP serves a static asset or the page
func (h *handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	name := strings.TrimPrefix(req.URL.Path, "/")
	if name == "" || h.fileExists(name) {
		h.fileHandler.ServeHTTP(w, req)
		return
	}

	if path.Ext(name) != "" {
		http.NotFound(w, req)
		return
	}

	req.URL.Path = "/"
	h.fileHandler.ServeHTTP(w, req)
}

func (h *handler) fileExists(name string) bool {
	_, err := fs.Stat(h.filesystem, name)
	return err == nil
}
