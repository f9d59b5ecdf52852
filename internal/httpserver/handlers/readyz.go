package handlers

import (
	"net/http"

	"github.com/data-tales/data-sources/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready    bool `json:"ready"`
	Services int  `json:"services"`
}

// Readyz reports ready once the service registry holds at least one entry.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := d.Query.Registry().Len()
		status := http.StatusOK
		if n == 0 {
			status = http.StatusServiceUnavailable
		}
		_ = writeJSON(w, status, readyzResponse{Ready: n > 0, Services: n})
	}
}
