package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/data-tales/data-sources/internal/httpserver/deps"
)

func init() { Register("metrics", registerMetrics, adminOnly) }

func registerMetrics(r chi.Router, d deps.Deps) {
	if d.Metrics == nil {
		return
	}
	r.Method("GET", "/metrics", d.Metrics.Handler())
}
