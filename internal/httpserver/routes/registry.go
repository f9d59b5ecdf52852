package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/data-tales/data-sources/internal/httpserver/deps"
	"github.com/data-tales/data-sources/internal/logger"
)

type (
	Registrar func(r chi.Router, d deps.Deps)
	// Middleware is built once per route when the dependencies are known.
	Middleware func(d deps.Deps) func(http.Handler) http.Handler
)

type entry struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var registry []entry

// Register a named registrar with optional per-route middlewares.
// Called from init() in each route file.
func Register(name string, reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{name: name, reg: reg, mws: mws})
}

// Called once from server.New()
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		sub := r
		if len(e.mws) > 0 {
			built := make([]func(http.Handler) http.Handler, 0, len(e.mws))
			for _, m := range e.mws {
				built = append(built, m(d))
			}
			sub = r.With(built...)
		}
		e.reg(sub, d)
		d.Logger.Debug("route registered",
			logger.String("route", e.name),
			logger.Int("middlewares", len(e.mws)))
	}
}
