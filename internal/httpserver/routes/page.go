package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/data-tales/data-sources/internal/httpserver/deps"
	"github.com/data-tales/data-sources/internal/httpserver/handlers"
)

func init() { Register("page", registerPage, rateLimited) }

func registerPage(r chi.Router, d deps.Deps) {
	r.Get("/", handlers.Page(d))
}
