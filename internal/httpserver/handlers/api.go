package handlers

import (
	"net/http"

	"github.com/data-tales/data-sources/internal/domain"
	"github.com/data-tales/data-sources/internal/httpserver/deps"
	"github.com/data-tales/data-sources/internal/logger"
)

type apiSuccess struct {
	OK bool `json:"ok"`
	*domain.Result
}

type apiFailure struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// API answers GET /api?service=<key> (or ?url=&kind= when custom URLs are on)
// with the parsed capabilities as JSON.
func API(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := parseLookup(r)

		res, err := l.run(r.Context(), d)
		if err != nil {
			de := domain.AsError(err)
			d.Logger.Debug("api lookup failed",
				logger.String("service", l.Service),
				logger.String("kind", de.Kind.String()),
				logger.Error(err))
			if werr := writeJSON(w, de.HTTPStatus(), apiFailure{Error: de.Message}); werr != nil {
				d.Logger.Debug("failed to write response", logger.Error(werr))
			}
			return
		}

		if werr := writeJSON(w, http.StatusOK, apiSuccess{OK: true, Result: res}); werr != nil {
			d.Logger.Debug("failed to write response", logger.Error(werr))
		}
	}
}
