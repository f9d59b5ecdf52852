package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/data-tales/data-sources/internal/domain"
	"github.com/data-tales/data-sources/internal/httpserver/deps"
)

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// lookup is what / and /api read from the query string.
type lookup struct {
	Service string
	URL     string
	Kind    string
	Refresh bool
}

func parseLookup(r *http.Request) lookup {
	q := r.URL.Query()
	return lookup{
		Service: strings.TrimSpace(q.Get("service")),
		URL:     strings.TrimSpace(q.Get("url")),
		Kind:    strings.TrimSpace(q.Get("kind")),
		Refresh: q.Get("refresh") == "1",
	}
}

func (l lookup) custom() bool { return l.Service == "" && l.URL != "" }

func (l lookup) run(ctx context.Context, d deps.Deps) (*domain.Result, error) {
	switch {
	case l.Service != "":
		return d.Query.Query(ctx, l.Service, l.Refresh)
	case l.URL != "":
		return d.Query.QueryURL(ctx, l.URL, l.Kind, l.Refresh)
	default:
		return nil, domain.NewValidationError(domain.MsgMissingService)
	}
}
