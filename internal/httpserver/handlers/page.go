package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/data-tales/data-sources/internal/domain"
	"github.com/data-tales/data-sources/internal/httpserver/deps"
	"github.com/data-tales/data-sources/internal/logger"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html").Funcs(template.FuncMap{
	"join": strings.Join,
}).ParseFS(templateFS, "templates/page.html"))

type pageData struct {
	Services      []domain.ServiceDescriptor
	Selected      string
	Refresh       bool
	CustomEnabled bool
	URL           string
	Kind          string
	Result        *domain.Result
	Error         string
	APIHref       string
}

// Page renders the explorer. Without a query it shows the first registered service.
func Page(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg := d.Query.Registry()
		l := parseLookup(r)
		if l.Service == "" && l.URL == "" && reg.Len() > 0 {
			l.Service = reg.Keys()[0]
		}

		data := pageData{
			Services:      reg.All(),
			Selected:      l.Service,
			Refresh:       l.Refresh,
			CustomEnabled: d.Query.CustomURLEnabled(),
			URL:           l.URL,
			Kind:          l.Kind,
			APIHref:       apiHref(l),
		}

		status := http.StatusOK
		res, err := l.run(r.Context(), d)
		if err != nil {
			de := domain.AsError(err)
			status = de.HTTPStatus()
			data.Error = de.Message
		} else {
			data.Result = res
		}

		var buf bytes.Buffer
		if err := pageTemplate.Execute(&buf, data); err != nil {
			d.Logger.Error("failed to render page", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(status)
		if _, err := buf.WriteTo(w); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}

func apiHref(l lookup) string {
	q := url.Values{}
	if l.custom() {
		q.Set("url", l.URL)
		q.Set("kind", l.Kind)
	} else if l.Service != "" {
		q.Set("service", l.Service)
	}
	if len(q) == 0 {
		return "/api"
	}
	return "/api?" + q.Encode()
}
