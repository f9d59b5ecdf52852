package ogc

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/data-tales/data-sources/internal/domain"
)

// BuildCapabilitiesURL adds SERVICE and REQUEST to base when they are
// missing. Present parameters keep their order, casing and values.
func BuildCapabilitiesURL(base string, kind domain.Kind) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse capabilities base url: %w", err)
	}

	var hasService, hasRequest bool
	for _, part := range splitQuery(u.RawQuery) {
		name := part
		if i := strings.IndexByte(part, '='); i >= 0 {
			name = part[:i]
		}
		if n, err := url.QueryUnescape(name); err == nil {
			name = n
		}
		switch {
		case strings.EqualFold(name, "service"):
			hasService = true
		case strings.EqualFold(name, "request"):
			hasRequest = true
		}
	}

	var add []string
	if !hasService {
		add = append(add, "SERVICE="+url.QueryEscape(kind.String()))
	}
	if !hasRequest {
		add = append(add, "REQUEST=GetCapabilities")
	}
	if len(add) == 0 {
		return u.String(), nil
	}

	parts := append(splitQuery(u.RawQuery), add...)
	u.RawQuery = strings.Join(parts, "&")
	u.ForceQuery = false
	return u.String(), nil
}

func splitQuery(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, "&") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
