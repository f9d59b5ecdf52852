package cache

import (
	"net/url"
	"strings"

	"github.com/data-tales/data-sources/internal/domain"
)

// Parameters that do not change which document a server returns for GetCapabilities.
var ignoredParams = map[string]bool{"service": true, "request": true, "version": true}

// KeyFor derives the cache key of a validated endpoint URL. Parameter order
// and name casing do not matter; SERVICE, REQUEST and VERSION are dropped.
func KeyFor(normalizedURL string, kind domain.Kind) string {
	u, err := url.Parse(normalizedURL)
	if err != nil {
		return kind.String() + "|" + normalizedURL
	}

	q := url.Values{}
	for name, values := range u.Query() {
		lower := strings.ToLower(name)
		if ignoredParams[lower] {
			continue
		}
		q[lower] = append(q[lower], values...)
	}

	var b strings.Builder
	b.WriteString(kind.String())
	b.WriteByte('|')
	b.WriteString(strings.ToLower(u.Scheme))
	b.WriteString("://")
	b.WriteString(strings.ToLower(u.Host))
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	b.WriteString(path)
	if len(q) > 0 {
		b.WriteByte('?')
		b.WriteString(q.Encode())
	}
	return b.String()
}
