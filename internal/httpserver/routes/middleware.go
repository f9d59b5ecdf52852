package routes

import (
	"net/http"

	"github.com/data-tales/data-sources/internal/httpserver/deps"
	"github.com/data-tales/data-sources/internal/httpserver/mw"
)

// adminOnly restricts a route to DS_ALLOWED_CIDRS.
func adminOnly(d deps.Deps) func(http.Handler) http.Handler {
	return mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)
}

// trustedHost restricts a route to DS_ALLOWED_HOSTS.
func trustedHost(d deps.Deps) func(http.Handler) http.Handler {
	return mw.EnforceHost(d.AllowedHosts, d.Logger)
}

// rateLimited gives each route its own per-client limiter.
func rateLimited(d deps.Deps) func(http.Handler) http.Handler {
	return mw.RateLimit(mw.RateLimitConfig{
		RPS:        d.RateLimitRPS,
		Burst:      d.RateLimitBurst,
		MaxEntries: 10000,
		TrustProxy: d.TrustProxy,
	})
}
