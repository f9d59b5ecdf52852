package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/data-tales/data-sources/internal/httpserver/deps"
)

type componentStatus struct {
	OK             bool     `json:"ok"`
	ServicesLoaded *int     `json:"services_loaded,omitempty"`
	Entries        *int     `json:"entries,omitempty"`
	Keys           []string `json:"keys,omitempty"`
	CustomURLs     *bool    `json:"custom_urls,omitempty"`
	Mode           string   `json:"mode,omitempty"`
	Impact         string   `json:"impact,omitempty"`
	Error          string   `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Uptime     string                     `json:"uptime"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the registry, the cache and the Redis tier.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := d.Query.Registry().Len()
		keys := d.Cache.Keys()
		entries := len(keys)
		custom := d.Query.CustomURLEnabled()

		components := map[string]componentStatus{
			"registry": {
				OK:             services > 0,
				ServicesLoaded: &services,
				CustomURLs:     &custom,
			},
			"cache": {
				OK:      true,
				Entries: &entries,
				Keys:    keys,
			},
			"redis": checkRedis(r.Context(), d),
		}

		_ = writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Uptime:     time.Since(d.StartTime).Round(time.Second).String(),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if reg, ok := components["registry"]; ok && !reg.OK {
		return "critical"
	}
	if redis, ok := components["redis"]; ok && !redis.OK {
		return "degraded"
	}
	return "optimal"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisStore == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "memory-only-cache",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.RedisStore.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "shared-cache-unavailable",
			Error:  "ping failed",
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "shared-cache-enabled",
	}
}
