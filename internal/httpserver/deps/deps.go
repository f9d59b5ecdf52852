package deps

import (
	"time"

	"github.com/data-tales/data-sources/internal/cache"
	"github.com/data-tales/data-sources/internal/logger"
	"github.com/data-tales/data-sources/internal/metrics"
	"github.com/data-tales/data-sources/internal/query"
	redisstore "github.com/data-tales/data-sources/internal/store/redis"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	AllowedHosts   []string          // Host headers allowed on admin routes
	AllowedCIDRS   []string          // IPs allowed on admin routes (readyz, infra, reload, metrics)
	TrustProxy     bool              // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimitRPS   float64           // per-client rate on / and /api, <= 0 disables
	RateLimitBurst int               // per-client burst on / and /api
	Query          *query.Service    // capabilities orchestrator
	Cache          *cache.Cache      // in-memory capabilities cache
	RedisStore     *redisstore.Store // shared cache tier, nil when disabled
	Metrics        *metrics.Metrics  // prometheus collectors, nil disables /metrics
	ReloadTrigger  chan struct{}     // Channel to trigger a manual cache refresh
}
