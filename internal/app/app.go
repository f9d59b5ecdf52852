package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/data-tales/data-sources/internal/cache"
	"github.com/data-tales/data-sources/internal/config"
	"github.com/data-tales/data-sources/internal/domain"
	"github.com/data-tales/data-sources/internal/endpoint"
	"github.com/data-tales/data-sources/internal/httpserver"
	"github.com/data-tales/data-sources/internal/httpserver/deps"
	"github.com/data-tales/data-sources/internal/logger"
	"github.com/data-tales/data-sources/internal/metrics"
	"github.com/data-tales/data-sources/internal/ogc"
	"github.com/data-tales/data-sources/internal/query"
	"github.com/data-tales/data-sources/internal/redis"
	"github.com/data-tales/data-sources/internal/registry"
	"github.com/data-tales/data-sources/internal/scheduler"
	redisstore "github.com/data-tales/data-sources/internal/store/redis"
	"github.com/data-tales/data-sources/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	hydrator    *scheduler.CacheHydrator
	warmer      *scheduler.CacheWarmer
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	reg, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	loggerClient.Info("service registry loaded",
		logger.Int("services", reg.Len()),
		logger.Strings("hosts", reg.Hosts()))

	// Custom URLs may only target hosts already present in the registry.
	validator := endpoint.NewValidator(cfg.MaxURLLength, reg.Hosts())

	fetcher := ogc.NewFetcher(version.UserAgent(cfg.UserAgent),
		ogc.WithTimeouts(cfg.ConnectTimeout, cfg.ReadTimeout),
		ogc.WithMaxBodyBytes(cfg.MaxBodyBytes),
		ogc.WithDialGuard(validator.IsDisallowedIP),
		ogc.WithRedirectCheck(func(rawURL string) error {
			_, err := validator.Validate(rawURL, false)
			return err
		}),
	)

	// Optional shared cache tier
	var (
		redisClient *goredis.Client
		store       *redisstore.Store
		cacheOpts   []cache.Option
	)
	if cfg.RedisAddr != "" {
		redisClient, err = connectRedis(cfg, loggerClient)
		if err != nil {
			loggerClient.Warn("redis unavailable, continuing with memory-only cache",
				logger.Error(err))
		} else {
			store = redisstore.NewStore(redisClient, cfg.CacheTTL)
			cacheOpts = append(cacheOpts, cache.WithBacking(store))
		}
	}

	capsCache := cache.New(loggerClient, cacheOpts...)
	m := metrics.New(capsCache.Len)

	svc := query.New(reg, validator, fetcher, capsCache, loggerClient, query.Options{
		AllowCustomURL: cfg.AllowCustomURL,
		Metrics:        m,
	})

	var hydrator *scheduler.CacheHydrator
	if store != nil {
		hydrator = scheduler.NewCacheHydrator(store, capsCache, cacheKeys(svc, reg.All()), loggerClient)
	}

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)
	warmer := scheduler.NewCacheWarmer(svc, reg.Keys(), loggerClient, cfg.WarmInterval, reloadTrigger)

	// Dependencies passed to routes
	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Query:          svc,
		Cache:          capsCache,
		RedisStore:     store,
		Metrics:        m,
		ReloadTrigger:  reloadTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		hydrator:    hydrator,
		warmer:      warmer,
	}, nil
}

// loadRegistry merges the optional service file over the built-in services.
func loadRegistry(cfg *config.Config) (*registry.Registry, error) {
	descs := registry.Builtin()
	if cfg.ServiceFile != "" {
		extra, err := registry.LoadFile(cfg.ServiceFile)
		if err != nil {
			return nil, fmt.Errorf("load service file: %w", err)
		}
		descs = registry.Merge(descs, extra)
	}

	reg, err := registry.New(descs, endpoint.NewValidator(cfg.MaxURLLength, nil))
	if err != nil {
		return nil, fmt.Errorf("build service registry: %w", err)
	}
	return reg, nil
}

func connectRedis(cfg *config.Config, log logger.Logger) (*goredis.Client, error) {
	opts := redis.DefaultOptions(cfg.RedisAddr)
	opts.User = cfg.RedisUser
	opts.Password = cfg.RedisPassword
	opts.DB = cfg.RedisDB
	opts.PoolSize = cfg.RedisPoolSize
	opts.ConnectTimeout = cfg.RedisConnectTimeout
	return redis.New(context.Background(), opts, log)
}

// cacheKeys lists the distinct cache keys behind the given descriptors.
func cacheKeys(svc *query.Service, descs []domain.ServiceDescriptor) []string {
	seen := make(map[string]struct{}, len(descs))
	keys := make([]string, 0, len(descs))
	for _, desc := range descs {
		key, err := svc.CacheKey(desc)
		if err != nil {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting data-sources %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("data-sources %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.hydrator != nil {
		if _, err := a.hydrator.Hydrate(ctx); err != nil {
			a.logger.Warn("failed to hydrate cache from redis, starting cold",
				logger.Error(err))
		}
	}

	a.warmer.Start(ctx)
	a.logger.Info("cache warmer started",
		logger.Duration("interval", a.cfg.WarmInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.warmer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ data-sources stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
