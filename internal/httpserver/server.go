package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/data-tales/data-sources/internal/config"
	"github.com/data-tales/data-sources/internal/httpserver/deps"
	"github.com/data-tales/data-sources/internal/httpserver/mw"
	"github.com/data-tales/data-sources/internal/httpserver/routes"
	"github.com/data-tales/data-sources/internal/logger"
)

// writeSlack is the time left after the handler deadline to flush a response.
const writeSlack = 5 * time.Second

// Server serves the explorer page, the capabilities API and the admin routes.
type Server struct {
	http    *http.Server
	logger  logger.Logger
	started time.Time
}

// Router mounts every registered route behind the shared middleware chain.
func Router(cfg *config.Config, loggerClient logger.Logger, d deps.Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout)) // a cold fetch is connect + read timeout
	r.Use(mw.Log(loggerClient, cfg.TrustProxy))
	r.Use(mw.CORS())

	routes.RegisterAll(r, d)
	return r
}

// New builds the server. Its write timeout follows DS_REQUEST_TIMEOUT.
func New(cfg *config.Config, loggerClient logger.Logger, d deps.Deps) *Server {
	s := &http.Server{
		Addr:              cfg.ListenPort,
		Handler:           Router(cfg, loggerClient, d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + writeSlack,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{
		http:    s,
		logger:  loggerClient,
		started: d.StartTime,
	}
}

// Start blocks until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening",
		logger.String("addr", s.http.Addr),
		logger.Duration("write_timeout", s.http.WriteTimeout))
	if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server shutting down",
		logger.Duration("uptime", time.Since(s.started).Round(time.Second)))
	return s.http.Shutdown(ctx)
}
