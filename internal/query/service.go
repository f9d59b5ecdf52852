// Package query resolves a service key or URL into a capabilities result:
// validation, cache lookup, fetch and parse.
package query

import (
	"context"
	"net/url"
	"time"

	"github.com/data-tales/data-sources/internal/cache"
	"github.com/data-tales/data-sources/internal/domain"
	"github.com/data-tales/data-sources/internal/endpoint"
	"github.com/data-tales/data-sources/internal/logger"
	"github.com/data-tales/data-sources/internal/metrics"
	"github.com/data-tales/data-sources/internal/ogc"
	"github.com/data-tales/data-sources/internal/registry"
)

// Fetcher is satisfied by *ogc.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, capabilitiesURL string) ([]byte, error)
}

// Validator is satisfied by *endpoint.Validator.
type Validator interface {
	Validate(raw string, custom bool) (string, error)
}

type Options struct {
	AllowCustomURL bool
	Metrics        *metrics.Metrics
}

// Service is the query orchestrator shared by the page, the API and the warmer.
type Service struct {
	registry    *registry.Registry
	validator   Validator
	fetcher     Fetcher
	cache       *cache.Cache
	metrics     *metrics.Metrics
	log         logger.Logger
	allowCustom bool
	now         func() time.Time
}

func New(reg *registry.Registry, v Validator, f Fetcher, c *cache.Cache, log logger.Logger, opts Options) *Service {
	return &Service{
		registry:    reg,
		validator:   v,
		fetcher:     f,
		cache:       c,
		metrics:     opts.Metrics,
		log:         log,
		allowCustom: opts.AllowCustomURL,
		now:         time.Now,
	}
}

// Registry returns the service registry the orchestrator resolves keys against.
func (s *Service) Registry() *registry.Registry { return s.registry }

// CustomURLEnabled reports whether QueryURL accepts requests.
func (s *Service) CustomURLEnabled() bool { return s.allowCustom }

// Query answers for a registry key. refresh bypasses the cache.
func (s *Service) Query(ctx context.Context, key string, refresh bool) (*domain.Result, error) {
	desc, err := s.registry.Lookup(key)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, desc, false, refresh)
}

// QueryURL answers for an ad-hoc URL whose host must belong to the registry.
func (s *Service) QueryURL(ctx context.Context, rawURL, kind string, refresh bool) (*domain.Result, error) {
	if !s.allowCustom {
		return nil, domain.NewValidationError(domain.MsgCustomDisabled)
	}
	k, err := domain.ParseKind(kind)
	if err != nil {
		return nil, domain.NewValidationError(endpoint.ReasonInvalidKind)
	}

	desc := domain.ServiceDescriptor{Key: domain.CustomKey, Kind: k, URL: rawURL}
	if u, err := url.Parse(rawURL); err == nil {
		desc.Label = u.Hostname()
	}
	return s.run(ctx, desc, true, refresh)
}

// CacheKey returns the cache key a registry descriptor is stored under.
func (s *Service) CacheKey(desc domain.ServiceDescriptor) (string, error) {
	normalized, err := s.validator.Validate(desc.URL, false)
	if err != nil {
		return "", err
	}
	return cache.KeyFor(normalized, desc.Kind), nil
}

func (s *Service) run(ctx context.Context, desc domain.ServiceDescriptor, custom, refresh bool) (*domain.Result, error) {
	normalized, err := s.validator.Validate(desc.URL, custom)
	if err != nil {
		return nil, err
	}
	capsURL, err := ogc.BuildCapabilitiesURL(normalized, desc.Kind)
	if err != nil {
		return nil, domain.NewValidationError(endpoint.ReasonInvalid)
	}

	key := cache.KeyFor(normalized, desc.Kind)
	entry, outcome, err := s.cache.GetOrCompute(ctx, key, refresh, func(ctx context.Context) (domain.Snapshot, error) {
		return s.compute(ctx, desc, key, capsURL)
	})
	s.metrics.ObserveLookup(string(outcome))
	if err != nil {
		return nil, domain.AsError(err)
	}

	return domain.NewResult(desc, entry.Value), nil
}

func (s *Service) compute(ctx context.Context, desc domain.ServiceDescriptor, key, capsURL string) (domain.Snapshot, error) {
	start := s.now()
	log := s.log.With(
		logger.String("service", desc.Key),
		logger.String("kind", desc.Kind.String()),
		logger.String("cache_key", key),
	)

	body, err := s.fetcher.Fetch(ctx, capsURL)
	if err == nil {
		var doc ogc.Document
		doc, err = ogc.Parse(body, desc.Kind)
		if err == nil {
			elapsed := s.now().Sub(start)
			s.metrics.ObserveFetch(desc.Kind.String(), "ok", elapsed)
			log.Info("capabilities fetched",
				logger.Int("items", len(doc.Items)),
				logger.String("version", doc.Version),
				logger.Duration("elapsed", elapsed))
			return domain.Snapshot{
				Version:         doc.Version,
				CapabilitiesURL: capsURL,
				Items:           doc.Items,
				FetchedAt:       s.now().UTC(),
			}, nil
		}
	}

	de := domain.AsError(err)
	s.metrics.ObserveFetch(desc.Kind.String(), de.Kind.String(), s.now().Sub(start))
	log.Warn("capabilities fetch failed",
		logger.String("error_kind", de.Kind.String()),
		logger.String("message", de.Message),
		logger.Error(de.Cause()))
	return domain.Snapshot{}, de
}
