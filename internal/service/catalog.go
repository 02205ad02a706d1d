package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/innofeed/innofeed/internal/metrics"
	"github.com/innofeed/innofeed/internal/model"
)

// CatalogService serves the domain catalog, through the cache when one is set.
// Concurrent misses share one store query.
type CatalogService struct {
	store   DomainStore
	cache   DomainCache
	logger  *slog.Logger
	metrics metrics.Recorder
	loads   singleflight.Group
}

// NewCatalogService creates a new CatalogService. cache may be nil.
func NewCatalogService(store DomainStore, cache DomainCache, logger *slog.Logger, recorder metrics.Recorder) *CatalogService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{store: store, cache: cache, logger: logger, metrics: recorder}
}

// Domains returns every domain ordered by id.
func (s *CatalogService) Domains(ctx context.Context) ([]model.Domain, error) {
	if s.cache != nil {
		cached, err := s.cache.GetDomains(ctx)
		if err == nil && cached != nil {
			s.metrics.IncDomainsCacheHit()
			return cached, nil
		}
		s.metrics.IncDomainsCacheMiss()
	}

	v, err, _ := s.loads.Do("domains", func() (any, error) {
		return s.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Domain), nil
}

func (s *CatalogService) load(ctx context.Context) ([]model.Domain, error) {
	domains, err := s.store.ListDomains(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	if domains == nil {
		domains = []model.Domain{}
	}

	if s.cache != nil {
		if err := s.cache.SetDomains(ctx, domains); err != nil {
			s.logger.WarnContext(ctx, "failed to cache domains", "error", err)
		}
	}
	return domains, nil
}
