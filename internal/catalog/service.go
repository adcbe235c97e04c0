package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/warung-io/backend-warung/internal/obs"
)

// Store supplies catalog items for a given catalog context. It is read-only
// from this engine's perspective.
type Store interface {
	ListItems(ctx context.Context, catalogID string) ([]Item, error)
}

// Service builds and caches catalog snapshots.
type Service struct {
	store    Store
	cache    *Cache
	maxItems int
	metrics  *obs.DomainMetrics
	logger   zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store    Store
	Cache    *Cache
	MaxItems int
	Metrics  *obs.DomainMetrics
	Logger   zerolog.Logger
}

// DefaultMaxSnapshotItems bounds the payload handed to the interpretation delegate.
const DefaultMaxSnapshotItems = 200

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	maxItems := cfg.MaxItems
	if maxItems < 1 {
		maxItems = DefaultMaxSnapshotItems
	}
	return &Service{
		store:    cfg.Store,
		cache:    cfg.Cache,
		maxItems: maxItems,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}, nil
}

// Snapshot returns the compact snapshot for a catalog, serving from cache when
// possible. Cache failures degrade to a fresh build rather than failing the request.
func (s *Service) Snapshot(ctx context.Context, catalogID string) (Snapshot, error) {
	if cached, ok, err := s.cache.GetSnapshot(ctx, catalogID); err == nil && ok {
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("catalog_id", catalogID).Msg("snapshot cache read failed")
	}
	return s.Rebuild(ctx, catalogID)
}

// Rebuild builds a fresh snapshot from the store and refreshes the cache.
func (s *Service) Rebuild(ctx context.Context, catalogID string) (Snapshot, error) {
	items, err := s.store.ListItems(ctx, catalogID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list catalog items: %w", err)
	}
	snap, warnings := BuildSnapshot(catalogID, items, s.maxItems)
	s.metrics.ObserveSnapshotRebuild(snap.Truncated > 0)
	for _, w := range warnings {
		s.logger.Warn().Str("catalog_id", catalogID).Msg(w)
		s.metrics.ObserveWarning("snapshot")
	}
	if snap.Truncated > 0 {
		s.logger.Warn().
			Str("catalog_id", catalogID).
			Int("total", snap.Total).
			Int("truncated", snap.Truncated).
			Msg("catalog snapshot truncated")
	}
	if err := s.cache.SetSnapshot(ctx, snap); err != nil {
		s.logger.Warn().Err(err).Str("catalog_id", catalogID).Msg("snapshot cache write failed")
	}
	return snap, nil
}

// Items returns the full item set for a catalog, keyed by id, for reconciliation.
func (s *Service) Items(ctx context.Context, catalogID string) (map[string]Item, error) {
	items, err := s.store.ListItems(ctx, catalogID)
	if err != nil {
		return nil, fmt.Errorf("list catalog items: %w", err)
	}
	return Index(items), nil
}
