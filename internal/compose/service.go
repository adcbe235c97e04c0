package compose

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warung-io/backend-warung/internal/catalog"
	"github.com/warung-io/backend-warung/internal/common"
	"github.com/warung-io/backend-warung/internal/intent"
	"github.com/warung-io/backend-warung/internal/obs"
)

// ErrOrderNotFound is returned by OrderStore implementations when the
// referenced order does not exist for the catalog.
var ErrOrderNotFound = errors.New("compose: order not found")

// OrderStore retrieves historical order lines for rehydration.
type OrderStore interface {
	ListOrderLines(ctx context.Context, catalogID, orderID string) ([]intent.HistoricalLine, error)
}

// Service orchestrates a full composition: snapshot, interpretation (or
// rehydration) and reconciliation against the live catalog.
type Service struct {
	catalog  *catalog.Service
	delegate intent.Delegate
	orders   OrderStore
	metrics  *obs.DomainMetrics
	logger   zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Catalog  *catalog.Service
	Delegate intent.Delegate
	Orders   OrderStore
	Metrics  *obs.DomainMetrics
	Logger   zerolog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("compose: catalog service is required")
	}
	if cfg.Delegate == nil {
		return nil, errors.New("compose: intent delegate is required")
	}
	return &Service{
		catalog:  cfg.Catalog,
		delegate: cfg.Delegate,
		orders:   cfg.Orders,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}, nil
}

// ComposeFromQuery interprets a free-text request against the catalog and
// reconciles the resulting intents into priced order lines. An empty catalog
// short-circuits before the delegate is consulted.
func (s *Service) ComposeFromQuery(ctx context.Context, catalogID, query string) (Result, error) {
	snap, err := s.catalog.Snapshot(ctx, catalogID)
	if err != nil {
		s.metrics.ObserveCompose("query", "store_error")
		return Result{}, common.NewAppError(common.CodeInternal, "failed to load catalog", http.StatusInternalServerError, err)
	}
	if snap.Empty() {
		s.metrics.ObserveCompose("query", "catalog_empty")
		return Result{CatalogEmpty: true, Lines: []OrderLine{}}, nil
	}

	start := time.Now()
	interpreted, err := s.delegate.Interpret(ctx, intent.Request{Snapshot: snap, Query: query})
	latency := obs.DurationMillis(time.Since(start))
	if err != nil {
		s.metrics.ObserveDelegate("error", latency)
		s.metrics.ObserveCompose("query", "delegate_error")
		s.logger.Error().Err(err).Str("catalog_id", catalogID).Msg("intent delegate failed")
		return Result{}, mapDelegateErr(err)
	}
	s.metrics.ObserveDelegate("ok", latency)

	items, err := s.catalog.Items(ctx, catalogID)
	if err != nil {
		s.metrics.ObserveCompose("query", "store_error")
		return Result{}, common.NewAppError(common.CodeInternal, "failed to load catalog", http.StatusInternalServerError, err)
	}

	result := Reconcile(interpreted.Intents, items)
	result.CompositionID = uuid.NewString()
	result.Summary = interpreted.Summary
	result.Warnings = append(interpreted.Warnings, result.Warnings...)
	s.recordWarnings(catalogID, result.Warnings)
	s.metrics.ObserveCompose("query", "ok")
	s.logger.Info().
		Str("composition_id", result.CompositionID).
		Str("catalog_id", catalogID).
		Int("lines", len(result.Lines)).
		Int("unavailable", result.UnavailableCount).
		Int64("total_price", result.TotalPrice).
		Msg("composed order from query")
	return result, nil
}

// ComposeFromOrder repeats a previously placed order deterministically: its
// lines are matched onto the current catalog and repriced, with no delegate
// involvement.
func (s *Service) ComposeFromOrder(ctx context.Context, catalogID, orderID string) (Result, error) {
	if s.orders == nil {
		return Result{}, common.NewAppError(common.CodeInternal, "order history is not configured", http.StatusInternalServerError, nil)
	}
	lines, err := s.orders.ListOrderLines(ctx, catalogID, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			s.metrics.ObserveCompose("repeat", "not_found")
			return Result{}, common.NewAppError(common.CodeNotFound, "order not found", http.StatusNotFound, err)
		}
		s.metrics.ObserveCompose("repeat", "store_error")
		return Result{}, common.NewAppError(common.CodeInternal, "failed to load order", http.StatusInternalServerError, err)
	}

	items, err := s.catalog.Items(ctx, catalogID)
	if err != nil {
		s.metrics.ObserveCompose("repeat", "store_error")
		return Result{}, common.NewAppError(common.CodeInternal, "failed to load catalog", http.StatusInternalServerError, err)
	}
	if len(items) == 0 {
		s.metrics.ObserveCompose("repeat", "catalog_empty")
		return Result{CatalogEmpty: true, Lines: []OrderLine{}}, nil
	}

	intents, unmatched := Rehydrate(lines, items)
	result := Reconcile(intents, items)
	result.CompositionID = uuid.NewString()
	result.Unmatched = unmatched
	result.PriceDrift = PriceDrift(lines, result.Lines)
	s.recordWarnings(catalogID, result.Warnings)
	s.metrics.ObserveCompose("repeat", "ok")
	s.logger.Info().
		Str("composition_id", result.CompositionID).
		Str("catalog_id", catalogID).
		Str("order_id", orderID).
		Int("lines", len(result.Lines)).
		Int("unmatched", len(result.Unmatched)).
		Msg("composed order from history")
	return result, nil
}

func (s *Service) recordWarnings(catalogID string, warnings []string) {
	for _, w := range warnings {
		s.metrics.ObserveWarning("compose")
		s.logger.Warn().Str("catalog_id", catalogID).Str("warning", w).Msg("composition warning")
	}
}

// mapDelegateErr translates delegate sentinel errors into caller-facing
// errors with stable codes.
func mapDelegateErr(err error) error {
	switch {
	case errors.Is(err, intent.ErrDelegateTimeout):
		return common.NewAppError(common.CodeDelegateTimeout, "interpretation timed out", http.StatusGatewayTimeout, err)
	case errors.Is(err, intent.ErrDelegateRateLimited):
		return common.NewAppError(common.CodeDelegateRateLimit, "interpretation rate limited, retry later", http.StatusTooManyRequests, err)
	case errors.Is(err, intent.ErrDelegateQuota):
		return common.NewAppError(common.CodeDelegateQuota, "interpretation quota exhausted", http.StatusServiceUnavailable, err)
	case errors.Is(err, intent.ErrProtocolViolation):
		return common.NewAppError(common.CodeDelegateProtocol, "interpretation returned an invalid response", http.StatusBadGateway, err)
	default:
		return common.NewAppError(common.CodeInternal, "interpretation failed", http.StatusInternalServerError, err)
	}
}
