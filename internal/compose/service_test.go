package compose

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/warung-io/backend-warung/internal/catalog"
	"github.com/warung-io/backend-warung/internal/common"
	"github.com/warung-io/backend-warung/internal/intent"
	"github.com/warung-io/backend-warung/internal/pricing"
)

type staticCatalogStore struct {
	items []catalog.Item
	err   error
}

func (s staticCatalogStore) ListItems(_ context.Context, _ string) ([]catalog.Item, error) {
	return s.items, s.err
}

type countingDelegate struct {
	calls  int
	result intent.Result
	err    error
}

func (d *countingDelegate) Interpret(_ context.Context, _ intent.Request) (intent.Result, error) {
	d.calls++
	if d.err != nil {
		return intent.Result{}, d.err
	}
	return d.result, nil
}

type staticOrderStore struct {
	lines []intent.HistoricalLine
	err   error
}

func (s staticOrderStore) ListOrderLines(_ context.Context, _, _ string) ([]intent.HistoricalLine, error) {
	return s.lines, s.err
}

func newComposeService(t *testing.T, store catalog.Store, delegate intent.Delegate, orders OrderStore) *Service {
	t.Helper()
	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{Store: store, Logger: zerolog.Nop()})
	require.NoError(t, err)
	svc, err := NewService(ServiceConfig{
		Catalog:  catalogSvc,
		Delegate: delegate,
		Orders:   orders,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	return svc
}

func composeItemList() []catalog.Item {
	items := composeItems()
	out := make([]catalog.Item, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

func TestComposeFromQuery(t *testing.T) {
	delegate := &countingDelegate{result: intent.Result{
		Summary: "2 tray telur",
		Intents: []intent.OrderIntent{
			{ItemID: "itm-egg", Variant: pricing.VariantWhole, Quantity: 2, MatchReason: "exact name"},
		},
		Warnings: []string{"quantity clamped to whole number"},
	}}
	svc := newComposeService(t, staticCatalogStore{items: composeItemList()}, delegate, nil)

	result, err := svc.ComposeFromQuery(context.Background(), "cat-1", "telur dua tray")
	require.NoError(t, err)
	require.Equal(t, 1, delegate.calls)
	require.Equal(t, "2 tray telur", result.Summary)
	require.Len(t, result.Lines, 1)
	require.Equal(t, int64(116000), result.TotalPrice)
	require.Equal(t, []string{"quantity clamped to whole number"}, result.Warnings)
}

func TestComposeFromQueryEmptyCatalogSkipsDelegate(t *testing.T) {
	delegate := &countingDelegate{}
	svc := newComposeService(t, staticCatalogStore{}, delegate, nil)

	result, err := svc.ComposeFromQuery(context.Background(), "cat-1", "telur")
	require.NoError(t, err)
	require.True(t, result.CatalogEmpty)
	require.Empty(t, result.Lines)
	require.Zero(t, delegate.calls)
}

func TestComposeFromQueryDelegateErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"timeout", intent.ErrDelegateTimeout, common.CodeDelegateTimeout, http.StatusGatewayTimeout},
		{"rate limited", intent.ErrDelegateRateLimited, common.CodeDelegateRateLimit, http.StatusTooManyRequests},
		{"quota", intent.ErrDelegateQuota, common.CodeDelegateQuota, http.StatusServiceUnavailable},
		{"protocol", intent.ErrProtocolViolation, common.CodeDelegateProtocol, http.StatusBadGateway},
		{"unknown", errors.New("boom"), common.CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newComposeService(t, staticCatalogStore{items: composeItemList()}, &countingDelegate{err: tc.err}, nil)
			_, err := svc.ComposeFromQuery(context.Background(), "cat-1", "telur")
			require.Error(t, err)
			var appErr *common.AppError
			require.ErrorAs(t, err, &appErr)
			require.Equal(t, tc.wantCode, appErr.Code)
			require.Equal(t, tc.wantStatus, appErr.HTTPStatus)
		})
	}
}

func TestComposeFromQueryStoreError(t *testing.T) {
	svc := newComposeService(t, staticCatalogStore{err: errors.New("db down")}, &countingDelegate{}, nil)
	_, err := svc.ComposeFromQuery(context.Background(), "cat-1", "telur")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeInternal, appErr.Code)
}

func TestComposeFromOrder(t *testing.T) {
	orders := staticOrderStore{lines: []intent.HistoricalLine{
		{ItemID: "itm-beef", Name: "Daging Sapi", Quantity: 1, Price: 1000},
		{Name: "Gula Pasir", Quantity: 2, Price: 14000},
	}}
	svc := newComposeService(t, staticCatalogStore{items: composeItemList()}, &countingDelegate{}, orders)

	result, err := svc.ComposeFromOrder(context.Background(), "cat-1", "ord-1")
	require.NoError(t, err)
	require.Len(t, result.Lines, 1)
	require.Equal(t, "itm-beef", result.Lines[0].ItemID)
	require.Len(t, result.Unmatched, 1)
	require.Equal(t, "Gula Pasir", result.Unmatched[0].Name)
	require.Equal(t, int64(200), result.PriceDrift["itm-beef"])
}

func TestComposeFromOrderNotFound(t *testing.T) {
	svc := newComposeService(t, staticCatalogStore{items: composeItemList()}, &countingDelegate{}, staticOrderStore{err: ErrOrderNotFound})
	_, err := svc.ComposeFromOrder(context.Background(), "cat-1", "ord-missing")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeNotFound, appErr.Code)
	require.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}

func TestComposeFromOrderEmptyCatalog(t *testing.T) {
	orders := staticOrderStore{lines: []intent.HistoricalLine{{Name: "Telur", Quantity: 1}}}
	svc := newComposeService(t, staticCatalogStore{}, &countingDelegate{}, orders)

	result, err := svc.ComposeFromOrder(context.Background(), "cat-1", "ord-1")
	require.NoError(t, err)
	require.True(t, result.CatalogEmpty)
}
