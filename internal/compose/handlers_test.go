package compose

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/warung-io/backend-warung/internal/intent"
	"github.com/warung-io/backend-warung/internal/pricing"
)

func newComposeRouter(t *testing.T, svc *Service) http.Handler {
	t.Helper()
	h := &Handler{Svc: svc, Validate: validator.New()}
	r := chi.NewRouter()
	r.Post("/catalogs/{catalogID}/compose/query", h.FromQuery)
	r.Post("/catalogs/{catalogID}/compose/repeat", h.FromOrder)
	return r
}

func TestHandlerFromQuery(t *testing.T) {
	delegate := &countingDelegate{result: intent.Result{
		Summary: "1 tray telur",
		Intents: []intent.OrderIntent{{ItemID: "itm-egg", Variant: pricing.VariantWhole, Quantity: 1}},
	}}
	svc := newComposeService(t, staticCatalogStore{items: composeItemList()}, delegate, nil)
	router := newComposeRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/catalogs/cat-1/compose/query", strings.NewReader(`{"text":"telur satu tray"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "1 tray telur", body.Data.Summary)
	require.Len(t, body.Data.Lines, 1)
	require.Equal(t, int64(58000), body.Data.TotalPrice)
}

func TestHandlerFromQueryRejectsEmptyText(t *testing.T) {
	svc := newComposeService(t, staticCatalogStore{items: composeItemList()}, &countingDelegate{}, nil)
	router := newComposeRouter(t, svc)

	for _, payload := range []string{`{}`, `{"text":"   "}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/catalogs/cat-1/compose/query", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, "payload %q", payload)
	}
}

func TestHandlerFromQueryDelegateFailureStatus(t *testing.T) {
	svc := newComposeService(t, staticCatalogStore{items: composeItemList()}, &countingDelegate{err: intent.ErrDelegateRateLimited}, nil)
	router := newComposeRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/catalogs/cat-1/compose/query", strings.NewReader(`{"text":"telur"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "DELEGATE_RATE_LIMITED", body.Error.Code)
}

func TestHandlerFromOrder(t *testing.T) {
	orders := staticOrderStore{lines: []intent.HistoricalLine{
		{ItemID: "itm-beef", Name: "Daging Sapi", Quantity: 2, Price: 1100},
	}}
	svc := newComposeService(t, staticCatalogStore{items: composeItemList()}, &countingDelegate{}, orders)
	router := newComposeRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/catalogs/cat-1/compose/repeat", strings.NewReader(`{"orderId":"ord-1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Lines, 1)
	require.Equal(t, int64(100), body.Data.PriceDrift["itm-beef"])
}

func TestHandlerFromOrderNotFound(t *testing.T) {
	svc := newComposeService(t, staticCatalogStore{items: composeItemList()}, &countingDelegate{}, staticOrderStore{err: ErrOrderNotFound})
	router := newComposeRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/catalogs/cat-1/compose/repeat", strings.NewReader(`{"orderId":"ord-x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
