package getorder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderhub/order-svc/internal/service/models/order"
)

type stubService struct {
	orders map[string]order.EnrichedOrder
}

func (s *stubService) GetOrder(_ context.Context, id string) (order.EnrichedOrder, error) {
	o, ok := s.orders[id]
	if !ok {
		return order.EnrichedOrder{}, order.ErrOrderNotFound
	}

	return o, nil
}

func newTestRouter(s *stubService) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		GetOrder(w, r, s)
	})

	return router
}

func enrichedOrder(id string, version int64, displayName string) order.EnrichedOrder {
	return order.EnrichedOrder{
		Order: order.Order{
			ID:         id,
			Version:    version,
			CustomerID: "11111111-1111-1111-1111-111111111111",
			LineItems:  []order.LineItem{{ArticleID: "a-1", UnitPrice: 9.99, Quantity: 1}},
		},
		CustomerDisplayName: displayName,
	}
}

func TestGetOrder_FullResponseWithEntityTag(t *testing.T) {
	router := newTestRouter(&stubService{orders: map[string]order.EnrichedOrder{
		"o1": enrichedOrder("o1", 0, "Meier"),
	}})

	req := httptest.NewRequest(http.MethodGet, "/o1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"0"`, rec.Header().Get("ETag"))

	var body order.EnrichedOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Meier", body.CustomerDisplayName)
	assert.Equal(t, "o1", body.ID)
}

func TestGetOrder_MatchingVersionAnswersNotModified(t *testing.T) {
	router := newTestRouter(&stubService{orders: map[string]order.EnrichedOrder{
		"o1": enrichedOrder("o1", 0, "Meier"),
	}})

	req := httptest.NewRequest(http.MethodGet, "/o1", nil)
	req.Header.Set("If-None-Match", `"0"`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestGetOrder_StaleVersionAnswersFullResponse(t *testing.T) {
	router := newTestRouter(&stubService{orders: map[string]order.EnrichedOrder{
		"o1": enrichedOrder("o1", 3, "Meier"),
	}})

	req := httptest.NewRequest(http.MethodGet, "/o1", nil)
	req.Header.Set("If-None-Match", `"2"`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"3"`, rec.Header().Get("ETag"))
}

func TestGetOrder_MalformedVersionAnswersFullResponse(t *testing.T) {
	router := newTestRouter(&stubService{orders: map[string]order.EnrichedOrder{
		"o1": enrichedOrder("o1", 0, "Meier"),
	}})

	req := httptest.NewRequest(http.MethodGet, "/o1", nil)
	req.Header.Set("If-None-Match", `"latest"`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetOrder_UnknownIDAnswersNotFound(t *testing.T) {
	router := newTestRouter(&stubService{orders: map[string]order.EnrichedOrder{}})

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
