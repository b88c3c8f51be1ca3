package listorders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderhub/order-svc/internal/service/models/customer"
	"github.com/orderhub/order-svc/internal/service/models/order"
)

type stubService struct {
	all        []order.EnrichedOrder
	byCustomer map[string][]order.EnrichedOrder
	calls      int
}

func (s *stubService) GetOrders(context.Context) ([]order.EnrichedOrder, error) {
	s.calls++

	return s.all, nil
}

func (s *stubService) GetOrdersByCustomerID(
	_ context.Context,
	customerID string,
) (customer.Profile, []order.EnrichedOrder, error) {
	s.calls++

	return customer.Profile{DisplayName: "Meier"}, s.byCustomer[customerID], nil
}

func serve(s *stubService, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	ListOrders(rec, req, s)

	return rec
}

func enrichedOrder(id, customerID string) order.EnrichedOrder {
	return order.EnrichedOrder{
		Order: order.Order{
			ID:         id,
			CustomerID: customerID,
			LineItems:  []order.LineItem{{ArticleID: "a-1", UnitPrice: 1.5, Quantity: 2}},
		},
		CustomerDisplayName: "Meier",
	}
}

func TestListOrders_AllOrders(t *testing.T) {
	s := &stubService{all: []order.EnrichedOrder{
		enrichedOrder("o1", "c1"),
		enrichedOrder("o2", "c2"),
	}}

	rec := serve(s, "/")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body []order.EnrichedOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 2)
}

func TestListOrders_ByCustomerID(t *testing.T) {
	s := &stubService{byCustomer: map[string][]order.EnrichedOrder{
		"c1": {enrichedOrder("o1", "c1")},
	}}

	rec := serve(s, "/?customerId=c1")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body []order.EnrichedOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "o1", body[0].ID)
	assert.Equal(t, "Meier", body[0].CustomerDisplayName)
}

func TestListOrders_EmptyResultAnswersNotFound(t *testing.T) {
	s := &stubService{}

	rec := serve(s, "/?customerId=unknown")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrders_AmbiguousQueryAnswersNotFound(t *testing.T) {
	s := &stubService{all: []order.EnrichedOrder{enrichedOrder("o1", "c1")}}

	rec := serve(s, "/?customerId=c1&other=x")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, s.calls, "ambiguous queries are rejected before touching the service")
}

func TestListOrders_UnknownParameterAnswersNotFound(t *testing.T) {
	s := &stubService{all: []order.EnrichedOrder{enrichedOrder("o1", "c1")}}

	rec := serve(s, "/?articleId=a-1")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
