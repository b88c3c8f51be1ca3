package listorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/orderhub/order-svc/internal/service/models/customer"
	"github.com/orderhub/order-svc/internal/service/models/order"
)

// service is an interface for the service layer.
type service interface {
	GetOrders(ctx context.Context) ([]order.EnrichedOrder, error)
	GetOrdersByCustomerID(ctx context.Context, customerID string) (customer.Profile, []order.EnrichedOrder, error)
}

// ListOrders handles the collection read. At most one query parameter is
// accepted (customerId); an ambiguous query and an empty result both answer
// 404, keeping the wire behavior clients already depend on.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	query := r.URL.Query()
	if len(query) > 1 {
		http.Error(w, "not found", http.StatusNotFound)

		return
	}

	var (
		orders []order.EnrichedOrder
		err    error
	)

	if len(query) == 0 {
		orders, err = service.GetOrders(r.Context())
	} else {
		customerID := query.Get("customerId")
		if customerID == "" {
			http.Error(w, "not found", http.StatusNotFound)

			return
		}
		_, orders, err = service.GetOrdersByCustomerID(r.Context(), customerID)
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting orders", "error", err)

		return
	}

	if len(orders) == 0 {
		http.Error(w, "not found", http.StatusNotFound)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(orders); err != nil {
		slog.Error("Error writing response for list orders", "error", err)
	}
}
