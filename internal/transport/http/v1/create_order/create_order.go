package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/orderhub/order-svc/internal/service/models/order"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, o order.Order) (order.Order, error)
}

// CreateOrder handles the order creation request. A constraint violation or
// a syntactically broken body answers 400; success answers 201 with the new
// order's location.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	var o order.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	created, err := service.CreateOrder(r.Context(), o)
	if err != nil {
		if order.IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error creating order", "error", err)

		return
	}

	location := strings.TrimRight(r.URL.Path, "/") + "/" + created.ID

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", location)
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(created); err != nil {
		slog.Error("Error writing response for create order", "error", err)
	}
}
