package getorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orderhub/order-svc/internal/service/models/order"
	"github.com/orderhub/order-svc/internal/transport/http/conditional"
)

// service is an interface for the service layer.
type service interface {
	GetOrder(ctx context.Context, id string) (order.EnrichedOrder, error)
}

// GetOrder handles the single-order read. The response carries the order's
// version as an entity tag; a request echoing that tag in If-None-Match is
// answered with 304 and an empty body.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	id := chi.URLParam(r, "id")

	enriched, err := service.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			http.Error(w, "order not found", http.StatusNotFound)

			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting order", "order_id", id, "error", err)

		return
	}

	if conditional.NotModified(enriched.Version, r.Header.Get("If-None-Match")) {
		w.WriteHeader(http.StatusNotModified)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", conditional.ETag(enriched.Version))

	if err := json.NewEncoder(w).Encode(enriched); err != nil {
		slog.Error("Error writing response for get order", "error", err)
	}
}
