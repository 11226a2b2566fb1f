package handler

import (
	"net/http"

	"github.com/popeat/popeat/internal/service"
)

// DeliveryHandler exposes courier assignment, an admin operation.
type DeliveryHandler struct {
	orders service.OrderService
}

// NewDeliveryHandler binds the order service.
func NewDeliveryHandler(orders service.OrderService) *DeliveryHandler {
	return &DeliveryHandler{orders: orders}
}

type assignRequest struct {
	DeliveryPersonID int64 `json:"delivery_person_id"`
}

// Assign attaches a delivery person to an order.
func (h *DeliveryHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var payload assignRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	order, err := h.orders.AssignDeliveryPerson(r.Context(), id, payload.DeliveryPersonID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": orderView(order)})
}
