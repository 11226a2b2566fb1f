package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/popeat/popeat/internal/api/requestctx"
	"github.com/popeat/popeat/internal/repository"
	"github.com/popeat/popeat/internal/service"
)

// OrderHandler exposes the order lifecycle endpoints.
type OrderHandler struct {
	orders service.OrderService
}

// NewOrderHandler binds the order service.
func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type createOrderRequest struct {
	RestaurantID    int64                  `json:"restaurant_id"`
	DeliveryAddress string                 `json:"delivery_address"`
	PaymentMethod   string                 `json:"payment_method"`
	Items           []createOrderLineInput `json:"items"`
}

type createOrderLineInput struct {
	ArticleID int64 `json:"article_id"`
	Quantity  int64 `json:"quantity"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// Create places an order for the authenticated client.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var payload createOrderRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	input := service.CreateOrderInput{
		RestaurantID:    payload.RestaurantID,
		DeliveryAddress: payload.DeliveryAddress,
		PaymentMethod:   payload.PaymentMethod,
	}
	for _, line := range payload.Items {
		input.Items = append(input.Items, service.OrderLineInput{ArticleID: line.ArticleID, Quantity: line.Quantity})
	}
	order, err := h.orders.Create(r.Context(), actor, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"data": orderView(order)})
}

// List returns the caller's orders, scoped by role.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	orders, err := h.orders.List(r.Context(), actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	views := make([]map[string]any, 0, len(orders))
	for _, order := range orders {
		views = append(views, orderView(order))
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": views})
}

// Get returns one order if the caller is related to it.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(r.Context(), actor, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": orderView(order)})
}

// UpdateStatus applies a lifecycle transition.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var payload updateStatusRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	status, valid := repository.ParseOrderStatus(payload.Status)
	if !valid {
		respondError(w, http.StatusBadRequest, "unknown order status")
		return
	}
	order, err := h.orders.UpdateStatus(r.Context(), actor, id, status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": orderView(order)})
}

func orderView(order *repository.Order) map[string]any {
	items := make([]map[string]any, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]any{
			"article_id":       item.ArticleID,
			"name":             item.Name,
			"unit_price_cents": item.UnitPriceCents,
			"quantity":         item.Quantity,
		})
	}
	trail := make([]map[string]any, 0, len(order.Timestamps))
	for _, stamp := range order.Timestamps {
		trail = append(trail, map[string]any{
			"status": stamp.Status,
			"at":     stamp.At,
		})
	}
	view := map[string]any{
		"id":                   order.ID,
		"reference":            order.Reference,
		"client_id":            order.ClientID,
		"restaurant_id":        order.RestaurantID,
		"delivery_address":     order.DeliveryAddress,
		"payment_method":       order.PaymentMethod,
		"items_subtotal_cents": order.ItemsSubtotalCents,
		"delivery_fee_cents":   order.DeliveryFeeCents,
		"service_fee_cents":    order.ServiceFeeCents,
		"total_cents":          order.TotalCents,
		"total":                service.FormatCents(order.TotalCents),
		"status":               string(order.Status),
		"timestamps":           trail,
		"items":                items,
		"created_at":           order.CreatedAt,
		"updated_at":           order.UpdatedAt,
	}
	if order.DeliveryPersonID != nil {
		view["delivery_person_id"] = *order.DeliveryPersonID
	}
	return view
}

func actorFrom(w http.ResponseWriter, r *http.Request) (service.Actor, bool) {
	identity, ok := requestctx.IdentityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return service.Actor{}, false
	}
	return service.Actor{UserID: identity.UserID, Roles: identity.Roles}, true
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid "+param)
		return 0, false
	}
	return id, true
}
