package handler

import (
	"net/http"

	"github.com/popeat/popeat/internal/repository"
	"github.com/popeat/popeat/internal/service"
)

// RestaurantHandler exposes the restaurant catalog endpoints.
type RestaurantHandler struct {
	restaurants service.RestaurantService
}

// NewRestaurantHandler binds the catalog service.
func NewRestaurantHandler(restaurants service.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurants: restaurants}
}

type restaurantRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	Address          string `json:"address"`
	DeliveryFeeCents int64  `json:"delivery_fee_cents"`
}

type articleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Available   bool   `json:"available"`
}

// List returns all restaurants.
func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.restaurants.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	views := make([]map[string]any, 0, len(restaurants))
	for _, restaurant := range restaurants {
		views = append(views, restaurantView(restaurant))
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": views})
}

// Get returns one restaurant.
func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	restaurant, err := h.restaurants.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": restaurantView(restaurant)})
}

// Create opens a restaurant for the authenticated restaurateur.
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var payload restaurantRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	restaurant, err := h.restaurants.Create(r.Context(), actor.UserID, service.RestaurantInput{
		Name:             payload.Name,
		Description:      payload.Description,
		Address:          payload.Address,
		DeliveryFeeCents: payload.DeliveryFeeCents,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"data": restaurantView(restaurant)})
}

// Update edits a restaurant owned by the caller.
func (h *RestaurantHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var payload restaurantRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	restaurant, err := h.restaurants.Update(r.Context(), actor.UserID, id, service.RestaurantInput{
		Name:             payload.Name,
		Description:      payload.Description,
		Address:          payload.Address,
		DeliveryFeeCents: payload.DeliveryFeeCents,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": restaurantView(restaurant)})
}

// Articles lists a restaurant's menu.
func (h *RestaurantHandler) Articles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	articles, err := h.restaurants.Articles(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	views := make([]map[string]any, 0, len(articles))
	for _, article := range articles {
		views = append(views, articleView(article))
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": views})
}

// CreateArticle adds a menu entry to the caller's restaurant.
func (h *RestaurantHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var payload articleRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	article, err := h.restaurants.CreateArticle(r.Context(), actor.UserID, id, service.ArticleInput{
		Name:        payload.Name,
		Description: payload.Description,
		PriceCents:  payload.PriceCents,
		Available:   payload.Available,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"data": articleView(article)})
}

// UpdateArticle edits a menu entry owned by the caller.
func (h *RestaurantHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var payload articleRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	article, err := h.restaurants.UpdateArticle(r.Context(), actor.UserID, id, service.ArticleInput{
		Name:        payload.Name,
		Description: payload.Description,
		PriceCents:  payload.PriceCents,
		Available:   payload.Available,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": articleView(article)})
}

// DeleteArticle removes a menu entry owned by the caller.
func (h *RestaurantHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.restaurants.DeleteArticle(r.Context(), actor.UserID, id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": "deleted"})
}

func restaurantView(restaurant *repository.Restaurant) map[string]any {
	return map[string]any{
		"id":                 restaurant.ID,
		"owner_id":           restaurant.OwnerID,
		"name":               restaurant.Name,
		"description":        restaurant.Description,
		"address":            restaurant.Address,
		"delivery_fee_cents": restaurant.DeliveryFeeCents,
		"created_at":         restaurant.CreatedAt,
		"updated_at":         restaurant.UpdatedAt,
	}
}

func articleView(article *repository.Article) map[string]any {
	return map[string]any{
		"id":            article.ID,
		"restaurant_id": article.RestaurantID,
		"name":          article.Name,
		"description":   article.Description,
		"price_cents":   article.PriceCents,
		"available":     article.Available,
		"created_at":    article.CreatedAt,
		"updated_at":    article.UpdatedAt,
	}
}
