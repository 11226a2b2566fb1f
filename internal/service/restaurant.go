package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/popeat/popeat/internal/repository"
)

// RestaurantService manages the catalog a restaurateur exposes to clients.
type RestaurantService interface {
	List(ctx context.Context) ([]*repository.Restaurant, error)
	Get(ctx context.Context, id int64) (*repository.Restaurant, error)
	Create(ctx context.Context, ownerID int64, input RestaurantInput) (*repository.Restaurant, error)
	Update(ctx context.Context, ownerID, id int64, input RestaurantInput) (*repository.Restaurant, error)

	Articles(ctx context.Context, restaurantID int64) ([]*repository.Article, error)
	CreateArticle(ctx context.Context, ownerID, restaurantID int64, input ArticleInput) (*repository.Article, error)
	UpdateArticle(ctx context.Context, ownerID, articleID int64, input ArticleInput) (*repository.Article, error)
	DeleteArticle(ctx context.Context, ownerID, articleID int64) error
}

// RestaurantInput is the payload for creating or updating a restaurant.
type RestaurantInput struct {
	Name             string
	Description      string
	Address          string
	DeliveryFeeCents int64
}

// ArticleInput is the payload for creating or updating a menu article.
type ArticleInput struct {
	Name        string
	Description string
	PriceCents  int64
	Available   bool
}

type restaurantService struct {
	restaurants repository.RestaurantRepository
	articles    repository.ArticleRepository
	sanitizer   *bluemonday.Policy
	now         func() time.Time
}

// NewRestaurantService wires catalog repositories. Descriptions are
// user-supplied rich text and pass through a UGC sanitizer before storage.
func NewRestaurantService(restaurants repository.RestaurantRepository, articles repository.ArticleRepository) RestaurantService {
	return &restaurantService{
		restaurants: restaurants,
		articles:    articles,
		sanitizer:   bluemonday.UGCPolicy(),
		now:         time.Now,
	}
}

func (s *restaurantService) List(ctx context.Context) ([]*repository.Restaurant, error) {
	return s.restaurants.List(ctx)
}

func (s *restaurantService) Get(ctx context.Context, id int64) (*repository.Restaurant, error) {
	restaurant, err := s.restaurants.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "restaurant", ID: id}
		}
		return nil, fmt.Errorf("load restaurant: %w", err)
	}
	return restaurant, nil
}

func (s *restaurantService) Create(ctx context.Context, ownerID int64, input RestaurantInput) (*repository.Restaurant, error) {
	if err := validateRestaurantInput(input); err != nil {
		return nil, err
	}
	if _, err := s.restaurants.FindByOwner(ctx, ownerID); err == nil {
		return nil, &ValidationError{Field: "restaurant", Reason: "account already owns a restaurant"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup restaurant: %w", err)
	}
	now := s.now().UTC().Unix()
	return s.restaurants.Create(ctx, &repository.Restaurant{
		OwnerID:          ownerID,
		Name:             strings.TrimSpace(input.Name),
		Description:      s.sanitizer.Sanitize(input.Description),
		Address:          strings.TrimSpace(input.Address),
		DeliveryFeeCents: input.DeliveryFeeCents,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
}

func (s *restaurantService) Update(ctx context.Context, ownerID, id int64, input RestaurantInput) (*repository.Restaurant, error) {
	if err := validateRestaurantInput(input); err != nil {
		return nil, err
	}
	restaurant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if restaurant.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	restaurant.Name = strings.TrimSpace(input.Name)
	restaurant.Description = s.sanitizer.Sanitize(input.Description)
	restaurant.Address = strings.TrimSpace(input.Address)
	restaurant.DeliveryFeeCents = input.DeliveryFeeCents
	restaurant.UpdatedAt = s.now().UTC().Unix()
	if err := s.restaurants.Update(ctx, restaurant); err != nil {
		return nil, fmt.Errorf("update restaurant: %w", err)
	}
	return restaurant, nil
}

func (s *restaurantService) Articles(ctx context.Context, restaurantID int64) ([]*repository.Article, error) {
	if _, err := s.Get(ctx, restaurantID); err != nil {
		return nil, err
	}
	return s.articles.ListByRestaurant(ctx, restaurantID)
}

func (s *restaurantService) CreateArticle(ctx context.Context, ownerID, restaurantID int64, input ArticleInput) (*repository.Article, error) {
	if err := validateArticleInput(input); err != nil {
		return nil, err
	}
	restaurant, err := s.Get(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if restaurant.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	now := s.now().UTC().Unix()
	return s.articles.Create(ctx, &repository.Article{
		RestaurantID: restaurant.ID,
		Name:         strings.TrimSpace(input.Name),
		Description:  s.sanitizer.Sanitize(input.Description),
		PriceCents:   input.PriceCents,
		Available:    input.Available,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *restaurantService) UpdateArticle(ctx context.Context, ownerID, articleID int64, input ArticleInput) (*repository.Article, error) {
	if err := validateArticleInput(input); err != nil {
		return nil, err
	}
	article, err := s.loadOwnedArticle(ctx, ownerID, articleID)
	if err != nil {
		return nil, err
	}
	article.Name = strings.TrimSpace(input.Name)
	article.Description = s.sanitizer.Sanitize(input.Description)
	article.PriceCents = input.PriceCents
	article.Available = input.Available
	article.UpdatedAt = s.now().UTC().Unix()
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	return article, nil
}

func (s *restaurantService) DeleteArticle(ctx context.Context, ownerID, articleID int64) error {
	if _, err := s.loadOwnedArticle(ctx, ownerID, articleID); err != nil {
		return err
	}
	return s.articles.Delete(ctx, articleID)
}

func (s *restaurantService) loadOwnedArticle(ctx context.Context, ownerID, articleID int64) (*repository.Article, error) {
	article, err := s.articles.FindByID(ctx, articleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "article", ID: articleID}
		}
		return nil, fmt.Errorf("load article: %w", err)
	}
	restaurant, err := s.Get(ctx, article.RestaurantID)
	if err != nil {
		return nil, err
	}
	if restaurant.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return article, nil
}

func validateRestaurantInput(input RestaurantInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if input.DeliveryFeeCents < 0 {
		return &ValidationError{Field: "delivery_fee_cents", Reason: "must not be negative"}
	}
	return nil
}

func validateArticleInput(input ArticleInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if input.PriceCents <= 0 {
		return &ValidationError{Field: "price_cents", Reason: "must be positive"}
	}
	return nil
}
