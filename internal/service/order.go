package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/popeat/popeat/internal/auth/role"
	"github.com/popeat/popeat/internal/repository"
	"github.com/popeat/popeat/internal/security"
)

// serviceFeePercent is the platform commission applied to the items
// subtotal at order creation.
const serviceFeePercent = 10

// Actor identifies the authenticated caller of an order operation.
type Actor struct {
	UserID int64
	Roles  role.Set
}

// OrderService covers the order lifecycle: creation, status transitions,
// courier assignment and role-scoped reads.
type OrderService interface {
	Create(ctx context.Context, actor Actor, input CreateOrderInput) (*repository.Order, error)
	Get(ctx context.Context, actor Actor, orderID int64) (*repository.Order, error)
	List(ctx context.Context, actor Actor) ([]*repository.Order, error)
	UpdateStatus(ctx context.Context, actor Actor, orderID int64, requested repository.OrderStatus) (*repository.Order, error)
	AssignDeliveryPerson(ctx context.Context, orderID, deliveryPersonID int64) (*repository.Order, error)
}

// CreateOrderInput is the payload for placing an order.
type CreateOrderInput struct {
	RestaurantID    int64
	DeliveryAddress string
	PaymentMethod   string
	Items           []OrderLineInput
}

// OrderLineInput references an article and a quantity.
type OrderLineInput struct {
	ArticleID int64
	Quantity  int64
}

type orderService struct {
	orders      repository.OrderRepository
	restaurants repository.RestaurantRepository
	articles    repository.ArticleRepository
	users       repository.UserRepository
	audit       security.Recorder
	now         func() time.Time
}

// NewOrderService wires the order workflow with its storage collaborators.
func NewOrderService(orders repository.OrderRepository, restaurants repository.RestaurantRepository, articles repository.ArticleRepository, users repository.UserRepository, audit security.Recorder) OrderService {
	return &orderService{
		orders:      orders,
		restaurants: restaurants,
		articles:    articles,
		users:       users,
		audit:       audit,
		now:         time.Now,
	}
}

// ServiceFeeCents computes the 10% platform commission, rounding half-up
// to the nearest cent.
func ServiceFeeCents(subtotalCents int64) int64 {
	return (subtotalCents*serviceFeePercent + 50) / 100
}

func (s *orderService) Create(ctx context.Context, actor Actor, input CreateOrderInput) (*repository.Order, error) {
	restaurant, err := s.restaurants.FindByID(ctx, input.RestaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "restaurant", ID: input.RestaurantID}
		}
		return nil, fmt.Errorf("load restaurant: %w", err)
	}

	if len(input.Items) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "at least one line item is required"}
	}

	ids := make([]int64, 0, len(input.Items))
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return nil, &ValidationError{Field: "items", Reason: fmt.Sprintf("quantity for article %d must be positive", line.ArticleID)}
		}
		ids = append(ids, line.ArticleID)
	}
	catalog, err := s.articles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load articles: %w", err)
	}

	var subtotal int64
	items := make([]repository.OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		article, ok := catalog[line.ArticleID]
		if !ok || article.RestaurantID != restaurant.ID {
			return nil, &NotFoundError{Entity: "article", ID: line.ArticleID}
		}
		subtotal += article.PriceCents * line.Quantity
		items = append(items, repository.OrderItem{
			ArticleID:      article.ID,
			Name:           article.Name,
			UnitPriceCents: article.PriceCents,
			Quantity:       line.Quantity,
		})
	}

	now := s.now().UTC()
	serviceFee := ServiceFeeCents(subtotal)
	order := &repository.Order{
		Reference:          uuid.NewString(),
		ClientID:           actor.UserID,
		RestaurantID:       restaurant.ID,
		DeliveryAddress:    input.DeliveryAddress,
		PaymentMethod:      input.PaymentMethod,
		ItemsSubtotalCents: subtotal,
		DeliveryFeeCents:   restaurant.DeliveryFeeCents,
		ServiceFeeCents:    serviceFee,
		TotalCents:         subtotal + restaurant.DeliveryFeeCents + serviceFee,
		Status:             repository.StatusPending,
		Timestamps:         repository.StatusTrail{}.Append("created", now),
		Items:              items,
		CreatedAt:          now.Unix(),
		UpdatedAt:          now.Unix(),
	}
	created, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}
	s.record(ctx, "order.created", actor.UserID, map[string]any{
		"order_id":    created.ID,
		"restaurant":  restaurant.ID,
		"total_cents": created.TotalCents,
	})
	return created, nil
}

func (s *orderService) Get(ctx context.Context, actor Actor, orderID int64) (*repository.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.actingRole(ctx, actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, actor Actor) ([]*repository.Order, error) {
	filter := repository.OrderFilter{}
	switch {
	case actor.Roles.Has(role.Admin):
		// unfiltered
	case actor.Roles.Has(role.Restaurateur):
		restaurant, err := s.restaurants.FindByOwner(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return []*repository.Order{}, nil
			}
			return nil, fmt.Errorf("load restaurant: %w", err)
		}
		filter.RestaurantID = &restaurant.ID
	case actor.Roles.Has(role.Livreur):
		filter.DeliveryPersonID = &actor.UserID
	default:
		filter.ClientID = &actor.UserID
	}
	return s.orders.List(ctx, filter)
}

func (s *orderService) UpdateStatus(ctx context.Context, actor Actor, orderID int64, requested repository.OrderStatus) (*repository.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// The ownership gate and the transition-table gate are independent;
	// the ownership check runs first and failing either blocks the write.
	acting, err := s.actingRole(ctx, actor, order)
	if err != nil {
		s.record(ctx, "order.denied.ownership", actor.UserID, map[string]any{
			"order_id":  order.ID,
			"roles":     actor.Roles.Strings(),
			"requested": string(requested),
		})
		return nil, err
	}

	if !CanTransition(order.Status, requested, acting) {
		return nil, &InvalidTransitionError{From: order.Status, To: requested, Role: acting}
	}

	now := s.now().UTC()
	trail := order.Timestamps.Append(requested.Key(), now)
	applied, err := s.orders.UpdateStatus(ctx, order.ID, order.Status, requested, trail, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("persist status: %w", err)
	}
	if !applied {
		return nil, ErrStatusConflict
	}
	s.record(ctx, "order.status_changed", actor.UserID, map[string]any{
		"order_id": order.ID,
		"from":     string(order.Status),
		"to":       string(requested),
		"role":     string(acting),
	})
	return s.loadOrder(ctx, order.ID)
}

func (s *orderService) AssignDeliveryPerson(ctx context.Context, orderID, deliveryPersonID int64) (*repository.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	courier, err := s.users.FindByID(ctx, deliveryPersonID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "delivery person", ID: deliveryPersonID}
		}
		return nil, fmt.Errorf("load delivery person: %w", err)
	}
	if !courier.Roles.Has(role.Livreur) {
		return nil, &NotFoundError{Entity: "delivery person", ID: deliveryPersonID}
	}
	if err := s.orders.AssignDeliveryPerson(ctx, order.ID, courier.ID, s.now().UTC().Unix()); err != nil {
		return nil, fmt.Errorf("assign delivery person: %w", err)
	}
	return s.loadOrder(ctx, order.ID)
}

func (s *orderService) loadOrder(ctx context.Context, orderID int64) (*repository.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "order", ID: orderID}
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	return order, nil
}

// actingRole resolves which held role relates the caller to this order,
// checking the most privileged roles first. ErrForbidden when none does.
func (s *orderService) actingRole(ctx context.Context, actor Actor, order *repository.Order) (role.Role, error) {
	for _, r := range []role.Role{role.Admin, role.Restaurateur, role.Livreur, role.Client} {
		if !actor.Roles.Has(r) {
			continue
		}
		switch r {
		case role.Admin:
			return r, nil
		case role.Client:
			if order.ClientID == actor.UserID {
				return r, nil
			}
		case role.Livreur:
			if order.DeliveryPersonID != nil && *order.DeliveryPersonID == actor.UserID {
				return r, nil
			}
		case role.Restaurateur:
			restaurant, err := s.restaurants.FindByID(ctx, order.RestaurantID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					continue
				}
				return "", fmt.Errorf("load restaurant: %w", err)
			}
			if restaurant.OwnerID == actor.UserID {
				return r, nil
			}
		}
	}
	return "", ErrForbidden
}

func (s *orderService) record(ctx context.Context, kind string, actorID int64, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, security.Event{
		Kind:     kind,
		ActorID:  strconv.FormatInt(actorID, 10),
		Metadata: metadata,
		Occurred: s.now().UTC(),
	})
}
