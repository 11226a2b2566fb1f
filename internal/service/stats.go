package service

import (
	"context"
	"fmt"

	"github.com/popeat/popeat/internal/repository"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// StatsService aggregates order figures for the admin surface and the
// order board.
type StatsService interface {
	Overview(ctx context.Context) (*StatsOverview, error)
}

// StatsOverview summarizes platform activity.
type StatsOverview struct {
	TotalOrders           int64            `json:"total_orders"`
	OrdersByStatus        map[string]int64 `json:"orders_by_status"`
	OrdersByRestaurant    []RestaurantStat `json:"orders_by_restaurant"`
	DeliveredRevenueCents int64            `json:"delivered_revenue_cents"`
	DeliveredRevenue      string           `json:"delivered_revenue"`
	Users                 int64            `json:"users"`
}

// RestaurantStat counts orders placed against one restaurant.
type RestaurantStat struct {
	RestaurantID int64  `json:"restaurant_id"`
	Name         string `json:"name"`
	Orders       int64  `json:"orders"`
}

var moneyPrinter = message.NewPrinter(language.French)

// FormatCents renders a cent amount as a localized euro string.
func FormatCents(cents int64) string {
	return moneyPrinter.Sprintf("%.2f €", float64(cents)/100)
}

type statsService struct {
	orders repository.OrderRepository
	users  repository.UserRepository
}

// NewStatsService wires the aggregation queries.
func NewStatsService(orders repository.OrderRepository, users repository.UserRepository) StatsService {
	return &statsService{orders: orders, users: users}
}

func (s *statsService) Overview(ctx context.Context) (*StatsOverview, error) {
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	byStatus := make(map[string]int64, len(repository.OrderStatuses))
	for _, status := range repository.OrderStatuses {
		byStatus[status.Key()] = 0
	}
	var total int64
	for _, c := range counts {
		byStatus[c.Status.Key()] = c.Count
		total += c.Count
	}

	perRestaurant, err := s.orders.CountByRestaurant(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders per restaurant: %w", err)
	}
	byRestaurant := make([]RestaurantStat, 0, len(perRestaurant))
	for _, c := range perRestaurant {
		byRestaurant = append(byRestaurant, RestaurantStat{
			RestaurantID: c.RestaurantID,
			Name:         c.Name,
			Orders:       c.Count,
		})
	}

	revenue, err := s.orders.DeliveredRevenueCents(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	return &StatsOverview{
		TotalOrders:           total,
		OrdersByStatus:        byStatus,
		OrdersByRestaurant:    byRestaurant,
		DeliveredRevenueCents: revenue,
		DeliveredRevenue:      FormatCents(revenue),
		Users:                 users,
	}, nil
}
