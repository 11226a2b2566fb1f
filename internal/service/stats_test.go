package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popeat/popeat/internal/auth/role"
	"github.com/popeat/popeat/internal/repository"
)

func TestStatsOverview(t *testing.T) {
	orders := newFakeOrderRepo()
	users := newFakeUserRepo()

	_, err := users.Create(context.Background(), &repository.User{
		Email: "a@example.com", Roles: role.NewSet(role.Client),
	})
	require.NoError(t, err)
	_, err = users.Create(context.Background(), &repository.User{
		Email: "b@example.com", Roles: role.NewSet(role.Admin),
	})
	require.NoError(t, err)

	seed := []struct {
		restaurant int64
		status     repository.OrderStatus
		total      int64
	}{
		{1, repository.StatusDelivered, 1300},
		{1, repository.StatusDelivered, 700},
		{1, repository.StatusPending, 500},
		{2, repository.StatusCanceled, 900},
	}
	for _, s := range seed {
		_, err := orders.Create(context.Background(), &repository.Order{
			ClientID:     1,
			RestaurantID: s.restaurant,
			Status:       s.status,
			TotalCents:   s.total,
		})
		require.NoError(t, err)
	}

	svc := NewStatsService(orders, users)
	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), overview.TotalOrders)
	assert.Equal(t, int64(2), overview.OrdersByStatus["delivered"])
	assert.Equal(t, int64(1), overview.OrdersByStatus["pending"])
	assert.Equal(t, int64(1), overview.OrdersByStatus["canceled"])
	// Statuses with no orders are still present with a zero count.
	assert.Equal(t, int64(0), overview.OrdersByStatus["ready"])

	assert.Equal(t, int64(2000), overview.DeliveredRevenueCents)
	assert.NotEmpty(t, overview.DeliveredRevenue)
	assert.Equal(t, int64(2), overview.Users)

	require.Len(t, overview.OrdersByRestaurant, 2)
	assert.Equal(t, int64(1), overview.OrdersByRestaurant[0].RestaurantID)
	assert.Equal(t, int64(3), overview.OrdersByRestaurant[0].Orders)
	assert.Equal(t, int64(2), overview.OrdersByRestaurant[1].RestaurantID)
	assert.Equal(t, int64(1), overview.OrdersByRestaurant[1].Orders)
}
