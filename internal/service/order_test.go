package service

import (
	"context"
	"testing"
	"time"

	"github.com/popeat/popeat/internal/auth/role"
	"github.com/popeat/popeat/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	svc         *orderService
	orders      *fakeOrderRepo
	restaurants *fakeRestaurantRepo
	articles    *fakeArticleRepo
	users       *fakeUserRepo

	client      Actor
	owner       Actor
	otherOwner  Actor
	courier     Actor
	admin       Actor
	restaurant  *repository.Restaurant
	margherita  *repository.Article
	quattro     *repository.Article
	clock       time.Time
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	ctx := context.Background()
	f := &orderFixture{
		orders:      newFakeOrderRepo(),
		restaurants: newFakeRestaurantRepo(),
		articles:    newFakeArticleRepo(),
		users:       newFakeUserRepo(),
		clock:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	mkUser := func(email string, r role.Role) *repository.User {
		u, err := f.users.Create(ctx, &repository.User{Email: email, Roles: role.NewSet(r)})
		require.NoError(t, err)
		return u
	}
	client := mkUser("client@example.com", role.Client)
	owner := mkUser("owner@example.com", role.Restaurateur)
	otherOwner := mkUser("other@example.com", role.Restaurateur)
	courier := mkUser("courier@example.com", role.Livreur)
	admin := mkUser("admin@example.com", role.Admin)

	f.client = Actor{UserID: client.ID, Roles: client.Roles}
	f.owner = Actor{UserID: owner.ID, Roles: owner.Roles}
	f.otherOwner = Actor{UserID: otherOwner.ID, Roles: otherOwner.Roles}
	f.courier = Actor{UserID: courier.ID, Roles: courier.Roles}
	f.admin = Actor{UserID: admin.ID, Roles: admin.Roles}

	var err error
	f.restaurant, err = f.restaurants.Create(ctx, &repository.Restaurant{
		OwnerID: owner.ID, Name: "Chez Luigi", DeliveryFeeCents: 200,
	})
	require.NoError(t, err)
	other, err := f.restaurants.Create(ctx, &repository.Restaurant{
		OwnerID: otherOwner.ID, Name: "La Bonne Table", DeliveryFeeCents: 300,
	})
	require.NoError(t, err)

	f.margherita, err = f.articles.Create(ctx, &repository.Article{
		RestaurantID: f.restaurant.ID, Name: "Margherita", PriceCents: 500, Available: true,
	})
	require.NoError(t, err)
	f.quattro, err = f.articles.Create(ctx, &repository.Article{
		RestaurantID: other.ID, Name: "Quattro Stagioni", PriceCents: 900, Available: true,
	})
	require.NoError(t, err)

	f.svc = NewOrderService(f.orders, f.restaurants, f.articles, f.users, nil).(*orderService)
	f.svc.now = func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}
	return f
}

func (f *orderFixture) place(t *testing.T) *repository.Order {
	t.Helper()
	order, err := f.svc.Create(context.Background(), f.client, CreateOrderInput{
		RestaurantID:    f.restaurant.ID,
		DeliveryAddress: "12 rue des Lilas",
		PaymentMethod:   "card",
		Items:           []OrderLineInput{{ArticleID: f.margherita.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrderPricing(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t)

	assert.Equal(t, int64(1000), order.ItemsSubtotalCents)
	assert.Equal(t, int64(200), order.DeliveryFeeCents)
	assert.Equal(t, int64(100), order.ServiceFeeCents)
	assert.Equal(t, int64(1300), order.TotalCents)
	assert.Equal(t, order.ItemsSubtotalCents+order.DeliveryFeeCents+order.ServiceFeeCents, order.TotalCents)
	assert.Equal(t, repository.StatusPending, order.Status)
	require.Len(t, order.Timestamps, 1)
	assert.Equal(t, "created", order.Timestamps[0].Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(500), order.Items[0].UnitPriceCents)
	assert.Equal(t, "Margherita", order.Items[0].Name)
}

func TestServiceFeeRounding(t *testing.T) {
	assert.Equal(t, int64(100), ServiceFeeCents(1000))
	assert.Equal(t, int64(100), ServiceFeeCents(1001))
	assert.Equal(t, int64(101), ServiceFeeCents(1005))
	assert.Equal(t, int64(0), ServiceFeeCents(0))
}

func TestCreateOrderValidation(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.client, CreateOrderInput{RestaurantID: 999, Items: []OrderLineInput{{ArticleID: f.margherita.ID, Quantity: 1}}})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "restaurant", nf.Entity)

	_, err = f.svc.Create(ctx, f.client, CreateOrderInput{RestaurantID: f.restaurant.ID})
	assert.True(t, IsValidation(err))

	_, err = f.svc.Create(ctx, f.client, CreateOrderInput{
		RestaurantID: f.restaurant.ID,
		Items:        []OrderLineInput{{ArticleID: f.margherita.ID, Quantity: 0}},
	})
	assert.True(t, IsValidation(err))

	// Article from another restaurant: cross-restaurant carts are rejected.
	_, err = f.svc.Create(ctx, f.client, CreateOrderInput{
		RestaurantID: f.restaurant.ID,
		Items:        []OrderLineInput{{ArticleID: f.quattro.ID, Quantity: 1}},
	})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "article", nf.Entity)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.place(t)

	accepted, err := f.svc.UpdateStatus(ctx, f.owner, order.ID, repository.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusAccepted, accepted.Status)
	assert.True(t, accepted.Timestamps.Has("accepted"))

	// A restaurateur can never mark an order delivered.
	_, err = f.svc.UpdateStatus(ctx, f.owner, order.ID, repository.StatusDelivered)
	assert.True(t, IsInvalidTransition(err))

	_, err = f.svc.UpdateStatus(ctx, f.owner, order.ID, repository.StatusInProgress)
	require.NoError(t, err)
	ready, err := f.svc.UpdateStatus(ctx, f.owner, order.ID, repository.StatusReady)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusReady, ready.Status)

	// An unassigned courier fails ownership, not the transition table.
	_, err = f.svc.UpdateStatus(ctx, f.courier, order.ID, repository.StatusDelivered)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.AssignDeliveryPerson(ctx, order.ID, f.courier.UserID)
	require.NoError(t, err)
	delivered, err := f.svc.UpdateStatus(ctx, f.courier, order.ID, repository.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusDelivered, delivered.Status)

	// created, accepted, in_progress, ready, delivered — N transitions,
	// N+1 trail entries in chronological order.
	require.Len(t, delivered.Timestamps, 5)
	keys := []string{"created", "accepted", "in_progress", "ready", "delivered"}
	for i, stamp := range delivered.Timestamps {
		assert.Equal(t, keys[i], stamp.Status)
		if i > 0 {
			assert.True(t, stamp.At.After(delivered.Timestamps[i-1].At))
		}
	}

	// Terminal: nothing moves a delivered order, even for an admin.
	_, err = f.svc.UpdateStatus(ctx, f.admin, order.ID, repository.StatusPending)
	assert.True(t, IsInvalidTransition(err))
}

func TestOwnershipGatePrecedesTransitionGate(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t)

	// PENDING -> ACCEPTED is legal for a restaurateur, but this one does
	// not own the order's restaurant.
	_, err := f.svc.UpdateStatus(context.Background(), f.otherOwner, order.ID, repository.StatusAccepted)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestClientCancelOnlyWhilePending(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.place(t)

	// A stranger client cannot cancel someone else's order.
	stranger := Actor{UserID: 9999, Roles: role.NewSet(role.Client)}
	_, err := f.svc.UpdateStatus(ctx, stranger, order.ID, repository.StatusCanceled)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UpdateStatus(ctx, f.owner, order.ID, repository.StatusAccepted)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.client, order.ID, repository.StatusCanceled)
	assert.True(t, IsInvalidTransition(err))
}

func TestUpdateStatusConflict(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.place(t)

	f.orders.beforeUpdateStatus = func() {
		// A concurrent admin cancels between our read and write.
		f.orders.orders[order.ID].Status = repository.StatusCanceled
		f.orders.beforeUpdateStatus = nil
	}
	_, err := f.svc.UpdateStatus(ctx, f.owner, order.ID, repository.StatusAccepted)
	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestAssignDeliveryPerson(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.place(t)

	// Target must exist and hold the LIVREUR role.
	var nf *NotFoundError
	_, err := f.svc.AssignDeliveryPerson(ctx, order.ID, 4242)
	require.ErrorAs(t, err, &nf)
	_, err = f.svc.AssignDeliveryPerson(ctx, order.ID, f.client.UserID)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "delivery person", nf.Entity)

	assigned, err := f.svc.AssignDeliveryPerson(ctx, order.ID, f.courier.UserID)
	require.NoError(t, err)
	require.NotNil(t, assigned.DeliveryPersonID)
	assert.Equal(t, f.courier.UserID, *assigned.DeliveryPersonID)
	// Assignment changes neither status nor the timestamp trail.
	assert.Equal(t, repository.StatusPending, assigned.Status)
	assert.Len(t, assigned.Timestamps, 1)
}

func TestListScoping(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	first := f.place(t)
	second := f.place(t)

	_, err := f.svc.AssignDeliveryPerson(ctx, first.ID, f.courier.UserID)
	require.NoError(t, err)

	clientOrders, err := f.svc.List(ctx, f.client)
	require.NoError(t, err)
	assert.Len(t, clientOrders, 2)
	// Most recently created first.
	assert.Equal(t, second.ID, clientOrders[0].ID)

	ownerOrders, err := f.svc.List(ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, ownerOrders, 2)

	// A restaurateur without a restaurant gets an empty list, not an error.
	none, err := f.svc.List(ctx, Actor{UserID: 777, Roles: role.NewSet(role.Restaurateur)})
	require.NoError(t, err)
	assert.Empty(t, none)

	courierOrders, err := f.svc.List(ctx, f.courier)
	require.NoError(t, err)
	require.Len(t, courierOrders, 1)
	assert.Equal(t, first.ID, courierOrders[0].ID)

	adminOrders, err := f.svc.List(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, adminOrders, 2)
}

func TestGetEnforcesRelationship(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.place(t)

	_, err := f.svc.Get(ctx, f.client, order.ID)
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, f.admin, order.ID)
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, f.otherOwner, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	var nf *NotFoundError
	_, err = f.svc.Get(ctx, f.admin, 404404)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "order", nf.Entity)
}
