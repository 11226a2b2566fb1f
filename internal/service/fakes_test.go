package service

import (
	"context"
	"sort"

	"github.com/popeat/popeat/internal/auth/role"
	"github.com/popeat/popeat/internal/repository"
)

type fakeUserRepo struct {
	users  map[int64]*repository.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*repository.User), nextID: 1}
}

func (f *fakeUserRepo) FindByID(_ context.Context, id int64) (*repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*repository.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user *repository.User) (*repository.User, error) {
	clone := *user
	clone.ID = f.nextID
	f.nextID++
	f.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (f *fakeUserRepo) UpdateRoles(_ context.Context, id int64, roles []string, updatedAt int64) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Roles = nil
	for _, r := range roles {
		u.Roles = append(u.Roles, role.Role(r))
	}
	u.UpdatedAt = updatedAt
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, limit, offset int) ([]*repository.User, error) {
	ids := make([]int64, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []*repository.User
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) == limit {
			break
		}
		clone := *f.users[id]
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type fakeRestaurantRepo struct {
	restaurants map[int64]*repository.Restaurant
	nextID      int64
}

func newFakeRestaurantRepo() *fakeRestaurantRepo {
	return &fakeRestaurantRepo{restaurants: make(map[int64]*repository.Restaurant), nextID: 1}
}

func (f *fakeRestaurantRepo) FindByID(_ context.Context, id int64) (*repository.Restaurant, error) {
	r, ok := f.restaurants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (f *fakeRestaurantRepo) FindByOwner(_ context.Context, ownerID int64) (*repository.Restaurant, error) {
	for _, r := range f.restaurants {
		if r.OwnerID == ownerID {
			clone := *r
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRestaurantRepo) List(_ context.Context) ([]*repository.Restaurant, error) {
	var out []*repository.Restaurant
	for _, r := range f.restaurants {
		clone := *r
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRestaurantRepo) Create(_ context.Context, restaurant *repository.Restaurant) (*repository.Restaurant, error) {
	clone := *restaurant
	clone.ID = f.nextID
	f.nextID++
	f.restaurants[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (f *fakeRestaurantRepo) Update(_ context.Context, restaurant *repository.Restaurant) error {
	if _, ok := f.restaurants[restaurant.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *restaurant
	f.restaurants[restaurant.ID] = &clone
	return nil
}

type fakeArticleRepo struct {
	articles map[int64]*repository.Article
	nextID   int64
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{articles: make(map[int64]*repository.Article), nextID: 1}
}

func (f *fakeArticleRepo) FindByID(_ context.Context, id int64) (*repository.Article, error) {
	a, ok := f.articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (f *fakeArticleRepo) FindByIDs(_ context.Context, ids []int64) (map[int64]*repository.Article, error) {
	out := make(map[int64]*repository.Article)
	for _, id := range ids {
		if a, ok := f.articles[id]; ok {
			clone := *a
			out[id] = &clone
		}
	}
	return out, nil
}

func (f *fakeArticleRepo) ListByRestaurant(_ context.Context, restaurantID int64) ([]*repository.Article, error) {
	var out []*repository.Article
	for _, a := range f.articles {
		if a.RestaurantID == restaurantID {
			clone := *a
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeArticleRepo) Create(_ context.Context, article *repository.Article) (*repository.Article, error) {
	clone := *article
	clone.ID = f.nextID
	f.nextID++
	f.articles[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (f *fakeArticleRepo) Update(_ context.Context, article *repository.Article) error {
	if _, ok := f.articles[article.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *article
	f.articles[article.ID] = &clone
	return nil
}

func (f *fakeArticleRepo) Delete(_ context.Context, id int64) error {
	delete(f.articles, id)
	return nil
}

type fakeOrderRepo struct {
	orders map[int64]*repository.Order
	nextID int64
	// beforeUpdateStatus, when set, runs before the compare-and-swap to
	// simulate a concurrent writer.
	beforeUpdateStatus func()
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*repository.Order), nextID: 1}
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id int64) (*repository.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *o
	clone.Timestamps = append(repository.StatusTrail(nil), o.Timestamps...)
	clone.Items = append([]repository.OrderItem(nil), o.Items...)
	return &clone, nil
}

func (f *fakeOrderRepo) Create(_ context.Context, order *repository.Order) (*repository.Order, error) {
	clone := *order
	clone.ID = f.nextID
	f.nextID++
	for i := range clone.Items {
		clone.Items[i].OrderID = clone.ID
	}
	f.orders[clone.ID] = &clone
	return f.FindByID(context.Background(), clone.ID)
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, from, to repository.OrderStatus, trail repository.StatusTrail, updatedAt int64) (bool, error) {
	if f.beforeUpdateStatus != nil {
		f.beforeUpdateStatus()
	}
	o, ok := f.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.Timestamps = append(repository.StatusTrail(nil), trail...)
	o.UpdatedAt = updatedAt
	return true, nil
}

func (f *fakeOrderRepo) AssignDeliveryPerson(_ context.Context, id, deliveryPersonID int64, updatedAt int64) error {
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.DeliveryPersonID = &deliveryPersonID
	o.UpdatedAt = updatedAt
	return nil
}

func (f *fakeOrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]*repository.Order, error) {
	var out []*repository.Order
	for id, o := range f.orders {
		if filter.ClientID != nil && o.ClientID != *filter.ClientID {
			continue
		}
		if filter.RestaurantID != nil && o.RestaurantID != *filter.RestaurantID {
			continue
		}
		if filter.DeliveryPersonID != nil && (o.DeliveryPersonID == nil || *o.DeliveryPersonID != *filter.DeliveryPersonID) {
			continue
		}
		clone, _ := f.FindByID(context.Background(), id)
		out = append(out, clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (f *fakeOrderRepo) CountByStatus(_ context.Context) ([]repository.OrderStatusCount, error) {
	counts := make(map[repository.OrderStatus]int64)
	for _, o := range f.orders {
		counts[o.Status]++
	}
	var out []repository.OrderStatusCount
	for status, count := range counts {
		out = append(out, repository.OrderStatusCount{Status: status, Count: count})
	}
	return out, nil
}

func (f *fakeOrderRepo) CountByRestaurant(_ context.Context) ([]repository.RestaurantOrderCount, error) {
	counts := make(map[int64]int64)
	for _, o := range f.orders {
		counts[o.RestaurantID]++
	}
	var out []repository.RestaurantOrderCount
	for restaurantID, count := range counts {
		out = append(out, repository.RestaurantOrderCount{RestaurantID: restaurantID, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

func (f *fakeOrderRepo) DeliveredRevenueCents(_ context.Context) (int64, error) {
	var total int64
	for _, o := range f.orders {
		if o.Status == repository.StatusDelivered {
			total += o.TotalCents
		}
	}
	return total, nil
}
