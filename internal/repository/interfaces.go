package repository

import "context"

// Store exposes one repository per aggregate root.
type Store interface {
	Users() UserRepository
	Restaurants() RestaurantRepository
	Articles() ArticleRepository
	Orders() OrderRepository
	AuditLogs() AuditLogRepository
}

// UserRepository defines account data access.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	UpdateRoles(ctx context.Context, id int64, roles []string, updatedAt int64) error
	List(ctx context.Context, limit, offset int) ([]*User, error)
	Count(ctx context.Context) (int64, error)
}

// RestaurantRepository defines restaurant data access.
type RestaurantRepository interface {
	FindByID(ctx context.Context, id int64) (*Restaurant, error)
	FindByOwner(ctx context.Context, ownerID int64) (*Restaurant, error)
	List(ctx context.Context) ([]*Restaurant, error)
	Create(ctx context.Context, restaurant *Restaurant) (*Restaurant, error)
	Update(ctx context.Context, restaurant *Restaurant) error
}

// ArticleRepository defines menu article data access.
type ArticleRepository interface {
	FindByID(ctx context.Context, id int64) (*Article, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*Article, error)
	ListByRestaurant(ctx context.Context, restaurantID int64) ([]*Article, error)
	Create(ctx context.Context, article *Article) (*Article, error)
	Update(ctx context.Context, article *Article) error
	Delete(ctx context.Context, id int64) error
}

// OrderFilter scopes order listings. Zero-value fields are ignored.
type OrderFilter struct {
	ClientID         *int64
	RestaurantID     *int64
	DeliveryPersonID *int64
	Limit            int
}

// OrderRepository defines order data access. Reads hydrate line items.
type OrderRepository interface {
	FindByID(ctx context.Context, id int64) (*Order, error)
	Create(ctx context.Context, order *Order) (*Order, error)
	// UpdateStatus persists a transition only when the stored status still
	// equals from (compare-and-swap). It reports whether a row changed.
	UpdateStatus(ctx context.Context, id int64, from, to OrderStatus, trail StatusTrail, updatedAt int64) (bool, error)
	AssignDeliveryPerson(ctx context.Context, id, deliveryPersonID int64, updatedAt int64) error
	// List returns orders matching filter, most recently created first.
	List(ctx context.Context, filter OrderFilter) ([]*Order, error)
	CountByStatus(ctx context.Context) ([]OrderStatusCount, error)
	CountByRestaurant(ctx context.Context) ([]RestaurantOrderCount, error)
	DeliveredRevenueCents(ctx context.Context) (int64, error)
}

// AuditLogRepository persists audit events.
type AuditLogRepository interface {
	Create(ctx context.Context, record *AuditRecord) error
	DeleteOlderThan(ctx context.Context, cutoffUnix int64) (int64, error)
}
