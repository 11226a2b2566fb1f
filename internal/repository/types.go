package repository

import (
	"strings"
	"time"

	"github.com/popeat/popeat/internal/auth/role"
)

// OrderStatus is an order lifecycle state as persisted.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusAccepted   OrderStatus = "ACCEPTED"
	StatusInProgress OrderStatus = "IN_PROGRESS"
	StatusReady      OrderStatus = "READY"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCanceled   OrderStatus = "CANCELED"
)

// OrderStatuses lists every lifecycle state.
var OrderStatuses = []OrderStatus{
	StatusPending, StatusAccepted, StatusInProgress,
	StatusReady, StatusDelivered, StatusCanceled,
}

// ParseOrderStatus validates a raw status name.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	candidate := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	for _, s := range OrderStatuses {
		if candidate == s {
			return s, true
		}
	}
	return "", false
}

// Key is the lowercase name used in the timestamp trail.
func (s OrderStatus) Key() string {
	return strings.ToLower(string(s))
}

// StatusStamp records when an order entered a lifecycle state.
type StatusStamp struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

// StatusTrail is the append-only, insertion-ordered timestamp trail of an
// order. The "created" entry is written at construction; every transition
// appends one entry keyed by the new status's lowercase name.
type StatusTrail []StatusStamp

// Append returns the trail with a stamp for key added at instant at.
func (t StatusTrail) Append(key string, at time.Time) StatusTrail {
	return append(t, StatusStamp{Status: key, At: at.UTC()})
}

// Has reports whether the trail already contains key.
func (t StatusTrail) Has(key string) bool {
	for _, stamp := range t {
		if stamp.Status == key {
			return true
		}
	}
	return false
}

// At returns the instant the order entered key, if recorded.
func (t StatusTrail) At(key string) (time.Time, bool) {
	for _, stamp := range t {
		if stamp.Status == key {
			return stamp.At, true
		}
	}
	return time.Time{}, false
}

// User is a platform account. Roles keeps grant order; the first role is
// the primary one and the set is never empty.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Roles        role.Set
	CreatedAt    int64
	UpdatedAt    int64
}

// Restaurant belongs to one restaurateur account.
type Restaurant struct {
	ID               int64
	OwnerID          int64
	Name             string
	Description      string
	Address          string
	DeliveryFeeCents int64
	CreatedAt        int64
	UpdatedAt        int64
}

// Article is a menu entry sold by a restaurant. Prices are cents.
type Article struct {
	ID           int64
	RestaurantID int64
	Name         string
	Description  string
	PriceCents   int64
	Available    bool
	CreatedAt    int64
	UpdatedAt    int64
}

// OrderItem is a line of an order; name and unit price are snapshots taken
// at creation so later catalog edits do not rewrite history.
type OrderItem struct {
	ID             int64
	OrderID        int64
	ArticleID      int64
	Name           string
	UnitPriceCents int64
	Quantity       int64
}

// Order is the persisted order aggregate. Monetary fields are computed at
// creation and never edited afterwards.
type Order struct {
	ID                 int64
	Reference          string
	ClientID           int64
	RestaurantID       int64
	DeliveryPersonID   *int64
	DeliveryAddress    string
	PaymentMethod      string
	ItemsSubtotalCents int64
	DeliveryFeeCents   int64
	ServiceFeeCents    int64
	TotalCents         int64
	Status             OrderStatus
	Timestamps         StatusTrail
	Items              []OrderItem
	CreatedAt          int64
	UpdatedAt          int64
}

// AuditRecord is a persisted security/audit event.
type AuditRecord struct {
	ID        int64
	Kind      string
	ActorID   string
	Route     string
	Metadata  string
	CreatedAt int64
}

// OrderStatusCount aggregates orders per lifecycle state.
type OrderStatusCount struct {
	Status OrderStatus
	Count  int64
}

// RestaurantOrderCount aggregates orders per restaurant.
type RestaurantOrderCount struct {
	RestaurantID int64
	Name         string
	Count        int64
}
