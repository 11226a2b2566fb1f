package sqlite

import (
	"database/sql"

	"github.com/popeat/popeat/internal/repository"
)

// Store wires SQLite-backed repository implementations.
type Store struct {
	db          *sql.DB
	users       repository.UserRepository
	restaurants repository.RestaurantRepository
	articles    repository.ArticleRepository
	orders      repository.OrderRepository
	auditLogs   repository.AuditLogRepository
}

// NewStore constructs a SQLite-backed repository store.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:          db,
		users:       &userRepo{db: db},
		restaurants: &restaurantRepo{db: db},
		articles:    &articleRepo{db: db},
		orders:      &orderRepo{db: db},
		auditLogs:   &auditLogRepo{db: db},
	}
}

func (s *Store) Users() repository.UserRepository {
	return s.users
}

func (s *Store) Restaurants() repository.RestaurantRepository {
	return s.restaurants
}

func (s *Store) Articles() repository.ArticleRepository {
	return s.articles
}

func (s *Store) Orders() repository.OrderRepository {
	return s.orders
}

func (s *Store) AuditLogs() repository.AuditLogRepository {
	return s.auditLogs
}
