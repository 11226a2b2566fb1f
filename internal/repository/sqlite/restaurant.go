package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/popeat/popeat/internal/repository"
)

type restaurantRepo struct {
	db *sql.DB
}

const restaurantSelectColumns = `id, owner_id, name, description, address, delivery_fee_cents, created_at, updated_at`

func restaurantSelectBy(field string) string {
	return fmt.Sprintf("SELECT %s FROM restaurants WHERE %s = ?", restaurantSelectColumns, field)
}

func (r *restaurantRepo) FindByID(ctx context.Context, id int64) (*repository.Restaurant, error) {
	row := r.db.QueryRowContext(ctx, restaurantSelectBy("id"), id)
	return scanRestaurant(row)
}

func (r *restaurantRepo) FindByOwner(ctx context.Context, ownerID int64) (*repository.Restaurant, error) {
	row := r.db.QueryRowContext(ctx, restaurantSelectBy("owner_id"), ownerID)
	return scanRestaurant(row)
}

func (r *restaurantRepo) List(ctx context.Context) ([]*repository.Restaurant, error) {
	query := fmt.Sprintf("SELECT %s FROM restaurants ORDER BY id", restaurantSelectColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []*repository.Restaurant
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, restaurant)
	}
	return restaurants, rows.Err()
}

func (r *restaurantRepo) Create(ctx context.Context, restaurant *repository.Restaurant) (*repository.Restaurant, error) {
	const stmt = `INSERT INTO restaurants(owner_id, name, description, address, delivery_fee_cents, created_at, updated_at)
	              VALUES(?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		restaurant.OwnerID,
		restaurant.Name,
		restaurant.Description,
		restaurant.Address,
		restaurant.DeliveryFeeCents,
		restaurant.CreatedAt,
		restaurant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if id, err := res.LastInsertId(); err == nil {
		restaurant.ID = id
	}
	return restaurant, nil
}

func (r *restaurantRepo) Update(ctx context.Context, restaurant *repository.Restaurant) error {
	const stmt = `UPDATE restaurants SET name = ?, description = ?, address = ?, delivery_fee_cents = ?, updated_at = ?
	              WHERE id = ?`
	res, err := r.db.ExecContext(ctx, stmt,
		restaurant.Name,
		restaurant.Description,
		restaurant.Address,
		restaurant.DeliveryFeeCents,
		restaurant.UpdatedAt,
		restaurant.ID,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanRestaurant(row rowScanner) (*repository.Restaurant, error) {
	var restaurant repository.Restaurant
	if err := row.Scan(
		&restaurant.ID,
		&restaurant.OwnerID,
		&restaurant.Name,
		&restaurant.Description,
		&restaurant.Address,
		&restaurant.DeliveryFeeCents,
		&restaurant.CreatedAt,
		&restaurant.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &restaurant, nil
}
