package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/popeat/popeat/internal/repository"
)

type orderRepo struct {
	db *sql.DB
}

const orderSelectColumns = `id, reference, client_id, restaurant_id, delivery_person_id, delivery_address,
	payment_method, items_subtotal_cents, delivery_fee_cents, service_fee_cents, total_cents, status,
	timestamps, created_at, updated_at`

func (r *orderRepo) FindByID(ctx context.Context, id int64) (*repository.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE id = ?", orderSelectColumns)
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.hydrateItems(ctx, []*repository.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) Create(ctx context.Context, order *repository.Order) (*repository.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	trail, err := encodeTrail(order.Timestamps)
	if err != nil {
		return nil, err
	}
	const stmt = `INSERT INTO orders(reference, client_id, restaurant_id, delivery_person_id, delivery_address,
		payment_method, items_subtotal_cents, delivery_fee_cents, service_fee_cents, total_cents, status,
		timestamps, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, stmt,
		order.Reference,
		order.ClientID,
		order.RestaurantID,
		nullableInt(order.DeliveryPersonID),
		order.DeliveryAddress,
		order.PaymentMethod,
		order.ItemsSubtotalCents,
		order.DeliveryFeeCents,
		order.ServiceFeeCents,
		order.TotalCents,
		string(order.Status),
		trail,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	const itemStmt = `INSERT INTO order_items(order_id, article_id, name, unit_price_cents, quantity)
	                  VALUES(?, ?, ?, ?, ?)`
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = orderID
		itemRes, err := tx.ExecContext(ctx, itemStmt,
			item.OrderID, item.ArticleID, item.Name, item.UnitPriceCents, item.Quantity)
		if err != nil {
			return nil, err
		}
		if id, err := itemRes.LastInsertId(); err == nil {
			item.ID = id
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	order.ID = orderID
	return order, nil
}

// UpdateStatus writes the transition only when the stored status still
// matches from, so two concurrent writers cannot both win.
func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, from, to repository.OrderStatus, trail repository.StatusTrail, updatedAt int64) (bool, error) {
	encoded, err := encodeTrail(trail)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, timestamps = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), encoded, updatedAt, id, string(from))
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (r *orderRepo) AssignDeliveryPerson(ctx context.Context, id, deliveryPersonID int64, updatedAt int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET delivery_person_id = ?, updated_at = ? WHERE id = ?`,
		deliveryPersonID, updatedAt, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *orderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*repository.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders", orderSelectColumns)
	var conds []string
	var args []any

	if filter.ClientID != nil {
		conds = append(conds, "client_id = ?")
		args = append(args, *filter.ClientID)
	}
	if filter.RestaurantID != nil {
		conds = append(conds, "restaurant_id = ?")
		args = append(args, *filter.RestaurantID)
	}
	if filter.DeliveryPersonID != nil {
		conds = append(conds, "delivery_person_id = ?")
		args = append(args, *filter.DeliveryPersonID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*repository.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.hydrateItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepo) CountByStatus(ctx context.Context) ([]repository.OrderStatusCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []repository.OrderStatusCount
	for rows.Next() {
		var count repository.OrderStatusCount
		var status string
		if err := rows.Scan(&status, &count.Count); err != nil {
			return nil, err
		}
		count.Status = repository.OrderStatus(status)
		counts = append(counts, count)
	}
	return counts, rows.Err()
}

func (r *orderRepo) CountByRestaurant(ctx context.Context) ([]repository.RestaurantOrderCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.name, COUNT(o.id)
		 FROM orders o JOIN restaurants r ON r.id = o.restaurant_id
		 GROUP BY r.id, r.name
		 ORDER BY COUNT(o.id) DESC, r.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []repository.RestaurantOrderCount
	for rows.Next() {
		var count repository.RestaurantOrderCount
		if err := rows.Scan(&count.RestaurantID, &count.Name, &count.Count); err != nil {
			return nil, err
		}
		counts = append(counts, count)
	}
	return counts, rows.Err()
}

func (r *orderRepo) DeliveredRevenueCents(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(total_cents) FROM orders WHERE status = ?`,
		string(repository.StatusDelivered)).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

func (r *orderRepo) hydrateItems(ctx context.Context, orders []*repository.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int64]*repository.Order, len(orders))
	placeholders := make([]string, len(orders))
	args := make([]any, len(orders))
	for i, order := range orders {
		byID[order.ID] = order
		placeholders[i] = "?"
		args[i] = order.ID
	}
	query := `SELECT id, order_id, article_id, name, unit_price_cents, quantity
	          FROM order_items WHERE order_id IN (` + strings.Join(placeholders, ",") + `) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item repository.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ArticleID, &item.Name, &item.UnitPriceCents, &item.Quantity); err != nil {
			return err
		}
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	return rows.Err()
}

func scanOrder(row rowScanner) (*repository.Order, error) {
	var order repository.Order
	var deliveryPerson sql.NullInt64
	var status, trail string
	if err := row.Scan(
		&order.ID,
		&order.Reference,
		&order.ClientID,
		&order.RestaurantID,
		&deliveryPerson,
		&order.DeliveryAddress,
		&order.PaymentMethod,
		&order.ItemsSubtotalCents,
		&order.DeliveryFeeCents,
		&order.ServiceFeeCents,
		&order.TotalCents,
		&status,
		&trail,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	order.DeliveryPersonID = nullableIntPtr(deliveryPerson)
	order.Status = repository.OrderStatus(status)
	decoded, err := decodeTrail(trail)
	if err != nil {
		return nil, err
	}
	order.Timestamps = decoded
	return &order, nil
}

func encodeTrail(trail repository.StatusTrail) (string, error) {
	if len(trail) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(trail)
	if err != nil {
		return "", fmt.Errorf("encode timestamp trail: %w", err)
	}
	return string(b), nil
}

func decodeTrail(raw string) (repository.StatusTrail, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var trail repository.StatusTrail
	if err := json.Unmarshal([]byte(raw), &trail); err != nil {
		return nil, fmt.Errorf("decode timestamp trail: %w", err)
	}
	return trail, nil
}
