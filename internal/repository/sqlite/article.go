package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/popeat/popeat/internal/repository"
)

type articleRepo struct {
	db *sql.DB
}

const articleSelectColumns = `id, restaurant_id, name, description, price_cents, available, created_at, updated_at`

func (r *articleRepo) FindByID(ctx context.Context, id int64) (*repository.Article, error) {
	query := fmt.Sprintf("SELECT %s FROM articles WHERE id = ?", articleSelectColumns)
	row := r.db.QueryRowContext(ctx, query, id)
	return scanArticle(row)
}

func (r *articleRepo) FindByIDs(ctx context.Context, ids []int64) (map[int64]*repository.Article, error) {
	if len(ids) == 0 {
		return map[int64]*repository.Article{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf("SELECT %s FROM articles WHERE id IN (%s)",
		articleSelectColumns, strings.Join(placeholders, ","))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := make(map[int64]*repository.Article, len(ids))
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles[article.ID] = article
	}
	return articles, rows.Err()
}

func (r *articleRepo) ListByRestaurant(ctx context.Context, restaurantID int64) ([]*repository.Article, error) {
	query := fmt.Sprintf("SELECT %s FROM articles WHERE restaurant_id = ? ORDER BY id", articleSelectColumns)
	rows, err := r.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*repository.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func (r *articleRepo) Create(ctx context.Context, article *repository.Article) (*repository.Article, error) {
	const stmt = `INSERT INTO articles(restaurant_id, name, description, price_cents, available, created_at, updated_at)
	              VALUES(?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		article.RestaurantID,
		article.Name,
		article.Description,
		article.PriceCents,
		boolToInt(article.Available),
		article.CreatedAt,
		article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if id, err := res.LastInsertId(); err == nil {
		article.ID = id
	}
	return article, nil
}

func (r *articleRepo) Update(ctx context.Context, article *repository.Article) error {
	const stmt = `UPDATE articles SET name = ?, description = ?, price_cents = ?, available = ?, updated_at = ?
	              WHERE id = ?`
	res, err := r.db.ExecContext(ctx, stmt,
		article.Name,
		article.Description,
		article.PriceCents,
		boolToInt(article.Available),
		article.UpdatedAt,
		article.ID,
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

func (r *articleRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	return err
}

func scanArticle(row rowScanner) (*repository.Article, error) {
	var article repository.Article
	var available int
	if err := row.Scan(
		&article.ID,
		&article.RestaurantID,
		&article.Name,
		&article.Description,
		&article.PriceCents,
		&available,
		&article.CreatedAt,
		&article.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	article.Available = available == 1
	return &article, nil
}
