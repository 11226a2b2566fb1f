package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/popeat/popeat/internal/auth/role"
	"github.com/popeat/popeat/internal/repository"
)

type userRepo struct {
	db *sql.DB
}

const userSelectColumns = `id, email, name, password_hash, roles, created_at, updated_at`

func userSelectBy(field string) string {
	return fmt.Sprintf("SELECT %s FROM users WHERE %s = ?", userSelectColumns, field)
}

func (r *userRepo) FindByID(ctx context.Context, id int64) (*repository.User, error) {
	row := r.db.QueryRowContext(ctx, userSelectBy("id"), id)
	return scanUser(row)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	row := r.db.QueryRowContext(ctx, userSelectBy("email"), email)
	return scanUser(row)
}

func (r *userRepo) Create(ctx context.Context, user *repository.User) (*repository.User, error) {
	const stmt = `INSERT INTO users(email, name, password_hash, roles, created_at, updated_at)
	              VALUES(?, ?, ?, ?, ?, ?)`
	roles, err := encodeStringSlice(user.Roles.Strings())
	if err != nil {
		return nil, fmt.Errorf("encode user roles: %w", err)
	}
	res, err := r.db.ExecContext(ctx, stmt,
		user.Email,
		user.Name,
		user.PasswordHash,
		roles,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if id, err := res.LastInsertId(); err == nil {
		user.ID = id
	}
	return user, nil
}

func (r *userRepo) UpdateRoles(ctx context.Context, id int64, roles []string, updatedAt int64) error {
	encoded, err := encodeStringSlice(roles)
	if err != nil {
		return fmt.Errorf("encode user roles: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE users SET roles = ?, updated_at = ? WHERE id = ?`, encoded, updatedAt, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) List(ctx context.Context, limit, offset int) ([]*repository.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users ORDER BY id LIMIT ? OFFSET ?", userSelectColumns)
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*repository.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*repository.User, error) {
	var user repository.User
	var roles sql.NullString
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&roles,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	names, err := decodeJSONSlice(roles.String)
	if err != nil {
		return nil, fmt.Errorf("decode user roles: %w", err)
	}
	set, err := role.ParseSet(names)
	if err != nil {
		return nil, fmt.Errorf("decode user roles: %w", err)
	}
	user.Roles = set
	return &user, nil
}
