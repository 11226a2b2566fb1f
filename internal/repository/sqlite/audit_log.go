package sqlite

import (
	"context"
	"database/sql"

	"github.com/popeat/popeat/internal/repository"
)

type auditLogRepo struct {
	db *sql.DB
}

func (r *auditLogRepo) Create(ctx context.Context, record *repository.AuditRecord) error {
	const stmt = `INSERT INTO audit_logs(kind, actor_id, route, metadata, created_at)
	              VALUES(?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		record.Kind,
		record.ActorID,
		record.Route,
		record.Metadata,
		record.CreatedAt,
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		record.ID = id
	}
	return nil
}

func (r *auditLogRepo) DeleteOlderThan(ctx context.Context, cutoffUnix int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < ?`, cutoffUnix)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
