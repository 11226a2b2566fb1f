package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/popeat/popeat/internal/repository"
)

// AuditCleanupJob purges audit rows older than the retention window.
type AuditCleanupJob struct {
	AuditLogs repository.AuditLogRepository
	Retention time.Duration
	Logger    *slog.Logger
	now       func() time.Time
}

// NewAuditCleanupJob creates the retention job.
func NewAuditCleanupJob(auditLogs repository.AuditLogRepository, retention time.Duration, logger *slog.Logger) *AuditCleanupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditCleanupJob{
		AuditLogs: auditLogs,
		Retention: retention,
		Logger:    logger,
		now:       time.Now,
	}
}

// Name implements Runnable.
func (j *AuditCleanupJob) Name() string {
	return "audit.cleanup"
}

// Run implements Runnable.
func (j *AuditCleanupJob) Run(ctx context.Context) error {
	if j == nil || j.AuditLogs == nil {
		return fmt.Errorf("audit cleanup job dependencies not configured")
	}
	if j.Retention <= 0 {
		return nil
	}
	cutoff := j.now().UTC().Add(-j.Retention).Unix()
	deleted, err := j.AuditLogs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("audit cleanup job: %w", err)
	}
	if deleted > 0 {
		j.Logger.Info("purged old audit rows", "deleted_rows", deleted)
	}
	return nil
}
