package security

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/popeat/popeat/internal/repository"
)

// Event describes a security-relevant action: an authorization denial, a
// login attempt, an order mutation.
type Event struct {
	Kind     string
	ActorID  string
	Route    string
	IP       string
	Metadata map[string]any
	Occurred time.Time
}

// Recorder records audit events for later analysis. Implementations must
// never fail the surrounding request: recording problems are logged and
// swallowed, not returned.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// LoggerRecorder writes audit events to a slog.Logger.
type LoggerRecorder struct {
	logger *slog.Logger
}

// NewLoggerRecorder returns a recorder writing to logger (discards if nil).
func NewLoggerRecorder(logger *slog.Logger) *LoggerRecorder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LoggerRecorder{logger: logger}
}

// Record implements Recorder.
func (r *LoggerRecorder) Record(ctx context.Context, event Event) {
	if r == nil || r.logger == nil {
		return
	}
	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}
	r.logger.InfoContext(ctx, "audit event",
		"kind", event.Kind,
		"actor_id", event.ActorID,
		"route", event.Route,
		"ip", event.IP,
		"metadata", event.Metadata,
		"occurred", event.Occurred.Format(time.RFC3339Nano))
}

// StoreRecorder persists audit events to the audit_logs table. A failed
// write is logged locally and otherwise ignored.
type StoreRecorder struct {
	logs   repository.AuditLogRepository
	logger *slog.Logger
}

// NewStoreRecorder returns a sqlite-backed recorder.
func NewStoreRecorder(logs repository.AuditLogRepository, logger *slog.Logger) *StoreRecorder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &StoreRecorder{logs: logs, logger: logger}
}

// Record implements Recorder.
func (r *StoreRecorder) Record(ctx context.Context, event Event) {
	if err := r.Write(ctx, event); err != nil {
		r.logger.Warn("audit write failed", "kind", event.Kind, "error", err)
	}
}

// Write persists the event, returning the storage error for callers that
// want to retry (Record swallows it).
func (r *StoreRecorder) Write(ctx context.Context, event Event) error {
	if r == nil || r.logs == nil {
		return nil
	}
	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}
	metadata := ""
	if len(event.Metadata) > 0 {
		if encoded, err := json.Marshal(event.Metadata); err == nil {
			metadata = string(encoded)
		}
	}
	record := &repository.AuditRecord{
		Kind:      event.Kind,
		ActorID:   event.ActorID,
		Route:     event.Route,
		Metadata:  metadata,
		CreatedAt: event.Occurred.Unix(),
	}
	return r.logs.Create(ctx, record)
}

// MultiRecorder fans an event out to several recorders.
type MultiRecorder []Recorder

// Record implements Recorder.
func (m MultiRecorder) Record(ctx context.Context, event Event) {
	for _, r := range m {
		if r != nil {
			r.Record(ctx, event)
		}
	}
}
