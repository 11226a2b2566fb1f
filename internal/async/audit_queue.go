package async

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/popeat/popeat/internal/security"
)

const defaultQueueSize = 256

// EventWriter is the fallible persistence side of an audit recorder.
type EventWriter interface {
	Write(ctx context.Context, event security.Event) error
}

// AuditQueue decouples audit persistence from the request path. Record
// never blocks: events queue onto a buffered channel and a worker drains
// them into the writer, retrying transient failures with exponential
// backoff. When the buffer is full the event is dropped and logged, so
// authorization decisions are never delayed by the audit trail.
type AuditQueue struct {
	writer EventWriter
	logger *slog.Logger
	events chan security.Event
	wg     sync.WaitGroup
	once   sync.Once
}

// NewAuditQueue wraps writer with an asynchronous buffer.
func NewAuditQueue(writer EventWriter, logger *slog.Logger) *AuditQueue {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AuditQueue{
		writer: writer,
		logger: logger,
		events: make(chan security.Event, defaultQueueSize),
	}
}

// Start launches the drain worker. It runs until ctx is cancelled.
func (q *AuditQueue) Start(ctx context.Context) {
	q.once.Do(func() {
		q.wg.Add(1)
		go q.drain(ctx)
	})
}

// Record implements security.Recorder.
func (q *AuditQueue) Record(_ context.Context, event security.Event) {
	if q == nil || q.writer == nil {
		return
	}
	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}
	select {
	case q.events <- event:
	default:
		q.logger.Warn("audit queue full, event dropped", "kind", event.Kind)
	}
}

// Close waits for queued events to flush after the worker context ends.
func (q *AuditQueue) Close() {
	q.wg.Wait()
}

func (q *AuditQueue) drain(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			q.flushRemaining()
			return
		case event := <-q.events:
			q.deliver(ctx, event)
		}
	}
}

func (q *AuditQueue) flushRemaining() {
	for {
		select {
		case event := <-q.events:
			q.deliver(context.Background(), event)
		default:
			return
		}
	}
}

func (q *AuditQueue) deliver(ctx context.Context, event security.Event) {
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	err := backoff.Retry(func() error {
		return q.writer.Write(ctx, event)
	}, policy)
	if err != nil {
		q.logger.Warn("audit event delivery abandoned", "kind", event.Kind, "error", err)
	}
}
