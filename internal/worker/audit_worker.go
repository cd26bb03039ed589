// Package worker records transaction mutation events from the queue into the
// audit log.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FjeldMats/FinanceLog/internal/amqp"
	"github.com/FjeldMats/FinanceLog/internal/storage"
)

// AuditStore is the slice of the repository the worker needs.
type AuditStore interface {
	InsertAuditEvent(ctx context.Context, ev storage.AuditEvent) error
	CountAuditEvents(ctx context.Context) (int64, error)
}

// EventSource delivers queued transaction events to a handler until the
// context ends.
type EventSource interface {
	ConsumeTransactionEvents(ctx context.Context, handler func(*amqp.TransactionEvent) error) error
}

// AuditWorker consumes transaction events and persists them. Inserts are
// idempotent on event id, so at-least-once delivery is safe.
type AuditWorker struct {
	store AuditStore
}

func NewAuditWorker(store AuditStore) *AuditWorker {
	return &AuditWorker{store: store}
}

// HandleEvent records a single consumed event.
func (w *AuditWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	if ev.EventID == "" || ev.Kind == "" {
		return fmt.Errorf("malformed event: id=%q kind=%q", ev.EventID, ev.Kind)
	}

	err := w.store.InsertAuditEvent(ctx, storage.AuditEvent{
		EventID:       ev.EventID,
		Kind:          ev.Kind,
		TransactionID: ev.TransactionID,
		UserID:        ev.UserID,
		OccurredAt:    ev.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}

	slog.InfoContext(ctx, "Audit event recorded",
		"event_id", ev.EventID,
		"kind", ev.Kind,
		"transaction_id", ev.TransactionID,
		"user_id", ev.UserID)
	return nil
}

// Run consumes events and periodically logs audit-log size until ctx ends.
func (w *AuditWorker) Run(ctx context.Context, source EventSource, statsInterval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := source.ConsumeTransactionEvents(ctx, func(ev *amqp.TransactionEvent) error {
			return w.HandleEvent(ctx, ev)
		})
		if err != nil && err != context.Canceled {
			return fmt.Errorf("consume events: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				n, err := w.store.CountAuditEvents(ctx)
				if err != nil {
					slog.ErrorContext(ctx, "Failed to count audit events", "error", err)
					continue
				}
				slog.InfoContext(ctx, "Audit log stats", "recorded_events", n)
			}
		}
	})

	return g.Wait()
}
