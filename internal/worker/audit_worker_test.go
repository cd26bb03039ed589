package worker

import (
	"context"
	"testing"
	"time"

	"github.com/FjeldMats/FinanceLog/internal/amqp"
	"github.com/FjeldMats/FinanceLog/internal/storage"
)

type memoryAuditStore struct {
	events map[string]storage.AuditEvent
}

func newMemoryAuditStore() *memoryAuditStore {
	return &memoryAuditStore{events: make(map[string]storage.AuditEvent)}
}

func (m *memoryAuditStore) InsertAuditEvent(ctx context.Context, ev storage.AuditEvent) error {
	if _, exists := m.events[ev.EventID]; exists {
		return nil
	}
	m.events[ev.EventID] = ev
	return nil
}

func (m *memoryAuditStore) CountAuditEvents(ctx context.Context) (int64, error) {
	return int64(len(m.events)), nil
}

func TestHandleEvent(t *testing.T) {
	store := newMemoryAuditStore()
	w := NewAuditWorker(store)

	ev := &amqp.TransactionEvent{
		EventID:       "evt-1",
		Kind:          "created",
		TransactionID: 42,
		UserID:        7,
		OccurredAt:    time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC),
	}
	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	got, ok := store.events["evt-1"]
	if !ok {
		t.Fatal("event was not recorded")
	}
	if got.Kind != "created" || got.TransactionID != 42 || got.UserID != 7 {
		t.Errorf("recorded event = %+v", got)
	}
}

func TestHandleEventRejectsMalformed(t *testing.T) {
	w := NewAuditWorker(newMemoryAuditStore())

	tests := []struct {
		name string
		ev   *amqp.TransactionEvent
	}{
		{"missing id", &amqp.TransactionEvent{Kind: "created"}},
		{"missing kind", &amqp.TransactionEvent{EventID: "evt-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := w.HandleEvent(context.Background(), tt.ev); err == nil {
				t.Error("HandleEvent accepted malformed event")
			}
		})
	}
}

func TestEventRoundtrip(t *testing.T) {
	ev := amqp.NewTransactionEvent("updated", 42, 7)

	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	decoded, err := amqp.TransactionEventFromJSON(data)
	if err != nil {
		t.Fatalf("TransactionEventFromJSON: %v", err)
	}
	if decoded.EventID != ev.EventID || decoded.Kind != "updated" || decoded.TransactionID != 42 {
		t.Errorf("decoded = %+v, want original", decoded)
	}
}

type scriptedSource struct {
	events []*amqp.TransactionEvent
}

func (s *scriptedSource) ConsumeTransactionEvents(ctx context.Context, handler func(*amqp.TransactionEvent) error) error {
	for _, ev := range s.events {
		if err := handler(ev); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRunConsumesUntilCancelled(t *testing.T) {
	store := newMemoryAuditStore()
	w := NewAuditWorker(store)

	source := &scriptedSource{events: []*amqp.TransactionEvent{
		amqp.NewTransactionEvent("created", 1, 7),
		amqp.NewTransactionEvent("deleted", 1, 7),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, source, time.Hour) }()

	// Give the consumer a moment to drain the scripted events.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	n, _ := store.CountAuditEvents(context.Background())
	if n != 2 {
		t.Errorf("recorded events = %d, want 2", n)
	}
}
