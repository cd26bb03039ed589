package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionEvent announces a transaction mutation on the audit queue. The
// event id makes replayed deliveries safe to record twice.
type TransactionEvent struct {
	EventID       string    `json:"event_id"`
	Kind          string    `json:"kind"` // created, updated, deleted
	TransactionID int64     `json:"transaction_id"`
	UserID        int64     `json:"user_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewTransactionEvent stamps a fresh event for the given mutation.
func NewTransactionEvent(kind string, transactionID, userID int64) *TransactionEvent {
	return &TransactionEvent{
		EventID:       uuid.NewString(),
		Kind:          kind,
		TransactionID: transactionID,
		UserID:        userID,
		OccurredAt:    time.Now().UTC(),
	}
}

// ToJSON converts the event to its wire form.
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes a wire-form event.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
