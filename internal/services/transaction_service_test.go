package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/FjeldMats/FinanceLog/internal/core"
)

type spyPublisher struct {
	events []string
	err    error
}

func (s *spyPublisher) PublishTransactionEvent(ctx context.Context, kind string, t core.Transaction) error {
	s.events = append(s.events, fmt.Sprintf("%s:%d", kind, t.ID))
	return s.err
}

func validTransaction() core.Transaction {
	return core.Transaction{
		Date:     core.NewDate(2024, 5, 1),
		Category: "Groceries",
		Amount:   decimal.RequireFromString("-42.50"),
	}
}

func TestCreateAssignsOwner(t *testing.T) {
	store := &fakeStore{}
	pub := &spyPublisher{}
	svc := NewTransactionService(store, pub)

	in := validTransaction()
	in.ID = 999 // client-supplied ids are ignored
	in.UserID = 123

	created, err := svc.Create(context.Background(), 7, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.UserID != 7 {
		t.Errorf("UserID = %d, want 7", created.UserID)
	}
	if created.ID == 999 {
		t.Error("client-supplied id was not discarded")
	}
	if len(pub.events) != 1 || pub.events[0] != fmt.Sprintf("created:%d", created.ID) {
		t.Errorf("events = %v, want single created event", pub.events)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	store := &fakeStore{}
	pub := &spyPublisher{}
	svc := NewTransactionService(store, pub)

	in := validTransaction()
	in.Category = ""

	_, err := svc.Create(context.Background(), 7, in)
	if !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("err = %v, want ErrEmptyCategory", err)
	}
	if len(store.transactions) != 0 {
		t.Error("invalid transaction was persisted")
	}
	if len(pub.events) != 0 {
		t.Errorf("events = %v, want none", pub.events)
	}
}

func TestUpdateOwnTransaction(t *testing.T) {
	store := &fakeStore{}
	svc := NewTransactionService(store, nil)

	created, err := svc.Create(context.Background(), 7, validTransaction())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newCategory := "Dining"
	updated, err := svc.Update(context.Background(), 7, created.ID, core.TransactionPatch{Category: &newCategory})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Category != "Dining" {
		t.Errorf("Category = %q, want Dining", updated.Category)
	}
	if !updated.Amount.Equal(created.Amount) {
		t.Errorf("Amount changed: %v -> %v", created.Amount, updated.Amount)
	}
}

func TestUpdateEmptyPatch(t *testing.T) {
	store := &fakeStore{}
	svc := NewTransactionService(store, nil)

	created, err := svc.Create(context.Background(), 7, validTransaction())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Update(context.Background(), 7, created.ID, core.TransactionPatch{})
	if !errors.Is(err, core.ErrEmptyPatch) {
		t.Fatalf("err = %v, want ErrEmptyPatch", err)
	}
}

func TestCrossOwnerAccessIsNotFound(t *testing.T) {
	store := &fakeStore{}
	pub := &spyPublisher{}
	svc := NewTransactionService(store, pub)

	created, err := svc.Create(context.Background(), 7, validTransaction())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	pub.events = nil

	newCategory := "Dining"
	if _, err := svc.Update(context.Background(), 8, created.ID, core.TransactionPatch{Category: &newCategory}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update as other user: err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), 8, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Delete as other user: err = %v, want ErrNotFound", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("events = %v, want none for failed mutations", pub.events)
	}

	// The row is untouched.
	got, err := store.Get(context.Background(), 7, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Category != "Groceries" {
		t.Errorf("Category = %q, want Groceries", got.Category)
	}
}

func TestDeletePublishesEvent(t *testing.T) {
	store := &fakeStore{}
	pub := &spyPublisher{}
	svc := NewTransactionService(store, pub)

	created, err := svc.Create(context.Background(), 7, validTransaction())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	pub.events = nil

	if err := svc.Delete(context.Background(), 7, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0] != fmt.Sprintf("deleted:%d", created.ID) {
		t.Errorf("events = %v, want single deleted event", pub.events)
	}
	if _, err := store.Get(context.Background(), 7, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	store := &fakeStore{}
	pub := &spyPublisher{err: errors.New("broker down")}
	svc := NewTransactionService(store, pub)

	created, err := svc.Create(context.Background(), 7, validTransaction())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Error("transaction was not persisted")
	}
}

func TestNilPublisher(t *testing.T) {
	store := &fakeStore{}
	svc := NewTransactionService(store, nil)

	created, err := svc.Create(context.Background(), 7, validTransaction())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(context.Background(), 7, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestListFilters(t *testing.T) {
	store := &fakeStore{}
	svc := NewTransactionService(store, nil)

	dates := [][3]int{{2024, 2, 1}, {2024, 3, 1}, {2023, 3, 1}}
	for _, d := range dates {
		tr := validTransaction()
		tr.Date = core.NewDate(d[0], d[1], d[2])
		if _, err := svc.Create(context.Background(), 7, tr); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := svc.List(context.Background(), 7, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unfiltered count = %d, want 3", len(all))
	}

	year, err := svc.List(context.Background(), 7, 2024, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(year) != 2 {
		t.Errorf("2024 count = %d, want 2", len(year))
	}

	month, err := svc.List(context.Background(), 7, 2024, 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(month) != 1 {
		t.Errorf("2024-03 count = %d, want 1", len(month))
	}
}
