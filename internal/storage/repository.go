// Package storage implements the SQLite-backed transaction store. Every
// read and mutation is scoped to the owning user; a row that exists but
// belongs to someone else is indistinguishable from a missing row.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FjeldMats/FinanceLog/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable, for readiness checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Create inserts a new transaction and returns it with its assigned id.
func (r *Repository) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, transaction_date, category, subcategory, description, amount)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Date.Format(dateLayout), t.Category, t.Subcategory, t.Description, t.Amount.String(),
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"user_id", t.UserID,
		"category", t.Category,
		"date", t.Date.Format(dateLayout))

	return t, nil
}

// Get returns the transaction by id, scoped to the owner.
func (r *Repository) Get(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, transaction_date, category, subcategory, description, amount
		FROM transactions WHERE id = ? AND user_id = ?`, id, userID)

	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// Update applies a partial patch to an owned transaction. The owner reference
// itself is never writable. Missing or foreign rows surface core.ErrNotFound.
func (r *Repository) Update(ctx context.Context, userID, id int64, patch core.TransactionPatch) (core.Transaction, error) {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 8)
	if patch.Date != nil {
		sets = append(sets, "transaction_date = ?")
		args = append(args, patch.Date.Format(dateLayout))
	}
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *patch.Category)
	}
	if patch.Subcategory != nil {
		sets = append(sets, "subcategory = ?")
		args = append(args, *patch.Subcategory)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, patch.Amount.String())
	}
	if len(sets) == 0 {
		return r.Get(ctx, userID, id)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id, userID)

	query := "UPDATE transactions SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.Transaction{}, core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction updated", "id", id, "user_id", userID)
	return r.Get(ctx, userID, id)
}

// Delete removes an owned transaction. Missing or foreign rows surface
// core.ErrNotFound.
func (r *Repository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "user_id", userID)
	return nil
}

// List returns the user's transactions, optionally narrowed to a calendar
// year and month (0 means no filter), ordered by date then id.
func (r *Repository) List(ctx context.Context, userID int64, year, month int) ([]core.Transaction, error) {
	query := `
		SELECT id, user_id, transaction_date, category, subcategory, description, amount
		FROM transactions WHERE user_id = ?`
	args := []any{userID}
	if year != 0 && month != 0 {
		query += " AND substr(transaction_date, 1, 7) = ?"
		args = append(args, fmt.Sprintf("%04d-%02d", year, month))
	} else if year != 0 {
		query += " AND substr(transaction_date, 1, 4) = ?"
		args = append(args, fmt.Sprintf("%04d", year))
	}
	query += " ORDER BY transaction_date, id"

	return r.queryTransactions(ctx, query, args...)
}

// ListByUserAndCategory returns the user's transactions for one category,
// ordered by date. This is the projections feed.
func (r *Repository) ListByUserAndCategory(ctx context.Context, userID int64, category string) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT id, user_id, transaction_date, category, subcategory, description, amount
		FROM transactions WHERE user_id = ? AND category = ?
		ORDER BY transaction_date, id`, userID, category)
}

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		date    string
		amount  string
	)
	if err := row.Scan(&t.ID, &t.UserID, &date, &t.Category, &t.Subcategory, &t.Description, &amount); err != nil {
		return core.Transaction{}, err
	}

	parsed, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	t.Date = parsed

	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	return t, nil
}

// AuditEvent is one recorded transaction mutation, written by the audit
// worker from consumed queue messages.
type AuditEvent struct {
	EventID       string
	Kind          string
	TransactionID int64
	UserID        int64
	OccurredAt    time.Time
}

// InsertAuditEvent records a consumed event. Replayed deliveries are ignored
// via the event id primary key, so the worker stays idempotent.
func (r *Repository) InsertAuditEvent(ctx context.Context, ev AuditEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO audit_log (event_id, kind, transaction_id, user_id, occurred_at)
		VALUES (?, ?, ?, ?, ?)`,
		ev.EventID, ev.Kind, ev.TransactionID, ev.UserID, ev.OccurredAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// CountAuditEvents returns the number of recorded audit rows.
func (r *Repository) CountAuditEvents(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count audit events: %w", err)
	}
	return n, nil
}
