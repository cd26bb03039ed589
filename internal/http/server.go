// Package http exposes the JSON API: owner-scoped transaction CRUD and the
// category spending projections endpoint.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/FjeldMats/FinanceLog/internal/auth"
	"github.com/FjeldMats/FinanceLog/internal/core"
)

// TransactionAPI is the transaction use-case surface the handlers call.
type TransactionAPI interface {
	Create(ctx context.Context, userID int64, t core.Transaction) (core.Transaction, error)
	Update(ctx context.Context, userID, id int64, patch core.TransactionPatch) (core.Transaction, error)
	Delete(ctx context.Context, userID, id int64) error
	List(ctx context.Context, userID int64, year, month int) ([]core.Transaction, error)
}

// ProjectionAPI computes spending projections for one (user, category) pair.
type ProjectionAPI interface {
	Projections(ctx context.Context, userID int64, category string) (*core.ProjectionResult, error)
}

// Pinger reports storage reachability for readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	transactions TransactionAPI
	projections  ProjectionAPI
	verifier     auth.Verifier
	pinger       Pinger
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, transactions TransactionAPI, projections ProjectionAPI, verifier auth.Verifier, pinger Pinger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		transactions: transactions,
		projections:  projections,
		verifier:     verifier,
		pinger:       pinger,
		rateLimiter:  newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("OPTIONS /api/", s.wrap(handlePreflight))
	mux.HandleFunc("GET /api/transactions", s.wrap(s.withAuth(s.handleListTransactions)))
	mux.HandleFunc("POST /api/transaction", s.wrap(s.withAuth(s.handleCreateTransaction)))
	mux.HandleFunc("PUT /api/transaction/{id}", s.wrap(s.withAuth(s.handleUpdateTransaction)))
	mux.HandleFunc("DELETE /api/transaction/{id}", s.wrap(s.withAuth(s.handleDeleteTransaction)))
	mux.HandleFunc("GET /api/projections/{category}", s.wrap(s.withAuth(s.handleProjections)))

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("database unreachable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
