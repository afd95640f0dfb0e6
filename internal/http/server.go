// Package http exposes the session over a small JSON API: one state
// endpoint the client polls or re-fetches after actions, plus mutation and
// budget-management endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"homebudget/internal/archive"
	"homebudget/internal/core"
	applog "homebudget/internal/log"
	"homebudget/internal/mutate"
	"homebudget/internal/store"
	"homebudget/internal/syncengine"
)

type Server struct {
	http.Server

	store   *store.Store
	engine  *syncengine.Engine
	archive *archive.Manager
	mutator *mutate.Service
	logger  *applog.Logger
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, st *store.Store, engine *syncengine.Engine, am *archive.Manager, mut *mutate.Service, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		store:   st,
		engine:  engine,
		archive: am,
		mutator: mut,
		logger:  logger.WithComponent(applog.ComponentHTTP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /api/state", s.handleState)

	mux.HandleFunc("POST /api/expenses", s.handleAddExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleEditExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("POST /api/incomes", s.handleAddIncome)
	mux.HandleFunc("PUT /api/incomes/{id}", s.handleEditIncome)
	mux.HandleFunc("DELETE /api/incomes/{id}", s.handleDeleteIncome)

	mux.HandleFunc("POST /api/categories", s.handleAddCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleEditCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("POST /api/types", s.handleAddType)
	mux.HandleFunc("DELETE /api/types/{name}", s.handleDeleteType)
	mux.HandleFunc("POST /api/payment-methods", s.handleAddPaymentMethod)
	mux.HandleFunc("DELETE /api/payment-methods/{name}", s.handleRemovePaymentMethod)
	mux.HandleFunc("PUT /api/subcategories/{name}", s.handleSetSubcategory)
	mux.HandleFunc("DELETE /api/subcategories/{name}", s.handleRemoveSubcategory)

	mux.HandleFunc("POST /api/archive", s.handleArchive)
	mux.HandleFunc("GET /api/archives", s.handleListArchives)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("POST /api/budgets/{id}/activate", s.handleSwitchBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	s.Handler = mux
	return s
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down", applog.FieldOperation, applog.OpShutdown)
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", applog.FieldError, err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses: validation and state
// conflicts are client errors, document store failures are 502 so the client
// offers a retry.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var connErr *syncengine.ConnectionError
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrUnknownCategory),
		errors.Is(err, core.ErrUnknownType),
		errors.Is(err, core.ErrUnknownPaymentMethod),
		errors.Is(err, core.ErrDuplicateCategory):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNoBudget),
		errors.Is(err, archive.ErrDuplicatePeriod),
		errors.Is(err, syncengine.ErrOnlyBudget):
		status = http.StatusConflict
	case errors.Is(err, syncengine.ErrBudgetNotFound):
		status = http.StatusNotFound
	case errors.As(err, &connErr):
		status = http.StatusBadGateway
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
