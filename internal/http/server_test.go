package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"homebudget/internal/archive"
	"homebudget/internal/docstore"
	"homebudget/internal/docstore/memory"
	"homebudget/internal/mutate"
	"homebudget/internal/store"
	"homebudget/internal/syncengine"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	docs := memory.New()
	st := store.New()
	paths := docstore.Paths{AppID: "test-app", UserID: "u1"}
	engine := syncengine.New(docs, st, paths, nil)
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("engine start: %v", err)
	}
	t.Cleanup(engine.Dispose)

	am := archive.NewManager(docs, st, engine, paths, nil)
	mut := mutate.NewService(st, engine, nil)
	return NewServer(":0", st, engine, am, mut, nil), st
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func TestStateEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		SessionState string `json:"sessionState"`
		Budget       struct {
			Name string `json:"name"`
		} `json:"budget"`
		TotalAllocated float64 `json:"totalAllocated"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionState != "subscribed" {
		t.Errorf("sessionState = %q", resp.SessionState)
	}
	if resp.Budget.Name != "My First Budget" {
		t.Errorf("budget name = %q", resp.Budget.Name)
	}
	if resp.TotalAllocated != 11500 {
		t.Errorf("totalAllocated = %v, want template sum 11500", resp.TotalAllocated)
	}
}

func TestExpenseEndpoints(t *testing.T) {
	s, st := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/expenses",
		`{"amount": 42.5, "categoryId": "groceries", "paymentMethod": "Cash", "description": "food", "date": "2026-05-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var exp struct {
		ID string `json:"id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &exp)
	if exp.ID == "" {
		t.Fatalf("no expense id in response: %s", rec.Body.String())
	}
	if got := st.Snapshot().Category("groceries").Spent; got != 42.5 {
		t.Errorf("spent = %v", got)
	}

	rec = do(t, s, http.MethodPost, "/api/expenses",
		`{"amount": -1, "categoryId": "groceries", "paymentMethod": "Cash"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid amount status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/expenses", `{"amount": 5, "bogusField": 1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodDelete, "/api/expenses/"+exp.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if got := len(st.Snapshot().Transactions); got != 0 {
		t.Errorf("transactions after delete = %d", got)
	}
}

func TestArchiveEndpoints(t *testing.T) {
	s, st := newTestServer(t)

	do(t, s, http.MethodPost, "/api/expenses",
		`{"amount": 10, "categoryId": "groceries", "paymentMethod": "Cash", "date": "2026-05-01"}`)

	rec := do(t, s, http.MethodPost, "/api/archive", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("archive status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := len(st.Snapshot().Transactions); got != 0 {
		t.Errorf("live budget not reset: %d transactions", got)
	}

	rec = do(t, s, http.MethodPost, "/api/archive", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate archive status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/archives", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listResp struct {
		Archives []struct {
			PeriodID string `json:"periodId"`
		} `json:"archives"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listResp.Archives) != 1 {
		t.Errorf("archives = %+v", listResp.Archives)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	s, st := newTestServer(t)
	onlyID := st.ActiveBudgetID()

	rec := do(t, s, http.MethodDelete, "/api/budgets/"+onlyID, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("deleting the only budget status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/budgets", `{"name": "Holidays"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &created)

	rec = do(t, s, http.MethodPost, "/api/budgets/"+created.ID+"/activate", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("activate status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if st.ActiveBudgetID() != created.ID {
		t.Errorf("active budget = %q, want %q", st.ActiveBudgetID(), created.ID)
	}
	if b := st.Snapshot(); b == nil || b.Name != "Holidays" {
		t.Errorf("live budget = %+v", b)
	}

	rec = do(t, s, http.MethodPost, "/api/budgets/b-missing/activate", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("activate missing status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodDelete, "/api/budgets/"+onlyID, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/api/budgets", "")
	var budgets struct {
		Budgets map[string]string `json:"budgets"`
	}
	json.Unmarshal(rec.Body.Bytes(), &budgets)
	if len(budgets.Budgets) != 1 {
		t.Errorf("index = %v", budgets.Budgets)
	}
}

func TestTaxonomyEndpoints(t *testing.T) {
	s, st := newTestServer(t)

	if rec := do(t, s, http.MethodPost, "/api/types", `{"name": "Investments"}`); rec.Code != http.StatusNoContent {
		t.Fatalf("add type status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/payment-methods", `{"name": "Crypto"}`); rec.Code != http.StatusNoContent {
		t.Fatalf("add payment method status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, "/api/subcategories/Organic", `{"categoryIds": ["groceries"]}`); rec.Code != http.StatusNoContent {
		t.Fatalf("set subcategory status = %d", rec.Code)
	}

	b := st.Snapshot()
	if !b.HasType("Investments") || !b.HasPaymentMethod("Crypto") {
		t.Errorf("taxonomy not applied: %v %v", b.Types, b.PaymentMethods)
	}
	if len(b.Subcategories["Organic"]) != 1 {
		t.Errorf("subcategories = %v", b.Subcategories)
	}

	if rec := do(t, s, http.MethodPut, "/api/subcategories/Bad", `{"categoryIds": ["nope"]}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("dangling subcategory status = %d", rec.Code)
	}

	if rec := do(t, s, http.MethodDelete, "/api/types/Investments", ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete type status = %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
}
