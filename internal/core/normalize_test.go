package core

import (
	"testing"
	"time"
)

func TestBudgetFromDocumentDefaultsCollections(t *testing.T) {
	b, err := BudgetFromDocument("b1", map[string]any{"name": "Mine"})
	if err != nil {
		t.Fatalf("BudgetFromDocument: %v", err)
	}
	if b.ID != "b1" || b.Name != "Mine" {
		t.Fatalf("unexpected identity: id=%q name=%q", b.ID, b.Name)
	}
	if b.Categories == nil || b.Transactions == nil || b.IncomeTransactions == nil || b.Subcategories == nil {
		t.Errorf("collections not defaulted: %+v", b)
	}
	if len(b.Types) == 0 {
		t.Errorf("expected fallback types")
	}
}

func TestBudgetDocumentRoundTrip(t *testing.T) {
	b := DefaultBudget()
	b.ID = "b1"
	b.Transactions = []Expense{{ID: "t1", Amount: 9.5, CategoryID: "groceries", PaymentMethod: "Cash", Description: "milk", Date: "2026-02-03"}}

	doc, err := b.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if _, ok := doc["id"]; ok {
		t.Errorf("document body must not carry the id")
	}

	back, err := BudgetFromDocument("b1", doc)
	if err != nil {
		t.Fatalf("BudgetFromDocument: %v", err)
	}
	if back.Name != b.Name || len(back.Transactions) != 1 || back.Transactions[0].Amount != 9.5 {
		t.Errorf("round trip lost data: %+v", back)
	}
}

func TestMigrateLegacyDocument(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("scalar income becomes one entry", func(t *testing.T) {
		in := map[string]any{"income": 2500.0, "categories": []any{}}
		out := MigrateLegacyDocument(in, now)

		if _, ok := out["income"]; ok {
			t.Errorf("legacy income field should be removed")
		}
		if out["name"] != "Default Budget" {
			t.Errorf("name = %v", out["name"])
		}
		txs, ok := out["incomeTransactions"].([]any)
		if !ok || len(txs) != 1 {
			t.Fatalf("incomeTransactions = %v", out["incomeTransactions"])
		}
		entry := txs[0].(map[string]any)
		if entry["amount"] != 2500.0 || entry["description"] != "Initial Budgeted Income" {
			t.Errorf("unexpected synthesized entry: %v", entry)
		}
		if entry["date"] != "2026-03-10" {
			t.Errorf("date = %v", entry["date"])
		}
		if _, ok := out["transactions"]; !ok {
			t.Errorf("transactions key must exist after migration")
		}
	})

	t.Run("existing income transactions win", func(t *testing.T) {
		existing := []any{map[string]any{"id": "i1"}}
		in := map[string]any{"income": 2500.0, "incomeTransactions": existing}
		out := MigrateLegacyDocument(in, now)

		txs := out["incomeTransactions"].([]any)
		if len(txs) != 1 || txs[0].(map[string]any)["id"] != "i1" {
			t.Errorf("existing entries were replaced: %v", txs)
		}
	})

	t.Run("zero income synthesizes nothing", func(t *testing.T) {
		out := MigrateLegacyDocument(map[string]any{"income": 0.0}, now)
		if _, ok := out["incomeTransactions"]; ok {
			t.Errorf("no entry expected for zero income")
		}
	})

	t.Run("input map untouched", func(t *testing.T) {
		in := map[string]any{"income": 10.0}
		MigrateLegacyDocument(in, now)
		if _, ok := in["income"]; !ok {
			t.Errorf("input map was mutated")
		}
	})
}

func TestArchiveRecordDocumentRoundTrip(t *testing.T) {
	rec := &ArchiveRecord{
		PeriodID:   "2026-03",
		ArchivedAt: "2026-03-31T23:59:00Z",
		Budget:     *DefaultBudget(),
	}
	doc, err := rec.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if _, ok := doc["periodId"]; ok {
		t.Errorf("document body must not carry the period id")
	}

	back, err := ArchiveFromDocument("2026-03", doc)
	if err != nil {
		t.Fatalf("ArchiveFromDocument: %v", err)
	}
	if back.PeriodID != "2026-03" || back.ArchivedAt != rec.ArchivedAt || back.Budget.Name != rec.Budget.Name {
		t.Errorf("round trip lost data: %+v", back)
	}
}
