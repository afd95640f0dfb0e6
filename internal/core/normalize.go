// Package core defines the budget domain model and the normalization layer
// between raw persisted documents and typed entities.
package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// BudgetFromDocument decodes a raw document-store payload into a Budget.
// Remote snapshots are duck-typed maps; missing arrays and maps are
// defaulted to empty here so nothing downstream has to nil-check.
func BudgetFromDocument(id string, data map[string]any) (*Budget, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode budget document: %w", err)
	}
	var b Budget
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode budget document: %w", err)
	}
	b.ID = id
	b.Normalize()
	return &b, nil
}

// Document encodes the budget back into the shape the document store
// persists. The document id is carried by the path, not the body.
func (b *Budget) Document() (map[string]any, error) {
	c := b.Clone()
	c.ID = ""
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode budget: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode budget: %w", err)
	}
	delete(doc, "id")
	return doc, nil
}

// ArchiveFromDocument decodes a persisted archive snapshot.
func ArchiveFromDocument(periodID string, data map[string]any) (*ArchiveRecord, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode archive document: %w", err)
	}
	var rec ArchiveRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode archive document: %w", err)
	}
	rec.PeriodID = periodID
	rec.Budget.Normalize()
	return &rec, nil
}

// Document encodes the archive record for persistence.
func (r *ArchiveRecord) Document() (map[string]any, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode archive record: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode archive record: %w", err)
	}
	delete(doc, "periodId")
	return doc, nil
}

// MigrateLegacyDocument transforms the old single-budget document shape into
// the multi-budget shape. The legacy scalar income field becomes a single
// synthesized income entry when no income transactions exist yet. The input
// map is not modified.
func MigrateLegacyDocument(data map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	out["name"] = "Default Budget"

	income, hasIncome := out["income"].(float64)
	_, hasIncomeTx := out["incomeTransactions"]
	if hasIncome && income > 0 && !hasIncomeTx {
		out["incomeTransactions"] = []any{map[string]any{
			"id":          fmt.Sprintf("income-migrated-%d", now.UnixMilli()),
			"amount":      income,
			"description": "Initial Budgeted Income",
			"date":        now.Format("2006-01-02"),
		}}
	}
	delete(out, "income")

	if _, ok := out["transactions"]; !ok {
		out["transactions"] = []any{}
	}
	return out
}
