package aggregate

import (
	"testing"

	"homebudget/internal/core"
)

func testBudget() *core.Budget {
	return &core.Budget{
		Types: []string{"Needs"},
		Categories: []core.Category{
			{ID: "groceries", Name: "Groceries", Allocated: 6000, Type: "Needs"},
			{ID: "utilities", Name: "Utilities", Allocated: 1500, Type: "Needs"},
		},
		Transactions: []core.Expense{
			{ID: "t1", Amount: 25000, CategoryID: "groceries", Date: "2026-01-02"},
			{ID: "t2", Amount: 2725, CategoryID: "groceries", Date: "2026-01-03"},
			{ID: "t3", Amount: 300, CategoryID: "utilities", Date: "2026-01-04"},
		},
		IncomeTransactions: []core.Income{
			{ID: "i1", Amount: 50000, Description: "Salary", Date: "2026-01-01"},
			{ID: "i2", Amount: 1200, Description: "Side gig", Date: "2026-01-15"},
		},
	}
}

func TestRecalculateSumsPerCategory(t *testing.T) {
	b := testBudget()
	Recalculate(b)

	if got := b.Category("groceries").Spent; got != 27725 {
		t.Errorf("groceries spent = %v, want 27725", got)
	}
	if got := b.Category("utilities").Spent; got != 300 {
		t.Errorf("utilities spent = %v, want 300", got)
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	b := testBudget()
	Recalculate(b)
	Recalculate(b)
	Recalculate(b)

	if got := b.Category("groceries").Spent; got != 27725 {
		t.Errorf("repeated recalculation drifted: groceries spent = %v", got)
	}
}

func TestRecalculateClearsStaleSpent(t *testing.T) {
	b := testBudget()
	b.Category("utilities").Spent = 99999
	b.Transactions = b.Transactions[:2] // drop the utilities expense
	Recalculate(b)

	if got := b.Category("utilities").Spent; got != 0 {
		t.Errorf("stale spent survived recalculation: %v", got)
	}
}

func TestDanglingCategoryReference(t *testing.T) {
	b := testBudget()
	b.Transactions = append(b.Transactions, core.Expense{
		ID: "t4", Amount: 500, CategoryID: "deleted-elsewhere", Date: "2026-01-05",
	})
	Recalculate(b)

	// The orphaned amount lands in no category but stays in the grand total.
	if got := b.Category("groceries").Spent + b.Category("utilities").Spent; got != 28025 {
		t.Errorf("category spent sum = %v, want 28025", got)
	}
	if got := TotalSpent(b); got != 28525 {
		t.Errorf("TotalSpent = %v, want 28525", got)
	}
	if got := UnallocatedSpent(b); got != 500 {
		t.Errorf("UnallocatedSpent = %v, want 500", got)
	}
}

func TestTotals(t *testing.T) {
	b := testBudget()

	if got := TotalIncome(b); got != 51200 {
		t.Errorf("TotalIncome = %v, want 51200", got)
	}
	if got := TotalSpent(b); got != 28025 {
		t.Errorf("TotalSpent = %v, want 28025", got)
	}
	if got := TotalAllocated(b); got != 7500 {
		t.Errorf("TotalAllocated = %v, want 7500", got)
	}
}

func TestNilAndEmptyBudgets(t *testing.T) {
	Recalculate(nil)
	if TotalIncome(nil) != 0 || TotalSpent(nil) != 0 || TotalAllocated(nil) != 0 || UnallocatedSpent(nil) != 0 {
		t.Errorf("nil budget must total zero")
	}

	empty := &core.Budget{}
	Recalculate(empty)
	if TotalIncome(empty) != 0 || TotalSpent(empty) != 0 {
		t.Errorf("empty budget must total zero")
	}
}
