package core

import (
	"errors"
	"testing"
)

func TestExpenseValidate(t *testing.T) {
	tests := []struct {
		name    string
		expense Expense
		wantErr error
	}{
		{
			name:    "valid",
			expense: Expense{Amount: 12.5, Date: "2026-01-05", CategoryID: "groceries"},
			wantErr: nil,
		},
		{
			name:    "zero amount",
			expense: Expense{Amount: 0, Date: "2026-01-05"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			expense: Expense{Amount: -3, Date: "2026-01-05"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "blank date",
			expense: Expense{Amount: 5, Date: "  "},
			wantErr: ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.expense.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIncomeValidate(t *testing.T) {
	tests := []struct {
		name    string
		income  Income
		wantErr error
	}{
		{
			name:    "valid",
			income:  Income{Amount: 1000, Description: "Salary", Date: "2026-01-01"},
			wantErr: nil,
		},
		{
			name:    "zero amount",
			income:  Income{Amount: 0, Description: "Salary", Date: "2026-01-01"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "empty description",
			income:  Income{Amount: 100, Description: " ", Date: "2026-01-01"},
			wantErr: ErrEmptyDescription,
		},
		{
			name:    "empty date",
			income:  Income{Amount: 100, Description: "Salary"},
			wantErr: ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.income.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{ID: "c1", Name: "Food", Allocated: 100}).Validate(); err != nil {
		t.Fatalf("valid category rejected: %v", err)
	}
	if err := (Category{ID: "c1", Name: ""}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Errorf("empty name: got %v, want %v", err, ErrEmptyName)
	}
	if err := (Category{ID: "c1", Name: "Food", Allocated: -1}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative allocation: got %v, want %v", err, ErrInvalidAmount)
	}
}

func TestBudgetLookups(t *testing.T) {
	b := DefaultBudget()

	if c := b.Category("groceries"); c == nil || c.Name != "Groceries" {
		t.Fatalf("Category(groceries) = %+v", c)
	}
	if c := b.Category("nope"); c != nil {
		t.Errorf("Category(nope) = %+v, want nil", c)
	}
	if !b.HasType("Needs") || b.HasType("Luxuries") {
		t.Errorf("HasType gave wrong answers: Needs=%v Luxuries=%v", b.HasType("Needs"), b.HasType("Luxuries"))
	}
	if !b.HasPaymentMethod("Cash") || b.HasPaymentMethod("Barter") {
		t.Errorf("HasPaymentMethod gave wrong answers")
	}
}

func TestBudgetCloneIsDeep(t *testing.T) {
	b := DefaultBudget()
	b.Transactions = []Expense{{ID: "t1", Amount: 5, CategoryID: "groceries", Date: "2026-01-01"}}

	c := b.Clone()
	c.Categories[0].Spent = 999
	c.Transactions[0].Amount = 42
	c.Types[0] = "Changed"
	c.Subcategories["Coffee"][0] = "changed"

	if b.Categories[0].Spent == 999 {
		t.Errorf("clone shares categories slice")
	}
	if b.Transactions[0].Amount == 42 {
		t.Errorf("clone shares transactions slice")
	}
	if b.Types[0] == "Changed" {
		t.Errorf("clone shares types slice")
	}
	if b.Subcategories["Coffee"][0] == "changed" {
		t.Errorf("clone shares subcategory map values")
	}
}

func TestBudgetNormalize(t *testing.T) {
	b := &Budget{}
	b.Normalize()

	if len(b.Types) == 0 {
		t.Errorf("expected default types for an empty budget")
	}
	if b.PaymentMethods == nil || b.Subcategories == nil || b.Categories == nil ||
		b.Transactions == nil || b.IncomeTransactions == nil {
		t.Errorf("Normalize left nil collections: %+v", b)
	}

	// Existing types must not be replaced.
	b2 := &Budget{Types: []string{"Custom"}}
	b2.Normalize()
	if len(b2.Types) != 1 || b2.Types[0] != "Custom" {
		t.Errorf("Normalize replaced custom types: %v", b2.Types)
	}
}
