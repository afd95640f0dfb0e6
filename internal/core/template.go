package core

// DefaultBudget returns the template used for newly created budgets and as
// the fallback source of category types during normalization.
func DefaultBudget() *Budget {
	return &Budget{
		Name:           "Default Budget",
		Types:          []string{"Needs", "Wants", "Savings"},
		PaymentMethods: []string{"Cash", "Credit Card", "Bank Transfer"},
		Subcategories: map[string][]string{
			"Coffee":   {"diningOut", "groceries"},
			"Internet": {"utilities"},
		},
		Categories: []Category{
			{ID: "groceries", Name: "Groceries", Allocated: 6000, Type: "Needs", Color: "#EF4444", Icon: "cart"},
			{ID: "utilities", Name: "Utilities", Allocated: 1500, Type: "Needs", Color: "#F97316", Icon: "bolt"},
			{ID: "savings", Name: "Savings", Allocated: 4000, Type: "Savings", Color: "#A855F7", Icon: "plus-circle"},
		},
		Transactions:       []Expense{},
		IncomeTransactions: []Income{},
	}
}

// DefaultCategoryKeywords maps category ids to the spoken keywords the voice
// parser matches against. External configuration may replace it wholesale.
func DefaultCategoryKeywords() map[string][]string {
	return map[string][]string{
		"groceries": {"groceries", "grocery"},
		"utilities": {"utilities", "bills"},
		"savings":   {"savings"},
	}
}
