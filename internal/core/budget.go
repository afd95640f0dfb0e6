package core

import (
	"errors"
	"strings"
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrEmptyDescription     = errors.New("empty description")
	ErrEmptyName            = errors.New("empty name")
	ErrInvalidDate          = errors.New("invalid date")
	ErrUnknownCategory      = errors.New("unknown category")
	ErrUnknownType          = errors.New("unknown category type")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrDuplicateCategory    = errors.New("duplicate category id")
)

type (
	// Budget is the full per-user ledger for one named plan. Exactly one
	// Budget instance is live in memory per session; persisted copies are
	// owned by the document store.
	Budget struct {
		ID                 string              `json:"id,omitempty"`
		Name               string              `json:"name"`
		Types              []string            `json:"types"`
		PaymentMethods     []string            `json:"paymentMethods"`
		Subcategories      map[string][]string `json:"subcategories"`
		Categories         []Category          `json:"categories"`
		Transactions       []Expense           `json:"transactions"`
		IncomeTransactions []Income            `json:"incomeTransactions"`
	}

	// Category is a spending bucket. Spent is derived by the aggregator and
	// never hand-edited.
	Category struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		Allocated float64 `json:"allocated"`
		Spent     float64 `json:"spent"`
		Type      string  `json:"type"`
		Color     string  `json:"color"`
		Icon      string  `json:"icon"`
	}

	Expense struct {
		ID            string  `json:"id"`
		Amount        float64 `json:"amount"`
		CategoryID    string  `json:"categoryId"`
		Subcategory   string  `json:"subcategory,omitempty"`
		PaymentMethod string  `json:"paymentMethod"`
		Description   string  `json:"description"`
		Date          string  `json:"date"`
	}

	Income struct {
		ID          string  `json:"id"`
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
		Date        string  `json:"date"`
	}

	// ArchiveRecord is an immutable snapshot of a Budget taken when the user
	// closed a month. Keyed by period id (YYYY-MM) under the budget it came
	// from; never mutated after creation.
	ArchiveRecord struct {
		PeriodID   string `json:"periodId"`
		ArchivedAt string `json:"archivedAt"`
		Budget     Budget `json:"budget"`
	}

	// BudgetIndex maps budget ids to display names for a user, independent
	// of which budget is loaded.
	BudgetIndex map[string]string

	// ActivePreference is the per-user pointer at the budget to load on
	// startup, persisted separately from the budgets themselves.
	ActivePreference struct {
		ActiveBudgetID string `json:"activeBudgetId"`
	}
)

func (e Expense) Validate() error {
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Date) == "" {
		return ErrInvalidDate
	}
	return nil
}

func (i Income) Validate() error {
	if i.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(i.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(i.Date) == "" {
		return ErrInvalidDate
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Allocated < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Category returns the category with the given id, or nil.
func (b *Budget) Category(id string) *Category {
	for i := range b.Categories {
		if b.Categories[i].ID == id {
			return &b.Categories[i]
		}
	}
	return nil
}

// HasType reports whether t is one of the budget's category types.
func (b *Budget) HasType(t string) bool {
	for _, v := range b.Types {
		if v == t {
			return true
		}
	}
	return false
}

// HasPaymentMethod reports whether pm is one of the budget's payment methods.
func (b *Budget) HasPaymentMethod(pm string) bool {
	for _, v := range b.PaymentMethods {
		if v == pm {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the budget. Archive snapshots depend on the
// copy sharing no slices or maps with the live budget.
func (b *Budget) Clone() *Budget {
	c := &Budget{
		ID:                 b.ID,
		Name:               b.Name,
		Types:              append([]string(nil), b.Types...),
		PaymentMethods:     append([]string(nil), b.PaymentMethods...),
		Subcategories:      make(map[string][]string, len(b.Subcategories)),
		Categories:         append([]Category(nil), b.Categories...),
		Transactions:       append([]Expense(nil), b.Transactions...),
		IncomeTransactions: append([]Income(nil), b.IncomeTransactions...),
	}
	for k, v := range b.Subcategories {
		c.Subcategories[k] = append([]string(nil), v...)
	}
	return c
}

// Normalize defaults absent collections to empty so consumers never see nil,
// and falls back to the template types when a persisted budget carries none.
// Applied once at the document boundary, not scattered through consumers.
func (b *Budget) Normalize() {
	if len(b.Types) == 0 {
		b.Types = append([]string(nil), DefaultBudget().Types...)
	}
	if b.PaymentMethods == nil {
		b.PaymentMethods = []string{}
	}
	if b.Subcategories == nil {
		b.Subcategories = map[string][]string{}
	}
	if b.Categories == nil {
		b.Categories = []Category{}
	}
	if b.Transactions == nil {
		b.Transactions = []Expense{}
	}
	if b.IncomeTransactions == nil {
		b.IncomeTransactions = []Income{}
	}
}
