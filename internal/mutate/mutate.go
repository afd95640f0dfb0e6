// Package mutate is the validated entry point for every local edit: UI form
// handlers and the voice worker both come through here. Each operation
// mutates the live budget in place as one atomic step, recomputes derived
// totals when transactions or categories changed, then persists.
package mutate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"homebudget/internal/aggregate"
	"homebudget/internal/core"
	applog "homebudget/internal/log"
	"homebudget/internal/store"
)

// Persister is the write path back to the document store. A persist failure
// is reported to the caller for a user-visible retry prompt; the optimistic
// in-memory mutation stays applied and remains internally consistent.
type Persister interface {
	Persist(ctx context.Context) error
}

type Service struct {
	store     *store.Store
	persister Persister
	logger    *applog.Logger

	now func() time.Time
}

func NewService(st *store.Store, persister Persister, logger *applog.Logger) *Service {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Service{
		store:     st,
		persister: persister,
		logger:    logger.WithComponent(applog.ComponentMutation),
		now:       time.Now,
	}
}

type ExpenseInput struct {
	Amount        float64 `json:"amount"`
	CategoryID    string  `json:"categoryId"`
	Subcategory   string  `json:"subcategory"`
	PaymentMethod string  `json:"paymentMethod"`
	Description   string  `json:"description"`
	Date          string  `json:"date"`
}

type IncomeInput struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

type CategoryInput struct {
	Name      string  `json:"name"`
	Allocated float64 `json:"allocated"`
	Type      string  `json:"type"`
	Color     string  `json:"color"`
	Icon      string  `json:"icon"`
}

func (s *Service) AddExpense(ctx context.Context, in ExpenseInput) (core.Expense, error) {
	exp := core.Expense{
		ID:            s.newID("trans"),
		Amount:        in.Amount,
		CategoryID:    in.CategoryID,
		Subcategory:   in.Subcategory,
		PaymentMethod: in.PaymentMethod,
		Description:   in.Description,
		Date:          in.Date,
	}
	if exp.Date == "" {
		exp.Date = s.now().Format("2006-01-02")
	}
	err := s.store.WithBudget(func(b *core.Budget) error {
		if err := exp.Validate(); err != nil {
			return err
		}
		if err := checkExpenseMembership(b, exp); err != nil {
			return err
		}
		b.Transactions = append(b.Transactions, exp)
		aggregate.Recalculate(b)
		return nil
	})
	if err != nil {
		return core.Expense{}, err
	}
	s.store.SetLastMutationMarker(exp.ID)
	s.logger.Info("Added expense",
		applog.FieldExpenseID, exp.ID,
		applog.FieldCategoryID, exp.CategoryID,
		applog.FieldAmount, exp.Amount)
	return exp, s.persister.Persist(ctx)
}

func (s *Service) EditExpense(ctx context.Context, id string, in ExpenseInput) (core.Expense, error) {
	var out core.Expense
	err := s.store.WithBudget(func(b *core.Budget) error {
		idx := expenseIndex(b, id)
		if idx < 0 {
			return fmt.Errorf("expense %s not found", id)
		}
		exp := b.Transactions[idx]
		exp.Amount = in.Amount
		exp.CategoryID = in.CategoryID
		exp.Subcategory = in.Subcategory
		exp.PaymentMethod = in.PaymentMethod
		exp.Description = in.Description
		if in.Date != "" {
			exp.Date = in.Date
		}
		if err := exp.Validate(); err != nil {
			return err
		}
		if err := checkExpenseMembership(b, exp); err != nil {
			return err
		}
		b.Transactions[idx] = exp
		out = exp
		aggregate.Recalculate(b)
		return nil
	})
	if err != nil {
		return core.Expense{}, err
	}
	return out, s.persister.Persist(ctx)
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	err := s.store.WithBudget(func(b *core.Budget) error {
		idx := expenseIndex(b, id)
		if idx < 0 {
			return nil // already gone, nothing to persist differently
		}
		b.Transactions = append(b.Transactions[:idx], b.Transactions[idx+1:]...)
		aggregate.Recalculate(b)
		return nil
	})
	if err != nil {
		return err
	}
	return s.persister.Persist(ctx)
}

func (s *Service) AddIncome(ctx context.Context, in IncomeInput) (core.Income, error) {
	inc := core.Income{
		ID:          s.newID("income"),
		Amount:      in.Amount,
		Description: in.Description,
		Date:        in.Date,
	}
	if inc.Date == "" {
		inc.Date = s.now().Format("2006-01-02")
	}
	err := s.store.WithBudget(func(b *core.Budget) error {
		if err := inc.Validate(); err != nil {
			return err
		}
		b.IncomeTransactions = append(b.IncomeTransactions, inc)
		return nil
	})
	if err != nil {
		return core.Income{}, err
	}
	s.store.SetLastMutationMarker(inc.ID)
	s.logger.Info("Added income", applog.FieldIncomeID, inc.ID, applog.FieldAmount, inc.Amount)
	return inc, s.persister.Persist(ctx)
}

func (s *Service) EditIncome(ctx context.Context, id string, in IncomeInput) (core.Income, error) {
	var out core.Income
	err := s.store.WithBudget(func(b *core.Budget) error {
		for i := range b.IncomeTransactions {
			if b.IncomeTransactions[i].ID != id {
				continue
			}
			inc := b.IncomeTransactions[i]
			inc.Amount = in.Amount
			inc.Description = in.Description
			if in.Date != "" {
				inc.Date = in.Date
			}
			if err := inc.Validate(); err != nil {
				return err
			}
			b.IncomeTransactions[i] = inc
			out = inc
			return nil
		}
		return fmt.Errorf("income %s not found", id)
	})
	if err != nil {
		return core.Income{}, err
	}
	return out, s.persister.Persist(ctx)
}

func (s *Service) DeleteIncome(ctx context.Context, id string) error {
	err := s.store.WithBudget(func(b *core.Budget) error {
		for i := range b.IncomeTransactions {
			if b.IncomeTransactions[i].ID == id {
				b.IncomeTransactions = append(b.IncomeTransactions[:i], b.IncomeTransactions[i+1:]...)
				break
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.persister.Persist(ctx)
}

func (s *Service) AddCategory(ctx context.Context, in CategoryInput) (core.Category, error) {
	cat := core.Category{
		ID:        s.newID("cat"),
		Name:      strings.TrimSpace(in.Name),
		Allocated: in.Allocated,
		Type:      in.Type,
		Color:     in.Color,
		Icon:      in.Icon,
	}
	err := s.store.WithBudget(func(b *core.Budget) error {
		if err := cat.Validate(); err != nil {
			return err
		}
		if !b.HasType(cat.Type) {
			return fmt.Errorf("%w: %s", core.ErrUnknownType, cat.Type)
		}
		if b.Category(cat.ID) != nil {
			return fmt.Errorf("%w: %s", core.ErrDuplicateCategory, cat.ID)
		}
		b.Categories = append(b.Categories, cat)
		aggregate.Recalculate(b)
		return nil
	})
	if err != nil {
		return core.Category{}, err
	}
	s.store.SetLastMutationMarker(cat.ID)
	s.logger.Info("Added category", applog.FieldCategoryID, cat.ID)
	return cat, s.persister.Persist(ctx)
}

func (s *Service) EditCategory(ctx context.Context, id string, in CategoryInput) (core.Category, error) {
	var out core.Category
	err := s.store.WithBudget(func(b *core.Budget) error {
		c := b.Category(id)
		if c == nil {
			return fmt.Errorf("%w: %s", core.ErrUnknownCategory, id)
		}
		if !b.HasType(in.Type) {
			return fmt.Errorf("%w: %s", core.ErrUnknownType, in.Type)
		}
		updated := *c
		updated.Name = strings.TrimSpace(in.Name)
		updated.Allocated = in.Allocated
		updated.Type = in.Type
		updated.Color = in.Color
		updated.Icon = in.Icon
		if err := updated.Validate(); err != nil {
			return err
		}
		*c = updated
		out = updated
		return nil
	})
	if err != nil {
		return core.Category{}, err
	}
	return out, s.persister.Persist(ctx)
}

// DeleteCategory removes a category and cascades removal of every expense
// referencing it, so no dangling CategoryID is left behind by this path.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	err := s.store.WithBudget(func(b *core.Budget) error {
		if b.Category(id) == nil {
			return fmt.Errorf("%w: %s", core.ErrUnknownCategory, id)
		}
		kept := b.Categories[:0]
		for _, c := range b.Categories {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		b.Categories = kept

		keptTx := b.Transactions[:0]
		for _, t := range b.Transactions {
			if t.CategoryID != id {
				keptTx = append(keptTx, t)
			}
		}
		b.Transactions = keptTx

		for name, ids := range b.Subcategories {
			keptIDs := ids[:0]
			for _, cid := range ids {
				if cid != id {
					keptIDs = append(keptIDs, cid)
				}
			}
			if len(keptIDs) == 0 {
				delete(b.Subcategories, name)
			} else {
				b.Subcategories[name] = keptIDs
			}
		}

		aggregate.Recalculate(b)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("Deleted category", applog.FieldCategoryID, id)
	return s.persister.Persist(ctx)
}

func (s *Service) AddType(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	err := s.store.WithBudget(func(b *core.Budget) error {
		if name == "" {
			return core.ErrEmptyName
		}
		if b.HasType(name) {
			return nil
		}
		b.Types = append(b.Types, name)
		return nil
	})
	if err != nil {
		return err
	}
	return s.persister.Persist(ctx)
}

// DeleteType removes a category type together with its categories and all
// of their transactions.
func (s *Service) DeleteType(ctx context.Context, name string) error {
	err := s.store.WithBudget(func(b *core.Budget) error {
		if !b.HasType(name) {
			return fmt.Errorf("%w: %s", core.ErrUnknownType, name)
		}
		doomed := map[string]bool{}
		keptCats := b.Categories[:0]
		for _, c := range b.Categories {
			if c.Type == name {
				doomed[c.ID] = true
			} else {
				keptCats = append(keptCats, c)
			}
		}
		b.Categories = keptCats

		keptTx := b.Transactions[:0]
		for _, t := range b.Transactions {
			if !doomed[t.CategoryID] {
				keptTx = append(keptTx, t)
			}
		}
		b.Transactions = keptTx

		keptTypes := b.Types[:0]
		for _, t := range b.Types {
			if t != name {
				keptTypes = append(keptTypes, t)
			}
		}
		b.Types = keptTypes

		aggregate.Recalculate(b)
		return nil
	})
	if err != nil {
		return err
	}
	return s.persister.Persist(ctx)
}

func (s *Service) AddPaymentMethod(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	err := s.store.WithBudget(func(b *core.Budget) error {
		if name == "" {
			return core.ErrEmptyName
		}
		if b.HasPaymentMethod(name) {
			return nil
		}
		b.PaymentMethods = append(b.PaymentMethods, name)
		return nil
	})
	if err != nil {
		return err
	}
	return s.persister.Persist(ctx)
}

// RemovePaymentMethod drops a payment method from the budget's list.
// Existing transactions keep whatever method they were recorded with.
func (s *Service) RemovePaymentMethod(ctx context.Context, name string) error {
	err := s.store.WithBudget(func(b *core.Budget) error {
		kept := b.PaymentMethods[:0]
		for _, pm := range b.PaymentMethods {
			if pm != name {
				kept = append(kept, pm)
			}
		}
		b.PaymentMethods = kept
		return nil
	})
	if err != nil {
		return err
	}
	return s.persister.Persist(ctx)
}

// SetSubcategory creates or replaces a named subcategory and the set of
// categories it applies to.
func (s *Service) SetSubcategory(ctx context.Context, name string, categoryIDs []string) error {
	name = strings.TrimSpace(name)
	err := s.store.WithBudget(func(b *core.Budget) error {
		if name == "" {
			return core.ErrEmptyName
		}
		for _, id := range categoryIDs {
			if b.Category(id) == nil {
				return fmt.Errorf("%w: %s", core.ErrUnknownCategory, id)
			}
		}
		b.Subcategories[name] = append([]string(nil), categoryIDs...)
		return nil
	})
	if err != nil {
		return err
	}
	return s.persister.Persist(ctx)
}

func (s *Service) RemoveSubcategory(ctx context.Context, name string) error {
	err := s.store.WithBudget(func(b *core.Budget) error {
		delete(b.Subcategories, name)
		return nil
	})
	if err != nil {
		return err
	}
	return s.persister.Persist(ctx)
}

func (s *Service) newID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, s.now().UnixNano()/int64(time.Millisecond))
}

func checkExpenseMembership(b *core.Budget, exp core.Expense) error {
	if b.Category(exp.CategoryID) == nil {
		return fmt.Errorf("%w: %s", core.ErrUnknownCategory, exp.CategoryID)
	}
	if !b.HasPaymentMethod(exp.PaymentMethod) {
		return fmt.Errorf("%w: %s", core.ErrUnknownPaymentMethod, exp.PaymentMethod)
	}
	return nil
}

func expenseIndex(b *core.Budget, id string) int {
	for i := range b.Transactions {
		if b.Transactions[i].ID == id {
			return i
		}
	}
	return -1
}
