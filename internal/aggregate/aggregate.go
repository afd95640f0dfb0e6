// Package aggregate recomputes derived totals from raw entry lists. Pure
// computation: no I/O, no state beyond the explicit mutation of Spent.
package aggregate

import "homebudget/internal/core"

// Recalculate rebuilds every category's Spent from the transaction list.
// Idempotent; expenses whose category no longer exists contribute to no
// category (see UnallocatedSpent). Nil or empty lists are fine.
func Recalculate(b *core.Budget) {
	if b == nil {
		return
	}
	for i := range b.Categories {
		b.Categories[i].Spent = 0
	}
	for _, t := range b.Transactions {
		if c := b.Category(t.CategoryID); c != nil {
			c.Spent += t.Amount
		}
	}
}

// TotalIncome sums the income entries. Empty list yields 0.
func TotalIncome(b *core.Budget) float64 {
	if b == nil {
		return 0
	}
	var sum float64
	for _, i := range b.IncomeTransactions {
		sum += i.Amount
	}
	return sum
}

// TotalSpent sums all expense amounts, including ones whose category has
// been deleted out from under them.
func TotalSpent(b *core.Budget) float64 {
	if b == nil {
		return 0
	}
	var sum float64
	for _, t := range b.Transactions {
		sum += t.Amount
	}
	return sum
}

// TotalAllocated sums the allocation limits across categories.
func TotalAllocated(b *core.Budget) float64 {
	if b == nil {
		return 0
	}
	var sum float64
	for _, c := range b.Categories {
		sum += c.Allocated
	}
	return sum
}

// UnallocatedSpent reports spend carried by expenses whose CategoryID no
// longer resolves. A category deleted outside the mutation API (for example
// a concurrent remote edit) leaves such orphans; surfacing the amount keeps
// the spend visible instead of silently dropping it from every total.
func UnallocatedSpent(b *core.Budget) float64 {
	if b == nil {
		return 0
	}
	var sum float64
	for _, t := range b.Transactions {
		if b.Category(t.CategoryID) == nil {
			sum += t.Amount
		}
	}
	return sum
}
