// Package store holds the single in-memory mirror of the active budget plus
// session metadata. One Store instance exists per session and is passed by
// reference to whichever components need it.
package store

import (
	"errors"
	"sync"

	"homebudget/internal/core"
)

var ErrNoBudget = errors.New("no budget loaded")

// Store is the one shared mutable resource of a session. The snapshot
// listener goroutine, the mutation API and the archive manager all write to
// it; the mutex makes each logical operation a single atomic step, which is
// what stands in for the original's single-threaded event loop.
type Store struct {
	mu sync.Mutex

	currentBudget  *core.Budget
	userID         string
	activeBudgetID string
	budgetIndex    core.BudgetIndex

	// Edit cursors for in-progress forms.
	editingCategoryID string
	editingExpenseID  string
	editingIncomeID   string

	// Id of the most recently added entity, cleared on persist. The
	// renderer uses it to highlight the new row once.
	lastMutationMarker string

	listener func()
}

func New() *Store {
	return &Store{budgetIndex: core.BudgetIndex{}}
}

// Subscribe registers the downstream listener, replacing any previous one.
// The system has exactly one renderer, so this is a single-slot observer
// rather than a bus.
func (s *Store) Subscribe(listener func()) {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
}

func (s *Store) publish() {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l != nil {
		l()
	}
}

// SetCurrentBudget replaces the in-memory budget wholesale and publishes.
// Only the sync engine calls this, on every remote snapshot.
func (s *Store) SetCurrentBudget(b *core.Budget) {
	s.mu.Lock()
	s.currentBudget = b
	s.mu.Unlock()
	s.publish()
}

// WithBudget runs fn against the live budget under the store lock. Mutation
// helpers use it so a multi-step edit is never observed half-applied by the
// snapshot listener. fn must not block.
func (s *Store) WithBudget(fn func(*core.Budget) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentBudget == nil {
		return ErrNoBudget
	}
	return fn(s.currentBudget)
}

// Snapshot returns a deep copy of the live budget for readers, or nil when
// none is loaded.
func (s *Store) Snapshot() *core.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentBudget == nil {
		return nil
	}
	return s.currentBudget.Clone()
}

func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Store) SetUserID(id string) {
	s.mu.Lock()
	s.userID = id
	s.mu.Unlock()
}

func (s *Store) ActiveBudgetID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeBudgetID
}

// SetActiveBudgetID records which document is live. Metadata mutators do not
// publish; the caller triggers a re-render explicitly when it wants one.
func (s *Store) SetActiveBudgetID(id string) {
	s.mu.Lock()
	s.activeBudgetID = id
	s.mu.Unlock()
}

func (s *Store) BudgetIndex() core.BudgetIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(core.BudgetIndex, len(s.budgetIndex))
	for k, v := range s.budgetIndex {
		out[k] = v
	}
	return out
}

func (s *Store) SetBudgetIndex(idx core.BudgetIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgetIndex = make(core.BudgetIndex, len(idx))
	for k, v := range idx {
		s.budgetIndex[k] = v
	}
}

func (s *Store) UpdateBudgetIndexEntry(id, name string) {
	s.mu.Lock()
	s.budgetIndex[id] = name
	s.mu.Unlock()
}

func (s *Store) RemoveBudgetIndexEntry(id string) {
	s.mu.Lock()
	delete(s.budgetIndex, id)
	s.mu.Unlock()
}

func (s *Store) SetEditingCategoryID(id string) { s.mu.Lock(); s.editingCategoryID = id; s.mu.Unlock() }
func (s *Store) SetEditingExpenseID(id string)  { s.mu.Lock(); s.editingExpenseID = id; s.mu.Unlock() }
func (s *Store) SetEditingIncomeID(id string)   { s.mu.Lock(); s.editingIncomeID = id; s.mu.Unlock() }

func (s *Store) EditingCategoryID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingCategoryID
}

func (s *Store) EditingExpenseID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingExpenseID
}

func (s *Store) EditingIncomeID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingIncomeID
}

func (s *Store) SetLastMutationMarker(id string) {
	s.mu.Lock()
	s.lastMutationMarker = id
	s.mu.Unlock()
}

func (s *Store) LastMutationMarker() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMutationMarker
}
