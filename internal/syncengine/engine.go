// Package syncengine owns the lifecycle of the one live subscription that
// mirrors a remote budget document into the in-memory store, plus the
// one-time legacy migration and the write path back to the document store.
package syncengine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"homebudget/internal/core"
	"homebudget/internal/docstore"
	applog "homebudget/internal/log"
	"homebudget/internal/store"
)

type Engine struct {
	docs   docstore.Store
	store  *store.Store
	paths  docstore.Paths
	logger *applog.Logger

	mu    sync.Mutex
	state SessionState
	sub   docstore.Subscription

	// fatal is invoked for conditions that end the session: a vanished
	// budget document or a lost subscription. The renderer replaces the
	// working view with a blocking error state.
	fatal func(error)

	now func() time.Time
}

func New(docs docstore.Store, st *store.Store, paths docstore.Paths, logger *applog.Logger) *Engine {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Engine{
		docs:   docs,
		store:  st,
		paths:  paths,
		logger: logger.WithComponent(applog.ComponentSync),
		state:  StateUnauthenticated,
		fatal:  func(error) {},
		now:    time.Now,
	}
}

// OnFatal registers the handler for session-ending conditions. Must be set
// before Start; replaces any previous handler.
func (e *Engine) OnFatal(fn func(error)) {
	e.mu.Lock()
	e.fatal = fn
	e.mu.Unlock()
}

func (e *Engine) State() SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s SessionState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
	e.logger.Debug("Session state changed", applog.FieldState, s.String())
}

// Start brings the session up: migrate the legacy document shape if
// present, load the budget index, resolve which budget to mirror, and
// attach the live subscription. Any migration failure aborts startup.
func (e *Engine) Start(ctx context.Context) error {
	e.store.SetUserID(e.paths.UserID)

	e.setState(StateMigrating)
	if err := e.MigrateLegacyIfNeeded(ctx); err != nil {
		return err
	}

	e.setState(StateIndexLoading)
	budgetID, err := e.ResolveInitialBudget(ctx)
	if err != nil {
		return fmt.Errorf("resolve initial budget: %w", err)
	}
	e.store.SetActiveBudgetID(budgetID)

	if err := e.Subscribe(ctx, budgetID); err != nil {
		return err
	}
	e.logger.Info("Session started",
		applog.FieldUserID, e.paths.UserID,
		applog.FieldBudgetID, budgetID)
	return nil
}

// MigrateLegacyIfNeeded carries the pre-multi-budget document forward,
// exactly once: only when the legacy document exists and the budgets
// collection is still empty. After it runs the legacy document is gone and
// one migrated budget entry exists.
func (e *Engine) MigrateLegacyIfNeeded(ctx context.Context) error {
	legacy, err := e.docs.GetDocument(ctx, e.paths.LegacyBudget())
	if err == docstore.ErrNotFound {
		return nil
	}
	if err != nil {
		return &MigrationError{Err: fmt.Errorf("read legacy document: %w", err)}
	}

	existing, err := e.docs.ListCollection(ctx, e.paths.BudgetsCollection())
	if err != nil {
		return &MigrationError{Err: fmt.Errorf("list budgets: %w", err)}
	}
	if len(existing) > 0 {
		// Migration already happened; a dangling legacy document is left
		// alone rather than re-imported.
		return nil
	}

	e.logger.Info("Migrating legacy budget structure", applog.FieldOperation, applog.OpMigrate)
	migrated := core.MigrateLegacyDocument(legacy, e.now())

	newID, err := e.docs.AddDocument(ctx, e.paths.BudgetsCollection(), migrated)
	if err != nil {
		return &MigrationError{Err: fmt.Errorf("write migrated budget: %w", err)}
	}
	if err := e.persistActivePreference(ctx, newID); err != nil {
		return &MigrationError{Err: err}
	}
	if err := e.docs.DeleteDocument(ctx, e.paths.LegacyBudget()); err != nil {
		return &MigrationError{Err: fmt.Errorf("delete legacy document: %w", err)}
	}

	e.logger.Info("Legacy budget migrated", applog.FieldBudgetID, newID)
	return nil
}

// ResolveInitialBudget loads the budget index into the store and returns
// the budget to mirror: the persisted preference when it still points at an
// existing budget, the deterministic first index entry when it does not,
// or a freshly created budget when the user has none.
func (e *Engine) ResolveInitialBudget(ctx context.Context) (string, error) {
	records, err := e.docs.ListCollection(ctx, e.paths.BudgetsCollection())
	if err != nil {
		return "", fmt.Errorf("list budgets: %w", err)
	}

	index := core.BudgetIndex{}
	for _, rec := range records {
		name, _ := rec.Data["name"].(string)
		if name == "" {
			name = "Untitled Budget"
		}
		index[rec.ID] = name
	}

	if len(index) == 0 {
		id, err := e.CreateBudget(ctx, "My First Budget")
		if err != nil {
			return "", err
		}
		if err := e.persistActivePreference(ctx, id); err != nil {
			return "", err
		}
		return id, nil
	}
	e.store.SetBudgetIndex(index)

	prefs, err := e.docs.GetDocument(ctx, e.paths.Preferences())
	if err == nil {
		if id, _ := prefs["activeBudgetId"].(string); id != "" {
			if _, ok := index[id]; ok {
				return id, nil
			}
		}
	} else if err != docstore.ErrNotFound {
		return "", fmt.Errorf("read preferences: %w", err)
	}

	// Preference missing or pointing at a deleted budget: fall back to the
	// first index key, deterministically.
	keys := make([]string, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0], nil
}

// Subscribe attaches the live listener for budgetID, tearing down any
// existing subscription first. Two listeners never run concurrently; a
// stale callback can therefore never overwrite the store with data for a
// budget the user has navigated away from.
func (e *Engine) Subscribe(ctx context.Context, budgetID string) error {
	e.mu.Lock()
	if e.state == StateDisposed {
		e.mu.Unlock()
		return ErrDisposed
	}
	if e.sub != nil {
		e.sub.Stop()
		e.sub = nil
	}
	e.mu.Unlock()

	onData := func(doc docstore.Document, exists bool) {
		if !exists {
			err := fmt.Errorf("%w: %s", ErrBudgetNotFound, budgetID)
			e.logger.Error("Live budget document missing", applog.FieldBudgetID, budgetID)
			e.fatalErr(err)
			return
		}
		b, err := core.BudgetFromDocument(budgetID, doc)
		if err != nil {
			e.logger.Error("Failed to decode budget snapshot",
				applog.FieldBudgetID, budgetID, applog.FieldError, err)
			return
		}
		e.store.SetCurrentBudget(b)
	}
	onError := func(err error) {
		e.fatalErr(&ConnectionError{Op: applog.OpSubscribe, Err: err})
	}

	sub, err := e.docs.Subscribe(ctx, e.paths.Budget(budgetID), onData, onError)
	if err != nil {
		return &ConnectionError{Op: applog.OpSubscribe, Err: err}
	}

	e.mu.Lock()
	e.sub = sub
	e.state = StateSubscribed
	e.mu.Unlock()
	return nil
}

// SwitchActiveBudget persists the new preference and re-points the live
// subscription. This is the only sanctioned way to change which document
// is mirrored.
func (e *Engine) SwitchActiveBudget(ctx context.Context, newBudgetID string) error {
	e.setState(StateSwitching)
	if err := e.persistActivePreference(ctx, newBudgetID); err != nil {
		return err
	}
	e.store.SetActiveBudgetID(newBudgetID)
	if err := e.Subscribe(ctx, newBudgetID); err != nil {
		return err
	}
	e.logger.Info("Switched active budget", applog.FieldBudgetID, newBudgetID)
	return nil
}

// Persist writes the full live budget back to its remote document with a
// merge-style write. On failure the in-memory state is left untouched; the
// remote document stays the source of truth and the caller must prompt the
// user to retry the action.
func (e *Engine) Persist(ctx context.Context) error {
	e.store.SetLastMutationMarker("")
	b := e.store.Snapshot()
	if b == nil {
		return store.ErrNoBudget
	}
	budgetID := e.store.ActiveBudgetID()
	if budgetID == "" {
		return store.ErrNoBudget
	}

	doc, err := b.Document()
	if err != nil {
		return fmt.Errorf("encode budget for persist: %w", err)
	}
	if err := e.docs.SetDocument(ctx, e.paths.Budget(budgetID), doc, true); err != nil {
		e.logger.Error("Failed to persist budget",
			applog.FieldBudgetID, budgetID, applog.FieldError, err)
		return &ConnectionError{Op: applog.OpPersist, Err: err}
	}
	return nil
}

// CreateBudget writes a new budget from the default template and registers
// it in the index. It does not become active; callers switch explicitly.
func (e *Engine) CreateBudget(ctx context.Context, name string) (string, error) {
	b := core.DefaultBudget()
	b.Name = name
	doc, err := b.Document()
	if err != nil {
		return "", fmt.Errorf("encode budget template: %w", err)
	}
	id, err := e.docs.AddDocument(ctx, e.paths.BudgetsCollection(), doc)
	if err != nil {
		return "", &ConnectionError{Op: applog.OpCreate, Err: err}
	}
	e.store.UpdateBudgetIndexEntry(id, name)
	e.logger.Info("Created budget", applog.FieldBudgetID, id, applog.FieldBudgetName, name)
	return id, nil
}

// DeleteBudget removes a budget document. Deleting the only budget is
// refused; deleting the active one switches the session to another budget
// first, so the live subscription never points at a deleted document.
func (e *Engine) DeleteBudget(ctx context.Context, budgetID string) error {
	index := e.store.BudgetIndex()
	if len(index) <= 1 {
		return ErrOnlyBudget
	}
	if _, ok := index[budgetID]; !ok {
		return fmt.Errorf("%w: %s", ErrBudgetNotFound, budgetID)
	}

	if e.store.ActiveBudgetID() == budgetID {
		keys := make([]string, 0, len(index))
		for k := range index {
			if k != budgetID {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		if err := e.SwitchActiveBudget(ctx, keys[0]); err != nil {
			return err
		}
	}

	if err := e.docs.DeleteDocument(ctx, e.paths.Budget(budgetID)); err != nil {
		return &ConnectionError{Op: applog.OpDelete, Err: err}
	}
	e.store.RemoveBudgetIndexEntry(budgetID)
	e.logger.Info("Deleted budget", applog.FieldBudgetID, budgetID)
	return nil
}

// Dispose tears down the live subscription and ends the session.
func (e *Engine) Dispose() {
	e.mu.Lock()
	if e.sub != nil {
		e.sub.Stop()
		e.sub = nil
	}
	e.state = StateDisposed
	e.mu.Unlock()
	e.logger.Info("Session disposed", applog.FieldOperation, applog.OpShutdown)
}

func (e *Engine) persistActivePreference(ctx context.Context, budgetID string) error {
	doc := docstore.Document{"activeBudgetId": budgetID}
	if err := e.docs.SetDocument(ctx, e.paths.Preferences(), doc, false); err != nil {
		return fmt.Errorf("persist active preference: %w", err)
	}
	return nil
}

func (e *Engine) fatalErr(err error) {
	e.mu.Lock()
	fn := e.fatal
	e.mu.Unlock()
	fn(err)
}
