// Package archive snapshots the live budget into immutable monthly records
// and resets the transactional fields, the "close the month" operation.
package archive

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"homebudget/internal/core"
	"homebudget/internal/docstore"
	applog "homebudget/internal/log"
	"homebudget/internal/store"
)

// ErrDuplicatePeriod means an archive already exists for the current
// calendar period. Overwriting a past archive is disallowed.
var ErrDuplicatePeriod = errors.New("archive already exists for period")

// Persister is the slice of the sync engine the manager needs: the normal
// write path, so the post-archive reset is persisted like any mutation.
type Persister interface {
	Persist(ctx context.Context) error
}

// Exporter mirrors an archived period to an external destination. Export is
// best effort; the document store copy is the one that matters.
type Exporter interface {
	ExportArchive(ctx context.Context, record *core.ArchiveRecord) error
}

type Manager struct {
	docs      docstore.Store
	store     *store.Store
	persister Persister
	paths     docstore.Paths
	logger    *applog.Logger
	exporter  Exporter

	now func() time.Time
}

func NewManager(docs docstore.Store, st *store.Store, persister Persister, paths docstore.Paths, logger *applog.Logger) *Manager {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Manager{
		docs:      docs,
		store:     st,
		persister: persister,
		paths:     paths,
		logger:    logger.WithComponent(applog.ComponentArchive),
		now:       time.Now,
	}
}

// SetExporter enables mirroring of new archives; nil disables it.
func (m *Manager) SetExporter(e Exporter) { m.exporter = e }

// ArchiveCurrentMonth snapshots the live budget under the current YYYY-MM
// period id, then clears transactions and income and zeroes every
// category's spent on the live budget, persisting the reset through the
// engine. Strictly sequenced: the snapshot write must succeed before the
// live budget is touched, so a failed snapshot leaves no partial archive.
func (m *Manager) ArchiveCurrentMonth(ctx context.Context) (*core.ArchiveRecord, error) {
	budgetID := m.store.ActiveBudgetID()
	snapshot := m.store.Snapshot()
	if budgetID == "" || snapshot == nil {
		return nil, store.ErrNoBudget
	}

	now := m.now()
	periodID := now.Format("2006-01")
	recordPath := m.paths.Archive(budgetID, periodID)

	_, err := m.docs.GetDocument(ctx, recordPath)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePeriod, periodID)
	}
	if err != docstore.ErrNotFound {
		return nil, fmt.Errorf("check existing archive: %w", err)
	}

	record := &core.ArchiveRecord{
		PeriodID:   periodID,
		ArchivedAt: now.Format(time.RFC3339),
		Budget:     *snapshot,
	}
	doc, err := record.Document()
	if err != nil {
		return nil, err
	}
	if err := m.docs.SetDocument(ctx, recordPath, doc, false); err != nil {
		return nil, fmt.Errorf("write archive snapshot: %w", err)
	}

	// Snapshot is durable; now reset the live budget and route it through
	// the normal write path.
	err = m.store.WithBudget(func(b *core.Budget) error {
		b.Transactions = []core.Expense{}
		b.IncomeTransactions = []core.Income{}
		for i := range b.Categories {
			b.Categories[i].Spent = 0
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := m.persister.Persist(ctx); err != nil {
		// The reset is applied in memory and the snapshot exists; only the
		// persist needs retrying.
		return record, err
	}

	if m.exporter != nil {
		if err := m.exporter.ExportArchive(ctx, record); err != nil {
			m.logger.Warn("Archive export failed",
				applog.FieldPeriodID, periodID, applog.FieldError, err)
		}
	}

	m.logger.Info("Archived month",
		applog.FieldBudgetID, budgetID,
		applog.FieldPeriodID, periodID)
	return record, nil
}

// ListArchives enumerates a budget's archive records, newest period first.
// Always fetched fresh; nothing is cached.
func (m *Manager) ListArchives(ctx context.Context, budgetID string) ([]core.ArchiveRecord, error) {
	records, err := m.docs.ListCollection(ctx, m.paths.ArchiveCollection(budgetID))
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	out := make([]core.ArchiveRecord, 0, len(records))
	for _, rec := range records {
		ar, err := core.ArchiveFromDocument(rec.ID, rec.Data)
		if err != nil {
			m.logger.Warn("Skipping undecodable archive record",
				applog.FieldPeriodID, rec.ID, applog.FieldError, err)
			continue
		}
		out = append(out, *ar)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodID > out[j].PeriodID })
	return out, nil
}
