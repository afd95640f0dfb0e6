package sheets

import (
	"context"
	"fmt"

	"homebudget/internal/aggregate"
	"homebudget/internal/core"
	applog "homebudget/internal/log"
)

// Exporter flattens an archive record into spreadsheet rows and appends
// them through a RowWriter. One exported period is one summary row followed
// by one row per transaction.
type Exporter struct {
	writer    RowWriter
	sheetName string
	logger    *applog.Logger
}

func NewExporter(writer RowWriter, sheetName string, logger *applog.Logger) *Exporter {
	if sheetName == "" {
		sheetName = "Archives"
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Exporter{
		writer:    writer,
		sheetName: sheetName,
		logger:    logger.WithComponent(applog.ComponentExport),
	}
}

// ExportArchive appends the record to the configured sheet. Failures are
// reported but never affect the archive itself; the spreadsheet is a copy,
// not the source of truth.
func (e *Exporter) ExportArchive(ctx context.Context, record *core.ArchiveRecord) error {
	rows := Rows(record)
	ref, err := e.writer.AppendRows(ctx, e.sheetName, rows)
	if err != nil {
		return fmt.Errorf("export archive %s: %w", record.PeriodID, err)
	}
	e.logger.Info("Exported archive",
		applog.FieldPeriodID, record.PeriodID,
		applog.FieldOperation, applog.OpExport,
		"row_ref", ref)
	return nil
}

// Rows flattens a record: a summary row, then one row per expense with the
// resolved category name.
func Rows(record *core.ArchiveRecord) [][]any {
	b := record.Budget
	rows := [][]any{{
		record.PeriodID,
		b.Name,
		aggregate.TotalIncome(&b),
		aggregate.TotalSpent(&b),
		aggregate.TotalAllocated(&b),
	}}
	for _, t := range b.Transactions {
		categoryName := t.CategoryID
		if c := b.Category(t.CategoryID); c != nil {
			categoryName = c.Name
		}
		rows = append(rows, []any{
			record.PeriodID,
			t.Date,
			t.Description,
			t.Amount,
			categoryName,
			t.PaymentMethod,
		})
	}
	return rows
}
