package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-autocategorize/internal/common"
	"github.com/Veraticus/spice-autocategorize/internal/model"
)

// DefaultExportLimit keeps one run under the Sheets write quota of 100
// requests per 100 seconds.
const DefaultExportLimit = 97

// ExportStore tracks which transactions have reached the sheet.
type ExportStore interface {
	ListUnexported(ctx context.Context, account string, limit int) ([]model.Transaction, error)
	MarkExported(ctx context.Context, account string, ids []string) error
}

// Exporter copies not-yet-exported transactions to the sheet.
type Exporter struct {
	store ExportStore
	sink  RowAppender
	now   func() time.Time
	limit int
}

// NewExporter creates an exporter that sends at most limit rows per run.
func NewExporter(store ExportStore, sink RowAppender, limit int) *Exporter {
	if limit <= 0 {
		limit = DefaultExportLimit
	}
	return &Exporter{
		store: store,
		sink:  sink,
		limit: limit,
		now:   time.Now,
	}
}

// Export appends the account's pending transactions to the sheet and flags
// them exported once the append succeeded. It returns how many rows were
// sent.
func (e *Exporter) Export(ctx context.Context, account string) (int, error) {
	pending, err := e.store.ListUnexported(ctx, account, e.limit)
	if err != nil {
		return 0, fmt.Errorf("failed to load unexported transactions: %w", err)
	}
	if len(pending) == 0 {
		return 0, fmt.Errorf("%w to export for account %s", common.ErrNoWork, account)
	}

	exportedAt := e.now()
	rows := make([]ExportRow, len(pending))
	ids := make([]string, len(pending))
	for i, txn := range pending {
		rows[i] = NewExportRow(txn, exportedAt)
		ids[i] = txn.ID
	}

	if err := e.sink.Append(ctx, rows); err != nil {
		return 0, err
	}

	if err := e.store.MarkExported(ctx, account, ids); err != nil {
		// The rows are in the sheet; a rerun would duplicate them.
		slog.Error("Rows were exported but could not be flagged", "account", account, "count", len(ids), "error", err)
		return 0, fmt.Errorf("failed to flag exported transactions: %w", err)
	}

	slog.Info("Exported transactions", "account", account, "count", len(rows))
	return len(rows), nil
}
