package sheets

import (
	"time"

	"github.com/Veraticus/spice-autocategorize/internal/model"
)

// Header is the first row of the transactions sheet; ExportRow.Values
// follows the same column order.
var Header = []any{
	"DatePosted", "Payee", "Category", "Amount", "Note", "Account",
	"Memo", "TransactionID", "TransactionHash", "TransactionMonth", "ExportTimestamp",
}

// ExportRow is one transaction as written to the sheet.
type ExportRow struct {
	DatePosted    time.Time
	Month         time.Time
	ExportedAt    time.Time
	Payee         string
	Category      string
	Amount        string
	Note          string
	Account       string
	Memo          string
	TransactionID string
}

// NewExportRow builds the sheet row for txn, stamped with exportedAt.
func NewExportRow(txn model.Transaction, exportedAt time.Time) ExportRow {
	return ExportRow{
		DatePosted:    txn.DatePosted,
		Month:         txn.Month(),
		ExportedAt:    exportedAt,
		Payee:         txn.Payee,
		Category:      txn.Category,
		Amount:        txn.Amount.StringFixed(2),
		Note:          txn.Notes,
		Account:       txn.Account,
		Memo:          txn.Memo,
		TransactionID: txn.ID,
	}
}

// Values renders the row as cell values. Sheets parses them as if typed
// by a user, so dates and amounts become real dates and numbers.
func (r ExportRow) Values() []any {
	return []any{
		r.DatePosted.Format("2006-01-02"),
		r.Payee,
		r.Category,
		r.Amount,
		r.Note,
		r.Account,
		r.Memo,
		r.TransactionID,
		"",
		r.Month.Format("2006-01-02"),
		r.ExportedAt.Format("01/02/2006 15:04:05.000000"),
	}
}
