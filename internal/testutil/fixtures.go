package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-autocategorize/internal/model"
)

// DefaultAccount is the account fixtures are created in unless overridden.
const DefaultAccount = "AmexBlueCash"

// BasicCategories is a small vocabulary shared across tests.
var BasicCategories = []string{
	"Groceries",
	"Gas",
	"Dining Out",
	"Travel",
	"Utilities",
}

// TransactionBuilder builds model.Transaction fixtures fluently.
type TransactionBuilder struct {
	txn model.Transaction
}

// NewTransaction starts a fixture with the given id, uncategorized, in
// DefaultAccount.
func NewTransaction(id string) *TransactionBuilder {
	return &TransactionBuilder{txn: model.Transaction{
		ID:         id,
		Account:    DefaultAccount,
		DatePosted: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Payee:      "MERCHANT " + id,
		Amount:     decimal.RequireFromString("-10.00"),
		Category:   model.UnknownCategory,
	}}
}

// WithAccount sets the account.
func (b *TransactionBuilder) WithAccount(account string) *TransactionBuilder {
	b.txn.Account = account
	return b
}

// WithPayee sets the payee.
func (b *TransactionBuilder) WithPayee(payee string) *TransactionBuilder {
	b.txn.Payee = payee
	return b
}

// WithMemo sets the memo.
func (b *TransactionBuilder) WithMemo(memo string) *TransactionBuilder {
	b.txn.Memo = memo
	return b
}

// WithCategory sets the category.
func (b *TransactionBuilder) WithCategory(category string) *TransactionBuilder {
	b.txn.Category = category
	return b
}

// WithAmount sets the amount from a decimal string such as "-42.10".
func (b *TransactionBuilder) WithAmount(amount string) *TransactionBuilder {
	b.txn.Amount = decimal.RequireFromString(amount)
	return b
}

// WithDate sets the posting date.
func (b *TransactionBuilder) WithDate(year int, month time.Month, day int) *TransactionBuilder {
	b.txn.DatePosted = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return b
}

// Build returns the transaction.
func (b *TransactionBuilder) Build() model.Transaction {
	return b.txn
}
