// Package ofx reads OFX/QFX bank and credit-card statements.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-autocategorize/internal/model"
)

// ErrNoStatements is returned for a well-formed file without any statement.
var ErrNoStatements = errors.New("no bank or credit card statements found")

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Statement is one account statement from an OFX file. Transactions carry
// no account or category yet; the caller assigns the account.
type Statement struct {
	BalanceAsOf  time.Time
	Start        time.Time
	End          time.Time
	Org          string
	AccountID    string
	AccountType  string // CHECKING, SAVINGS, MONEYMRKT, ... or CREDITCARD
	Transactions []model.Transaction
	Balance      decimal.Decimal
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Fix missing closing angle brackets in SGML-style OFX files
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// Parse reads every bank and credit card statement in the file.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) ([]Statement, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	org := strings.TrimSpace(string(resp.Signon.Org))
	var statements []Statement

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		s := Statement{
			Org:         org,
			AccountID:   string(stmt.BankAcctFrom.AcctID),
			AccountType: stmt.BankAcctFrom.AcctType.String(),
			Balance:     toDecimal(stmt.BalAmt),
			BalanceAsOf: stmt.DtAsOf.Time,
		}
		p.addTransactions(&s, stmt.BankTranList)
		statements = append(statements, s)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		s := Statement{
			Org:         org,
			AccountID:   string(stmt.CCAcctFrom.AcctID),
			AccountType: CreditCardType,
			Balance:     toDecimal(stmt.BalAmt),
			BalanceAsOf: stmt.DtAsOf.Time,
		}
		p.addTransactions(&s, stmt.BankTranList)
		statements = append(statements, s)
	}

	if len(statements) == 0 {
		return nil, ErrNoStatements
	}

	for _, s := range statements {
		slog.Info("Parsed OFX statement",
			"org", s.Org,
			"account_type", s.AccountType,
			"balance", s.Balance.StringFixed(2),
			"as_of", s.BalanceAsOf.Format("2006-01-02"),
			"start", s.Start.Format("2006-01-02"),
			"end", s.End.Format("2006-01-02"),
			"transactions", len(s.Transactions))
	}

	return statements, nil
}

func (p *Parser) addTransactions(s *Statement, list *ofxgo.TransactionList) {
	if list == nil {
		return
	}
	s.Start = list.DtStart.Time
	s.End = list.DtEnd.Time

	for _, ofxTx := range list.Transactions {
		s.Transactions = append(s.Transactions, p.convertTransaction(ofxTx))
	}

	// Newest first, matching the order statements are usually read in.
	sort.SliceStable(s.Transactions, func(i, j int) bool {
		return s.Transactions[i].DatePosted.After(s.Transactions[j].DatePosted)
	})
}

// convertTransaction converts an OFX transaction to our model. Amounts keep
// their OFX sign: debits are negative.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction) model.Transaction {
	posted := ofxTx.DtPosted.Time
	return model.Transaction{
		ID:         strings.TrimSpace(string(ofxTx.FiTID)),
		DatePosted: time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC),
		Payee:      payeeName(ofxTx),
		Memo:       strings.TrimSpace(string(ofxTx.Memo)),
		Amount:     toDecimal(ofxTx.TrnAmt),
		Category:   model.UnknownCategory,
	}
}

// payeeName prefers the structured PAYEE name and falls back to NAME.
func payeeName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	return strings.TrimSpace(string(tx.Name))
}

func toDecimal(amount ofxgo.Amount) decimal.Decimal {
	d, err := decimal.NewFromString(amount.Rat.FloatString(4))
	if err != nil {
		return decimal.Zero
	}
	return d
}
