package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-autocategorize/internal/model"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
<FI>
<ORG>Bank of America
<FID>1001
</FI>
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
<MEMO>AUSTIN TX
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
<FI>
<ORG>AMEX
<FID>1001
</FI>
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			expectedCount: 3,
		},
		{
			name:          "valid credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statements, err := NewParser().Parse(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, statements, 1)
			assert.Len(t, statements[0].Transactions, tt.expectedCount)
		})
	}
}

func TestParseBankStatement(t *testing.T) {
	statements, err := NewParser().Parse(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, statements, 1)

	s := statements[0]
	assert.Equal(t, "Bank of America", s.Org)
	assert.Equal(t, "CHECKING", s.AccountType)
	assert.Equal(t, "1234567890", s.AccountID)
	assert.True(t, s.Balance.Equal(decimal.RequireFromString("1000")))
	assert.Equal(t, time.January, s.Start.Month())
	assert.Equal(t, 31, s.End.Day())

	require.Len(t, s.Transactions, 3)

	// Newest first.
	check := s.Transactions[0]
	assert.Equal(t, "2024012501", check.ID)
	assert.Equal(t, "CHECK #1234", check.Payee)
	assert.True(t, check.Amount.Equal(decimal.RequireFromString("-500")))

	wholeFoods := s.Transactions[1]
	assert.Equal(t, "Whole Foods Market", wholeFoods.Payee)
	assert.Equal(t, "AUSTIN TX", wholeFoods.Memo)
	assert.Equal(t, "-125.00", wholeFoods.Amount.StringFixed(2))
	assert.Equal(t, model.UnknownCategory, wholeFoods.Category)
	assert.Equal(t, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), wholeFoods.DatePosted)

	starbucks := s.Transactions[2]
	assert.Equal(t, "2024011501", starbucks.ID)
	assert.Equal(t, "STARBUCKS STORE #1234", starbucks.Payee)
	assert.Empty(t, starbucks.Memo)
	assert.Equal(t, "-25.50", starbucks.Amount.StringFixed(2))
	assert.Empty(t, starbucks.Account, "account is assigned by the importer")
}

func TestParseCreditCardStatement(t *testing.T) {
	statements, err := NewParser().Parse(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, statements, 1)

	s := statements[0]
	assert.Equal(t, "AMEX", s.Org)
	assert.Equal(t, CreditCardType, s.AccountType)
	assert.Equal(t, "4111111111111111", s.AccountID)
	assert.True(t, s.Balance.Equal(decimal.RequireFromString("-500")))

	require.Len(t, s.Transactions, 2)
	assert.Equal(t, "NETFLIX.COM", s.Transactions[0].Payee)
	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", s.Transactions[1].Payee)
	assert.Equal(t, "-45.99", s.Transactions[1].Amount.String())
}

func TestPreprocessOFX(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "leading whitespace",
			input:    "\n\n  OFXHEADER:100",
			expected: "OFXHEADER:100",
		},
		{
			name:     "mixed case severity",
			input:    "<SEVERITY>Info</SEVERITY>",
			expected: "<SEVERITY>INFO</SEVERITY>",
		},
		{
			name:     "missing closing bracket",
			input:    "<OFX>\n<STMTTRN\n</OFX>",
			expected: "<OFX>\n<STMTTRN>\n</OFX>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parser.preprocessOFX(tt.input))
		})
	}
}

func TestDetectAccount(t *testing.T) {
	tests := []struct {
		name        string
		org         string
		accountType string
		want        string
		found       bool
	}{
		{name: "amex", org: "AMEX", accountType: CreditCardType, want: "AmexBlueCash", found: true},
		{name: "chase", org: "B1", accountType: CreditCardType, want: "ChaseSapphireReserve", found: true},
		{name: "tech cu checking", org: "Tech CU", accountType: "CHECKING", want: "TechCUChecking", found: true},
		{name: "tech cu savings", org: "TECHCUDC", accountType: "SAVINGS", want: "TechCUSavings", found: true},
		{name: "bofa checking", org: "Bank of America", accountType: "CHECKING", want: "BofAChecking", found: true},
		{name: "bofa money market", org: "Bank of America", accountType: "MONEYMRKT", want: "BofASavings", found: true},
		{name: "bofa credit line", org: "Bank of America", accountType: "CREDITLINE"},
		{name: "unknown institution", org: "Some Bank", accountType: "CHECKING"},
		{name: "no org", org: "", accountType: "CHECKING"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectAccount(Statement{Org: tt.org, AccountType: tt.accountType})
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
