package ofx

import "strings"

// CreditCardType is the account type reported for credit card statements,
// which carry no ACCTTYPE of their own.
const CreditCardType = "CREDITCARD"

type accountRule struct {
	accountType string // empty matches any type
	account     string
}

// accountRules maps an institution's ORG to the account names it feeds.
var accountRules = map[string][]accountRule{
	"AMEX": {{account: "AmexBlueCash"}},
	"B1":   {{account: "ChaseSapphireReserve"}},
	"TECH CU": {
		{accountType: "CHECKING", account: "TechCUChecking"},
		{accountType: "SAVINGS", account: "TechCUSavings"},
	},
	"TECHCUDC": {
		{accountType: "CHECKING", account: "TechCUChecking"},
		{accountType: "SAVINGS", account: "TechCUSavings"},
	},
	"BANK OF AMERICA": {
		{accountType: "CHECKING", account: "BofAChecking"},
		{accountType: "MONEYMRKT", account: "BofASavings"},
	},
}

// DetectAccount names the account a statement belongs to from its
// institution ORG and account type. It reports false when no rule matches.
func DetectAccount(s Statement) (string, bool) {
	rules := accountRules[strings.ToUpper(strings.TrimSpace(s.Org))]
	for _, r := range rules {
		if r.accountType == "" || strings.EqualFold(r.accountType, s.AccountType) {
			return r.account, true
		}
	}
	return "", false
}
