package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-autocategorize/internal/common"
)

// DefaultAccounts are the account names accepted when the config file does
// not list its own under "accounts".
var DefaultAccounts = []string{
	"AmexBlueCash",
	"ChaseSapphireReserve",
	"TechCUChecking",
	"TechCUSavings",
	"BofAChecking",
	"BofASavings",
}

// Accounts returns the configured account names.
func Accounts() []string {
	if configured := viper.GetStringSlice("accounts"); len(configured) > 0 {
		return configured
	}
	return slices.Clone(DefaultAccounts)
}

// ValidateAccount checks that account is one of the configured accounts.
// Names are case-sensitive.
func ValidateAccount(account string) error {
	accounts := Accounts()
	if slices.Contains(accounts, account) {
		return nil
	}
	return fmt.Errorf("%w %q (valid: %s)", common.ErrUnknownAccount, account, strings.Join(accounts, ", "))
}
