// Package sheets mirrors categorized transactions into a Google Sheet.
package sheets

import (
	"errors"
	"os"
	"time"
)

// Configuration errors.
var (
	ErrNoAuth          = errors.New("no Google Sheets authentication configured: provide a service account key or OAuth2 credentials")
	ErrMultipleAuth    = errors.New("multiple authentication methods configured; use either OAuth2 or service account")
	ErrNoSpreadsheetID = errors.New("no spreadsheet id configured")
)

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	TokenFile          string
	ServiceAccountPath string
	SpreadsheetID      string
	SheetName          string
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SheetName:     "Transactions",
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// LoadFromEnv fills unset fields from GOOGLE_SHEETS_* environment variables.
func (c *Config) LoadFromEnv() {
	setIfEmpty(&c.ClientID, "GOOGLE_SHEETS_CLIENT_ID")
	setIfEmpty(&c.ClientSecret, "GOOGLE_SHEETS_CLIENT_SECRET")
	setIfEmpty(&c.RefreshToken, "GOOGLE_SHEETS_REFRESH_TOKEN")
	setIfEmpty(&c.ServiceAccountPath, "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")
	setIfEmpty(&c.SpreadsheetID, "GOOGLE_SHEETS_SPREADSHEET_ID")
	setIfEmpty(&c.SheetName, "GOOGLE_SHEETS_SHEET_NAME")
}

func setIfEmpty(field *string, env string) {
	if *field == "" {
		*field = os.Getenv(env)
	}
}

// hasOAuth reports whether OAuth2 credentials are usable, either with an
// inline refresh token or a saved token file.
func (c *Config) hasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && (c.RefreshToken != "" || c.TokenFile != "")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasServiceAccount := c.ServiceAccountPath != ""

	switch {
	case !c.hasOAuth() && !hasServiceAccount:
		return ErrNoAuth
	case c.hasOAuth() && hasServiceAccount:
		return ErrMultipleAuth
	case c.SpreadsheetID == "":
		return ErrNoSpreadsheetID
	case c.SheetName == "":
		return errors.New("sheet name cannot be empty")
	case c.RetryAttempts < 0:
		return errors.New("retry attempts cannot be negative")
	case c.RetryDelay < 0:
		return errors.New("retry delay cannot be negative")
	}
	return nil
}
