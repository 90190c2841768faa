package config

import (
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-autocategorize/internal/sheets"
)

// DefaultSheetsTokenFile is where `spice export auth` saves the OAuth2 token.
const DefaultSheetsTokenFile = "~/.config/spice/sheets-token.json"

// SheetsTokenFile returns the expanded OAuth2 token path.
func SheetsTokenFile() string {
	if v := viper.GetString("sheets.token_file"); v != "" {
		return ExpandPath(v)
	}
	return ExpandPath(DefaultSheetsTokenFile)
}

// LoadSheetsConfig loads Google Sheets configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or SPICE_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = ExpandPath(viper.GetString("sheets.service_account_path"))
	config.TokenFile = SheetsTokenFile()
	config.ClientID = viper.GetString("sheets.client_id")
	config.ClientSecret = viper.GetString("sheets.client_secret")
	config.RefreshToken = viper.GetString("sheets.refresh_token")
	config.SpreadsheetID = viper.GetString("sheets.spreadsheet_id")
	if v := viper.GetString("sheets.sheet_name"); v != "" {
		config.SheetName = v
	}
	if viper.IsSet("sheets.retry_attempts") {
		config.RetryAttempts = viper.GetInt("sheets.retry_attempts")
	}

	config.LoadFromEnv()
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
