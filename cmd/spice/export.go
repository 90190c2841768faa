package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-autocategorize/internal/cli"
	"github.com/Veraticus/spice-autocategorize/internal/common"
	"github.com/Veraticus/spice-autocategorize/internal/config"
	"github.com/Veraticus/spice-autocategorize/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <database> <account>",
		Short: "Append transactions not yet exported to Google Sheets",
		Long: `Append the account's transactions that are not in the spreadsheet yet.

At most --limit rows are sent per run to stay under the Sheets write quota;
run again after 100 seconds for the rest. Transactions are flagged as
exported only after the spreadsheet accepted them.

Configure the spreadsheet under "sheets" in the config file or with
GOOGLE_SHEETS_* environment variables.`,
		Args: cobra.ExactArgs(2),
		RunE: runExport,
	}

	cmd.Flags().Int("limit", sheets.DefaultExportLimit, "maximum rows to export in one run")
	_ = viper.BindPFlag("export.limit", cmd.Flags().Lookup("limit"))

	cmd.AddCommand(exportAuthCmd())
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	dbPath, account := args[0], args[1]
	if err := config.ValidateAccount(account); err != nil {
		return err
	}
	ctx := cmd.Context()

	sheetsConfig, err := config.LoadSheetsConfig()
	if err != nil {
		return common.NewUserError("Google Sheets is not configured", fmt.Errorf("%w: %w", common.ErrConfiguration, err))
	}

	store, err := openStorage(ctx, dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	pending, err := store.CountUnexported(ctx, account)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Found %d transactions not yet in Google Sheets", pending)))

	writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
	if err != nil {
		return err
	}
	if err := writer.EnsureHeader(ctx); err != nil {
		return err
	}

	limit := viper.GetInt("export.limit")
	exported, err := sheets.NewExporter(store, writer, limit).Export(ctx, account)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d transactions", exported)))
	if remaining := pending - exported; remaining > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(fmt.Sprintf(
			"%d transactions remain; run again after 100 seconds to stay under the Sheets API quota", remaining)))
	}
	return nil
}

func exportAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize spice to write to Google Sheets with OAuth2",
		Long: `Run the OAuth2 consent flow in the browser and save the token to the
file named by sheets.token_file (default ~/.config/spice/sheets-token.json).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			oauth := sheets.OAuth2Config{
				ClientID:     viper.GetString("sheets.client_id"),
				ClientSecret: viper.GetString("sheets.client_secret"),
				TokenFile:    config.SheetsTokenFile(),
				CallbackPort: viper.GetInt("sheets.callback_port"),
			}
			if oauth.ClientID == "" || oauth.ClientSecret == "" {
				return common.NewUserError("set sheets.client_id and sheets.client_secret first", common.ErrConfiguration)
			}

			if _, err := sheets.GetOrCreateToken(cmd.Context(), oauth); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Google Sheets authorized, token saved to "+oauth.TokenFile))
			return nil
		},
	}
	return cmd
}
