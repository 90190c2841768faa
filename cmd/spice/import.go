package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-autocategorize/internal/cli"
	"github.com/Veraticus/spice-autocategorize/internal/common"
	"github.com/Veraticus/spice-autocategorize/internal/config"
	"github.com/Veraticus/spice-autocategorize/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <ofx-file> <database>",
		Short: "Import transactions from an OFX/QFX statement",
		Long: `Import the transactions of an OFX or QFX statement downloaded from your bank.

The account is detected from the institution in the file; use --account when
detection fails. Transactions already in the database are skipped, new ones
start out with category Unknown.`,
		Args: cobra.ExactArgs(2),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")
	cmd.Flags().String("account", "", "Account name to import into instead of the detected one")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ofxPath, dbPath := config.ExpandPath(args[0]), args[1]
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	accountOverride, _ := cmd.Flags().GetString("account")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	f, err := os.Open(ofxPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to open statement: %w", err)
	}
	statements, err := ofx.NewParser().Parse(ctx, f)
	_ = f.Close()
	if err != nil {
		return err
	}

	store, err := openStorage(ctx, dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	for _, stmt := range statements {
		account := accountOverride
		if account == "" {
			detected, ok := ofx.DetectAccount(stmt)
			if !ok {
				return fmt.Errorf("%w: cannot detect account for institution %q (%s), pass --account",
					common.ErrUnknownAccount, stmt.Org, stmt.AccountType)
			}
			account = detected
		}
		if err := config.ValidateAccount(account); err != nil {
			return err
		}

		fmt.Fprintln(out, cli.FormatTitle("Detected account: "+account))
		fmt.Fprintf(out, "  Balance %s as of %s\n", stmt.Balance.StringFixed(2), stmt.BalanceAsOf.Format("2006-01-02"))
		fmt.Fprintf(out, "  Statement %s to %s, %d transactions\n",
			stmt.Start.Format("2006-01-02"), stmt.End.Format("2006-01-02"), len(stmt.Transactions))

		for i := range stmt.Transactions {
			stmt.Transactions[i].Account = account
		}

		if dryRun {
			for _, txn := range stmt.Transactions {
				fmt.Fprintln(out, cli.SubtleStyle.Render("  "+txn.String()))
			}
			continue
		}

		inserted, err := store.SaveTransactions(ctx, stmt.Transactions)
		if err != nil {
			return fmt.Errorf("failed to save transactions for %s: %w", account, err)
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%d transactions written, %d already present",
			inserted, len(stmt.Transactions)-inserted)))
	}

	if dryRun {
		fmt.Fprintln(out, cli.FormatInfo("Dry run complete - no data saved"))
	}
	return nil
}
