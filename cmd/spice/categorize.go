package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-autocategorize/internal/categorizer"
	"github.com/Veraticus/spice-autocategorize/internal/cli"
	"github.com/Veraticus/spice-autocategorize/internal/config"
	"github.com/Veraticus/spice-autocategorize/internal/forest"
	"github.com/Veraticus/spice-autocategorize/internal/reconcile"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize <database> <account>",
		Short: "Predict and review categories for uncategorized transactions",
		Long: `Train a classifier on the account's categorized transactions (or on a
training CSV with Description and Category columns), predict a category for
every uncategorized transaction, and review the predictions one by one.

Press Enter to accept a prediction, type a category to override it, or type
'q' to stop. Reviewed transactions are saved when the review ends.`,
		Args: cobra.ExactArgs(2),
		RunE: runCategorize,
	}

	cmd.Flags().StringP("trainingfile", "t", "", "CSV file with Description and Category columns to train on")
	cmd.Flags().Uint64("seed", 0, "random seed for training (0 picks one)")
	cmd.Flags().Int("trees", forest.MinTrees, "number of trees in the forest (minimum 100)")
	cmd.Flags().Bool("commit-unreviewed", false, "after quitting early, also save predictions for transactions you did not review")

	_ = viper.BindPFlag("categorize.training_file", cmd.Flags().Lookup("trainingfile"))
	_ = viper.BindPFlag("categorize.seed", cmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag("categorize.trees", cmd.Flags().Lookup("trees"))
	_ = viper.BindPFlag("categorize.commit_unreviewed", cmd.Flags().Lookup("commit-unreviewed"))

	return cmd
}

func runCategorize(cmd *cobra.Command, args []string) error {
	dbPath, account := args[0], args[1]
	if err := config.ValidateAccount(account); err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.OutOrStdout())
	ctx := handler.HandleInterrupts(cmd.Context())

	store, err := openStorage(ctx, dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	vocabulary, err := store.ListCategories(ctx)
	if err != nil {
		return err
	}
	if err := reportBacklog(ctx, store, account, cmd.OutOrStdout()); err != nil {
		return err
	}

	seed := viper.GetUint64("categorize.seed")
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	forestOpts := forest.DefaultOptions()
	forestOpts.Trees = viper.GetInt("categorize.trees")
	forestOpts.Seed = seed
	slog.Debug("Training options", "seed", seed, "trees", forestOpts.Trees, "workers", forestOpts.Workers)

	prompter := cli.NewCLIPrompter(os.Stdin, cmd.OutOrStdout(), vocabulary)
	summary, err := categorizer.Run(ctx, store, reconcile.NewSession(prompter), categorizer.RunOptions{
		Account:          account,
		TrainingFile:     config.ExpandPath(viper.GetString("categorize.training_file")),
		Forest:           forestOpts,
		CommitUnreviewed: viper.GetBool("categorize.commit_unreviewed"),
	})
	if err != nil {
		if handler.WasInterrupted() {
			return nil
		}
		return err
	}

	prompter.Finish(summary.Result)
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved %d of %d transactions to %s",
		summary.Committed, summary.Predicted, account)))
	return nil
}

type transactionCounter interface {
	CountTransactions(ctx context.Context, account string) (labeled, unlabeled int, err error)
}

// reportBacklog prints how much history the classifier has to learn from and
// how many transactions wait for a category.
func reportBacklog(ctx context.Context, store transactionCounter, account string, out io.Writer) error {
	labeled, unlabeled, err := store.CountTransactions(ctx, account)
	if err != nil {
		return fmt.Errorf("failed to count transactions: %w", err)
	}
	fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%s: %d categorized, %d uncategorized", account, labeled, unlabeled)))
	return nil
}
