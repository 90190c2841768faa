package categorizer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-autocategorize/internal/common"
	"github.com/Veraticus/spice-autocategorize/internal/forest"
	"github.com/Veraticus/spice-autocategorize/internal/model"
	"github.com/Veraticus/spice-autocategorize/internal/reconcile"
)

// Store is the storage a categorization run reads from and writes to.
type Store interface {
	LabeledSource
	CategoryWriter
	ListUnlabeled(ctx context.Context, account string) ([]model.Transaction, error)
	ListCategories(ctx context.Context) (model.Vocabulary, error)
}

// Reconciler lets a human confirm or correct predictions.
type Reconciler interface {
	Reconcile(ctx context.Context, records []model.Transaction, predictions []string, vocabulary model.Vocabulary) (reconcile.Result, error)
}

// RunOptions configures one categorization run.
type RunOptions struct {
	Account      string
	TrainingFile string
	Forest       forest.Options
	// CommitUnreviewed writes the predicted category for records left
	// unreviewed after an abort instead of leaving them Unknown.
	CommitUnreviewed bool
}

// RunSummary reports what a run did.
type RunSummary struct {
	Result    reconcile.Result
	Examples  int
	Predicted int
	Committed int
}

// Run trains on the account's history, predicts the unlabeled batch, asks
// the reconciler to review it and commits the outcome.
func Run(ctx context.Context, store Store, reconciler Reconciler, opts RunOptions) (RunSummary, error) {
	var summary RunSummary

	vocabulary, err := store.ListCategories(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load categories: %w", err)
	}
	if vocabulary.Len() == 0 {
		return summary, common.NewUserError("no categories defined, add some with `spice categories add`", common.ErrConfiguration)
	}

	examples, err := AssembleTrainingSet(ctx, store, opts.Account, opts.TrainingFile)
	if err != nil {
		return summary, err
	}
	summary.Examples = len(examples)

	m, err := Fit(ctx, examples, opts.Forest)
	if err != nil {
		return summary, fmt.Errorf("failed to train classifier: %w", err)
	}
	for _, class := range m.Classes() {
		if !vocabulary.Contains(class) {
			slog.Warn("Training category is not in the category list and cannot be accepted as-is", "category", class)
		}
	}

	records, err := store.ListUnlabeled(ctx, opts.Account)
	if err != nil {
		return summary, fmt.Errorf("failed to load uncategorized transactions: %w", err)
	}
	if len(records) == 0 {
		return summary, fmt.Errorf("%w for account %s", common.ErrNoWork, opts.Account)
	}

	predictions, err := PredictBatch(m, records)
	if err != nil {
		return summary, err
	}
	summary.Predicted = len(predictions)
	slog.Info("Predicted categories", "account", opts.Account, "transactions", len(records))

	result, err := reconciler.Reconcile(ctx, records, predictions, vocabulary)
	if err != nil {
		return summary, fmt.Errorf("review failed, nothing was written: %w", err)
	}
	summary.Result = result

	n := len(records)
	if result.Aborted && !opts.CommitUnreviewed {
		n = result.Reviewed
	}
	if n < len(records) {
		slog.Info("Review stopped early, leaving the rest uncategorized",
			"reviewed", n, "remaining", len(records)-n)
	}

	commitRecords, categories, notes := records[:n], result.Categories[:n], result.Notes[:n]
	if n > result.Reviewed {
		commitRecords, categories, notes = keepKnownCategories(commitRecords, categories, notes, result.Reviewed, vocabulary)
	}

	if err := Commit(ctx, store, opts.Account, commitRecords, categories, notes); err != nil {
		return summary, err
	}
	summary.Committed = len(commitRecords)

	return summary, nil
}

// keepKnownCategories drops unreviewed entries, those at or after reviewed,
// whose predicted category is not in the vocabulary. They stay uncategorized.
func keepKnownCategories(records []model.Transaction, categories, notes []string, reviewed int, vocabulary model.Vocabulary) ([]model.Transaction, []string, []string) {
	keptRecords := make([]model.Transaction, 0, len(records))
	keptCategories := make([]string, 0, len(categories))
	keptNotes := make([]string, 0, len(notes))
	for i := range records {
		if i >= reviewed && !vocabulary.Contains(categories[i]) {
			slog.Warn("Not saving unreviewed prediction outside the category list",
				"transaction", records[i].ID, "category", categories[i])
			continue
		}
		keptRecords = append(keptRecords, records[i])
		keptCategories = append(keptCategories, categories[i])
		keptNotes = append(keptNotes, notes[i])
	}
	return keptRecords, keptCategories, keptNotes
}
