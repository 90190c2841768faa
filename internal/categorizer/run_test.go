package categorizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-autocategorize/internal/common"
	"github.com/Veraticus/spice-autocategorize/internal/forest"
	"github.com/Veraticus/spice-autocategorize/internal/model"
	"github.com/Veraticus/spice-autocategorize/internal/reconcile"
	"github.com/Veraticus/spice-autocategorize/internal/testutil"
)

// fakeReconciler confirms the first `reviewed` predictions, overriding the
// ones listed in overrides, then aborts if reviewed is short of the batch.
type fakeReconciler struct {
	err         error
	overrides   map[int]string
	predictions []string
	reviewed    int
	calls       int
}

func (f *fakeReconciler) Reconcile(_ context.Context, records []model.Transaction, predictions []string, _ model.Vocabulary) (reconcile.Result, error) {
	f.calls++
	f.predictions = predictions
	if f.err != nil {
		return reconcile.Result{}, f.err
	}

	reviewed := f.reviewed
	if reviewed < 0 || reviewed > len(records) {
		reviewed = len(records)
	}

	result := reconcile.Result{
		Categories: append([]string(nil), predictions...),
		Notes:      make([]string, len(records)),
		Reviewed:   reviewed,
		Aborted:    reviewed < len(records),
	}
	for i, category := range f.overrides {
		result.Categories[i] = category
		result.Notes[i] = "fixed"
		result.Overridden++
	}
	return result, nil
}

func seedRunDB(t *testing.T) *testutil.TestDB {
	t.Helper()
	return seedRunDBWithCategories(t, testutil.BasicCategories...)
}

func seedRunDBWithCategories(t *testing.T, categories ...string) *testutil.TestDB {
	t.Helper()
	db := testutil.SetupTestDB(t, categories...)
	for i, ex := range groceryGasExamples() {
		db.SeedTransactions(testutil.NewTransaction(string(rune('a'+i))).
			WithPayee(ex.Description).
			WithCategory(ex.Category).
			Build())
	}
	db.SeedTransactions(
		testutil.NewTransaction("u1").WithPayee("SAFEWAY STORE #1234").WithDate(2024, 2, 1).Build(),
		testutil.NewTransaction("u2").WithPayee("SHELL OIL 57442").WithDate(2024, 2, 2).Build(),
		testutil.NewTransaction("u3").WithPayee("CHEVRON STATION 0091").WithDate(2024, 2, 3).Build(),
	)
	return db
}

func runOptions() RunOptions {
	return RunOptions{
		Account: testutil.DefaultAccount,
		Forest:  forest.Options{Seed: 11},
	}
}

func TestRun_FullReview(t *testing.T) {
	db := seedRunDB(t)
	rec := &fakeReconciler{reviewed: -1, overrides: map[int]string{1: "Travel"}}

	summary, err := Run(context.Background(), db.Storage, rec, runOptions())
	require.NoError(t, err)

	assert.Equal(t, 20, summary.Examples)
	assert.Equal(t, 3, summary.Predicted)
	assert.Equal(t, 3, summary.Committed)
	assert.Equal(t, []string{"Groceries", "Gas", "Gas"}, rec.predictions)

	assert.Equal(t, "Groceries", db.MustGet(testutil.DefaultAccount, "u1").Category)
	u2 := db.MustGet(testutil.DefaultAccount, "u2")
	assert.Equal(t, "Travel", u2.Category)
	assert.Equal(t, "fixed", u2.Notes)
	assert.Equal(t, "Gas", db.MustGet(testutil.DefaultAccount, "u3").Category)
}

func TestRun_AbortCommitsReviewedPrefix(t *testing.T) {
	db := seedRunDB(t)
	rec := &fakeReconciler{reviewed: 1}

	summary, err := Run(context.Background(), db.Storage, rec, runOptions())
	require.NoError(t, err)
	assert.True(t, summary.Result.Aborted)
	assert.Equal(t, 1, summary.Committed)

	assert.Equal(t, "Groceries", db.MustGet(testutil.DefaultAccount, "u1").Category)
	assert.Equal(t, model.UnknownCategory, db.MustGet(testutil.DefaultAccount, "u2").Category)
	assert.Equal(t, model.UnknownCategory, db.MustGet(testutil.DefaultAccount, "u3").Category)
}

func TestRun_AbortCommitUnreviewed(t *testing.T) {
	db := seedRunDB(t)
	rec := &fakeReconciler{reviewed: 1}
	opts := runOptions()
	opts.CommitUnreviewed = true

	summary, err := Run(context.Background(), db.Storage, rec, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Committed)
	assert.Equal(t, "Gas", db.MustGet(testutil.DefaultAccount, "u3").Category)
}

func TestRun_CommitUnreviewedSkipsUnknownPredictions(t *testing.T) {
	// Gas is learned from history but missing from the category list.
	db := seedRunDBWithCategories(t, "Groceries", "Travel")
	rec := &fakeReconciler{reviewed: 1}
	opts := runOptions()
	opts.CommitUnreviewed = true

	summary, err := Run(context.Background(), db.Storage, rec, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Groceries", "Gas", "Gas"}, rec.predictions)
	assert.Equal(t, 1, summary.Committed)

	assert.Equal(t, "Groceries", db.MustGet(testutil.DefaultAccount, "u1").Category)
	assert.Equal(t, model.UnknownCategory, db.MustGet(testutil.DefaultAccount, "u2").Category)
	assert.Equal(t, model.UnknownCategory, db.MustGet(testutil.DefaultAccount, "u3").Category)
}

func TestRun_NoWork(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.BasicCategories...)
	db.SeedTransactions(testutil.NewTransaction("a").WithCategory("Gas").Build())
	rec := &fakeReconciler{}

	_, err := Run(context.Background(), db.Storage, rec, runOptions())
	assert.ErrorIs(t, err, common.ErrNoWork)
	assert.False(t, common.IsFatal(err))
	assert.Zero(t, rec.calls)
}

func TestRun_NoCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	_, err := Run(context.Background(), db.Storage, &fakeReconciler{}, runOptions())
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestRun_EmptyTrainingSet(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.BasicCategories...)
	db.SeedTransactions(testutil.NewTransaction("u1").Build())

	_, err := Run(context.Background(), db.Storage, &fakeReconciler{}, runOptions())
	assert.ErrorIs(t, err, common.ErrEmptyTrainingSet)
}

func TestRun_ReviewErrorWritesNothing(t *testing.T) {
	db := seedRunDB(t)
	rec := &fakeReconciler{err: errors.New("input terminated")}

	_, err := Run(context.Background(), db.Storage, rec, runOptions())
	require.Error(t, err)

	unlabeled, err := db.Storage.ListUnlabeled(context.Background(), testutil.DefaultAccount)
	require.NoError(t, err)
	assert.Len(t, unlabeled, 3)
}

func TestRun_WithSession(t *testing.T) {
	db := seedRunDB(t)
	prompter := &scriptedPrompter{answers: []string{"", "", "Travel", "note", "q"}}

	summary, err := Run(context.Background(), db.Storage, reconcile.NewSession(prompter), runOptions())
	require.NoError(t, err)
	assert.True(t, summary.Result.Aborted)
	assert.Equal(t, 2, summary.Committed)

	assert.Equal(t, "Groceries", db.MustGet(testutil.DefaultAccount, "u1").Category)
	u2 := db.MustGet(testutil.DefaultAccount, "u2")
	assert.Equal(t, "Travel", u2.Category)
	assert.Equal(t, "note", u2.Notes)
	assert.Equal(t, model.UnknownCategory, db.MustGet(testutil.DefaultAccount, "u3").Category)
}

// scriptedPrompter answers category and note prompts from a fixed script.
type scriptedPrompter struct {
	answers []string
}

func (p *scriptedPrompter) ShowTransaction(context.Context, int, int, model.Transaction, string) error {
	return nil
}

func (p *scriptedPrompter) AskCategory(context.Context) (string, error) { return p.next() }
func (p *scriptedPrompter) AskNote(context.Context) (string, error)     { return p.next() }

func (p *scriptedPrompter) ShowInvalid(context.Context, string, error) error { return nil }

func (p *scriptedPrompter) next() (string, error) {
	if len(p.answers) == 0 {
		return "", errors.New("script exhausted")
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}
