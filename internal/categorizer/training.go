// Package categorizer trains a classifier on labeled transactions, predicts
// categories for unlabeled ones and commits the reviewed result.
package categorizer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/spice-autocategorize/internal/common"
	"github.com/Veraticus/spice-autocategorize/internal/model"
)

// Training file column headers, matched case-insensitively.
const (
	descriptionColumn = "description"
	categoryColumn    = "category"
)

// LabeledSource lists the already-categorized transactions of an account.
type LabeledSource interface {
	ListLabeled(ctx context.Context, account string) ([]model.Transaction, error)
}

// AssembleTrainingSet returns the examples to fit on. When trainingFile is
// set the examples come from that CSV file alone; otherwise they are the
// account's labeled transactions.
func AssembleTrainingSet(ctx context.Context, src LabeledSource, account, trainingFile string) ([]model.TrainingExample, error) {
	if trainingFile != "" {
		examples, err := ReadTrainingFile(trainingFile)
		if err != nil {
			return nil, err
		}
		slog.Info("Loaded training set", "source", trainingFile, "examples", len(examples))
		return examples, nil
	}

	labeled, err := src.ListLabeled(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to load labeled transactions: %w", err)
	}
	if len(labeled) == 0 {
		return nil, fmt.Errorf("%w: account %s has no categorized transactions, pass a training file", common.ErrEmptyTrainingSet, account)
	}

	examples := make([]model.TrainingExample, len(labeled))
	for i, txn := range labeled {
		examples[i] = model.TrainingExample{
			Description: txn.Description(),
			Category:    txn.Category,
		}
	}

	slog.Info("Loaded training set", "source", "database", "account", account, "examples", len(examples))
	return examples, nil
}

// ReadTrainingFile parses a CSV training file with Description and Category
// columns. Every problem with the file is a configuration error.
func ReadTrainingFile(path string) ([]model.TrainingExample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open training file: %w", common.ErrConfiguration, err)
	}
	defer func() { _ = f.Close() }()

	examples, err := parseTrainingCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%w: training file %s: %w", common.ErrConfiguration, path, err)
	}
	return examples, nil
}

func parseTrainingCSV(r io.Reader) ([]model.TrainingExample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	descIdx, catIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case descriptionColumn:
			descIdx = i
		case categoryColumn:
			catIdx = i
		}
	}
	if descIdx < 0 || catIdx < 0 {
		return nil, fmt.Errorf("header must contain Description and Category columns, got %q", header)
	}

	var examples []model.TrainingExample
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if descIdx >= len(record) || catIdx >= len(record) {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, max(descIdx, catIdx)+1, len(record))
		}

		category := strings.TrimSpace(record[catIdx])
		if category == "" {
			return nil, fmt.Errorf("line %d: empty category", line)
		}
		examples = append(examples, model.TrainingExample{
			Description: record[descIdx],
			Category:    category,
		})
	}

	if len(examples) == 0 {
		return nil, errors.New("no training rows")
	}
	return examples, nil
}
