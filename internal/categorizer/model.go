package categorizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-autocategorize/internal/common"
	"github.com/Veraticus/spice-autocategorize/internal/features"
	"github.com/Veraticus/spice-autocategorize/internal/forest"
	"github.com/Veraticus/spice-autocategorize/internal/model"
	"github.com/Veraticus/spice-autocategorize/internal/textnorm"
)

// Model bundles the fitted text encoder, label map and forest. It lives for
// one run and is never written to disk.
type Model struct {
	vectorizer *features.Vectorizer
	labels     *features.LabelEncoder
	forest     *forest.Forest
}

// Fit normalizes the example descriptions, fits the encoders and trains
// the forest.
func Fit(ctx context.Context, examples []model.TrainingExample, opts forest.Options) (*Model, error) {
	if len(examples) == 0 {
		return nil, common.ErrEmptyTrainingSet
	}

	start := time.Now()
	docs := make([]string, len(examples))
	categories := make([]string, len(examples))
	for i, ex := range examples {
		docs[i] = textnorm.Normalize(ex.Description)
		categories[i] = ex.Category
	}

	vectorizer := features.NewVectorizer()
	x, err := vectorizer.FitTransform(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode descriptions: %w", err)
	}

	labels := features.NewLabelEncoder()
	labels.Fit(categories)
	y, err := labels.Encode(categories)
	if err != nil {
		return nil, fmt.Errorf("failed to encode categories: %w", err)
	}

	f, err := forest.Train(ctx, x, y, labels.NumClasses(), opts)
	if err != nil {
		return nil, err
	}

	slog.Info("Trained classifier",
		"examples", len(examples),
		"terms", vectorizer.Dimensions(),
		"categories", labels.NumClasses(),
		"trees", f.NumTrees(),
		"duration", time.Since(start).Round(time.Millisecond))

	return &Model{
		vectorizer: vectorizer,
		labels:     labels,
		forest:     f,
	}, nil
}

// Predict returns one category per raw description.
func (m *Model) Predict(descriptions []string) ([]string, error) {
	if !m.ready() {
		return nil, common.ErrNotTrained
	}
	if len(descriptions) == 0 {
		return []string{}, nil
	}

	x, err := m.vectorizer.Transform(textnorm.NormalizeAll(descriptions))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrNotTrained, err)
	}

	ids := m.forest.PredictBatch(x)
	categories, err := m.labels.Decode(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to decode predictions: %w", err)
	}
	return categories, nil
}

// Classes returns the categories the model can predict.
func (m *Model) Classes() []string {
	if !m.ready() {
		return nil
	}
	return m.labels.Classes()
}

func (m *Model) ready() bool {
	return m != nil &&
		m.vectorizer != nil && m.vectorizer.Fitted() &&
		m.labels != nil && m.labels.Fitted() &&
		m.forest != nil
}
