// Package forest implements a bootstrap-aggregated ensemble of CART decision
// trees for dense feature vectors.
package forest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// MinTrees is the smallest ensemble Train will build.
const MinTrees = 100

// Errors returned by Train.
var (
	ErrNoSamples      = errors.New("no training samples")
	ErrShapeMismatch  = errors.New("feature rows and labels differ in length")
	ErrInvalidClassID = errors.New("class id out of range")
)

// Options tunes training.
type Options struct {
	// Trees is the ensemble size; values below MinTrees are raised to it.
	Trees int
	// Workers bounds how many trees are built at once. Defaults to GOMAXPROCS.
	Workers int
	// MaxDepth limits tree depth; 0 grows until leaves are pure.
	MaxDepth int
	// MinSamplesSplit is the smallest node that may be split. Defaults to 2.
	MinSamplesSplit int
	// Seed makes training reproducible.
	Seed uint64
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Trees:           MinTrees,
		Workers:         runtime.GOMAXPROCS(0),
		MinSamplesSplit: 2,
	}
}

func (o Options) withDefaults() Options {
	if o.Trees < MinTrees {
		o.Trees = MinTrees
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.MinSamplesSplit < 2 {
		o.MinSamplesSplit = 2
	}
	return o
}

// Forest is a trained ensemble. It is immutable and safe for concurrent
// prediction.
type Forest struct {
	trees      []*tree
	numClasses int
	features   int
	// constant is the only class seen in training, or -1.
	constant int
}

// Train fits a forest on rows x with class ids y in [0, numClasses).
//
// Each tree draws its bootstrap sample and feature order from its own
// generator seeded with (opts.Seed, tree index), so the trained forest does
// not depend on how trees are scheduled across workers.
func Train(ctx context.Context, x [][]float64, y []int, numClasses int, opts Options) (*Forest, error) {
	if len(x) == 0 {
		return nil, ErrNoSamples
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d labels", ErrShapeMismatch, len(x), len(y))
	}
	for i, c := range y {
		if c < 0 || c >= numClasses {
			return nil, fmt.Errorf("%w: label %d at row %d", ErrInvalidClassID, c, i)
		}
	}

	opts = opts.withDefaults()
	f := &Forest{
		numClasses: numClasses,
		features:   len(x[0]),
		constant:   -1,
	}

	if c, ok := singleClass(y); ok {
		f.constant = c
		slog.Debug("Training set has a single class, using constant predictor", "class", c)
		return f, nil
	}

	start := time.Now()
	f.trees = make([]*tree, opts.Trees)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range f.trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(opts.Seed, uint64(i)))
			f.trees[i] = newTreeBuilder(x, y, numClasses, opts, rng).build()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to train forest: %w", err)
	}

	slog.Debug("Trained forest",
		"trees", len(f.trees),
		"samples", len(x),
		"features", f.features,
		"classes", numClasses,
		"duration", time.Since(start))

	return f, nil
}

// Votes returns how many trees voted for each class. A constant predictor
// casts a single vote.
func (f *Forest) Votes(x []float64) []int {
	votes := make([]int, f.numClasses)
	if f.constant >= 0 {
		votes[f.constant] = 1
		return votes
	}
	for _, t := range f.trees {
		votes[t.predict(x)]++
	}
	return votes
}

// Predict returns the majority class for x. Ties go to the lowest class id.
func (f *Forest) Predict(x []float64) int {
	if f.constant >= 0 {
		return f.constant
	}
	return argmax(f.Votes(x))
}

// PredictBatch predicts every row of xs.
func (f *Forest) PredictBatch(xs [][]float64) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = f.Predict(x)
	}
	return out
}

// NumTrees returns the ensemble size; 0 for a constant predictor.
func (f *Forest) NumTrees() int {
	return len(f.trees)
}

// NumClasses returns the number of classes the forest was trained with.
func (f *Forest) NumClasses() int {
	return f.numClasses
}

func singleClass(y []int) (int, bool) {
	for _, c := range y[1:] {
		if c != y[0] {
			return 0, false
		}
	}
	return y[0], true
}
