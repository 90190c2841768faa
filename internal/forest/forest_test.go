package forest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clusters returns three well separated groups in four dimensions.
func clusters() ([][]float64, []int) {
	x := [][]float64{
		{1, 0, 0, 0}, {0.9, 0.1, 0, 0}, {0.8, 0, 0.1, 0}, {1, 0, 0, 0.1},
		{0, 1, 0, 0}, {0.1, 0.9, 0, 0}, {0, 0.8, 0.1, 0}, {0, 1, 0, 0.1},
		{0, 0, 1, 0}, {0, 0.1, 0.9, 0}, {0.1, 0, 0.8, 0}, {0, 0, 1, 0.1},
	}
	y := []int{0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2}
	return x, y
}

func TestTrain_SeparableClusters(t *testing.T) {
	x, y := clusters()
	f, err := Train(context.Background(), x, y, 3, Options{Seed: 7})
	require.NoError(t, err)

	assert.Equal(t, MinTrees, f.NumTrees())
	assert.Equal(t, 3, f.NumClasses())
	assert.Equal(t, y, f.PredictBatch(x))

	assert.Equal(t, 0, f.Predict([]float64{0.95, 0, 0, 0}))
	assert.Equal(t, 1, f.Predict([]float64{0, 0.95, 0, 0}))
	assert.Equal(t, 2, f.Predict([]float64{0, 0, 0.95, 0}))
}

func TestTrain_TreeFloor(t *testing.T) {
	x, y := clusters()
	f, err := Train(context.Background(), x, y, 3, Options{Trees: 5})
	require.NoError(t, err)
	assert.Equal(t, MinTrees, f.NumTrees())

	f, err = Train(context.Background(), x, y, 3, Options{Trees: 150})
	require.NoError(t, err)
	assert.Equal(t, 150, f.NumTrees())
}

func TestTrain_IndependentOfWorkers(t *testing.T) {
	x, y := clusters()
	probes := [][]float64{
		{0.5, 0.5, 0, 0},
		{0.3, 0.3, 0.3, 0},
		{0, 0, 0, 1},
		{0, 0, 0, 0},
	}

	serial, err := Train(context.Background(), x, y, 3, Options{Seed: 42, Workers: 1})
	require.NoError(t, err)
	parallel, err := Train(context.Background(), x, y, 3, Options{Seed: 42, Workers: 8})
	require.NoError(t, err)

	for _, p := range probes {
		assert.Equal(t, serial.Votes(p), parallel.Votes(p))
	}
}

func TestPredict_Stable(t *testing.T) {
	x, y := clusters()
	f, err := Train(context.Background(), x, y, 3, Options{Seed: 1})
	require.NoError(t, err)

	ambiguous := []float64{0.5, 0.5, 0.5, 0}
	first := f.Predict(ambiguous)
	for range 20 {
		assert.Equal(t, first, f.Predict(ambiguous))
	}
}

func TestTrain_SingleClass(t *testing.T) {
	x := [][]float64{{1, 0}, {0, 1}, {0.5, 0.5}}
	y := []int{0, 0, 0}

	f, err := Train(context.Background(), x, y, 1, Options{})
	require.NoError(t, err)

	assert.Equal(t, 0, f.NumTrees())
	assert.Equal(t, 0, f.Predict([]float64{9, 9}))
	assert.Equal(t, 0, f.Predict(nil))
	assert.Equal(t, []int{1}, f.Votes([]float64{0, 0}))
}

func TestTrain_ZeroFeatures(t *testing.T) {
	x := [][]float64{{}, {}, {}}
	y := []int{0, 1, 1}

	f, err := Train(context.Background(), x, y, 2, Options{Seed: 3})
	require.NoError(t, err)

	votes := f.Votes([]float64{})
	assert.Equal(t, f.NumTrees(), votes[0]+votes[1])
}

func TestTrain_Errors(t *testing.T) {
	_, err := Train(context.Background(), nil, nil, 2, Options{})
	assert.ErrorIs(t, err, ErrNoSamples)

	_, err = Train(context.Background(), [][]float64{{1}}, []int{0, 1}, 2, Options{})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = Train(context.Background(), [][]float64{{1}}, []int{2}, 2, Options{})
	assert.ErrorIs(t, err, ErrInvalidClassID)
}

func TestTrain_Canceled(t *testing.T) {
	x, y := clusters()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Train(ctx, x, y, 3, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestArgmax_TiesGoLow(t *testing.T) {
	assert.Equal(t, 0, argmax([]int{3, 3, 1}))
	assert.Equal(t, 1, argmax([]int{1, 4, 4}))
	assert.Equal(t, 0, argmax([]int{0, 0}))
}
