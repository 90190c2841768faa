package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorizer_Fit(t *testing.T) {
	v := NewVectorizer()
	v.Fit([]string{"shell oil", "whole foods market", "shell gas"})

	assert.Equal(t, []string{"foods", "gas", "market", "oil", "shell", "whole"}, v.Terms())
	assert.Equal(t, 6, v.Dimensions())

	// "shell" appears in two of three documents.
	shell := v.idf[v.vocabulary["shell"]]
	assert.InDelta(t, math.Log(4.0/3.0)+1, shell, 1e-12)
	oil := v.idf[v.vocabulary["oil"]]
	assert.InDelta(t, math.Log(2.0)+1, oil, 1e-12)
}

func TestVectorizer_Transform(t *testing.T) {
	v := NewVectorizer()
	rows, err := v.FitTransform([]string{"shell oil", "whole foods market", "shell gas"})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for i, row := range rows {
		var norm float64
		for _, x := range row {
			norm += x * x
		}
		assert.InDelta(t, 1.0, norm, 1e-9, "row %d is not unit length", i)
	}

	// Rarer terms weigh more within a document.
	assert.Greater(t, rows[0][v.vocabulary["oil"]], rows[0][v.vocabulary["shell"]])
}

func TestVectorizer_OutOfVocabulary(t *testing.T) {
	v := NewVectorizer()
	v.Fit([]string{"shell oil", "netflix"})

	rows, err := v.Transform([]string{"spotify premium", "", "netflix spotify"})
	require.NoError(t, err)

	for _, x := range rows[0] {
		assert.Zero(t, x)
	}
	for _, x := range rows[1] {
		assert.Zero(t, x)
	}
	assert.InDelta(t, 1.0, rows[2][v.vocabulary["netflix"]], 1e-12)
}

func TestVectorizer_ShortTokensIgnored(t *testing.T) {
	v := NewVectorizer()
	v.Fit([]string{"a bb ccc"})
	assert.Equal(t, []string{"bb", "ccc"}, v.Terms())
}

func TestVectorizer_NotFitted(t *testing.T) {
	_, err := NewVectorizer().Transform([]string{"shell"})
	assert.ErrorIs(t, err, ErrNotFitted)

	var nilVectorizer *Vectorizer
	assert.False(t, nilVectorizer.Fitted())
}
