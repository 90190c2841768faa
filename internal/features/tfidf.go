// Package features turns normalized descriptions into TF-IDF vectors and
// category names into dense class ids.
package features

import (
	"errors"
	"math"
	"regexp"
	"sort"
)

// ErrNotFitted is returned when an encoder is used before Fit.
var ErrNotFitted = errors.New("encoder has not been fitted")

// tokenPattern matches runs of two or more word runes.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vectorizer is a TF-IDF document-term encoder. The vocabulary and idf
// weights are fixed by Fit; Transform never changes them.
type Vectorizer struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
}

// NewVectorizer returns an unfitted vectorizer.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{}
}

// Fit learns the vocabulary and smoothed inverse document frequencies of docs.
// idf(t) = ln((1+n)/(1+df(t))) + 1.
func (v *Vectorizer) Fit(docs []string) {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.terms = terms
	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
}

// Fitted reports whether Fit has been called.
func (v *Vectorizer) Fitted() bool {
	return v != nil && v.vocabulary != nil
}

// Dimensions returns the number of features, i.e. the vocabulary size.
func (v *Vectorizer) Dimensions() int {
	return len(v.terms)
}

// Terms returns the vocabulary in feature order.
func (v *Vectorizer) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Transform encodes each document as an L2-normalized TF-IDF row.
// Tokens outside the fitted vocabulary are ignored; a document with no known
// tokens becomes the zero vector.
func (v *Vectorizer) Transform(docs []string) ([][]float64, error) {
	if !v.Fitted() {
		return nil, ErrNotFitted
	}

	rows := make([][]float64, len(docs))
	for i, doc := range docs {
		row := make([]float64, len(v.terms))
		for _, tok := range tokenize(doc) {
			if j, ok := v.vocabulary[tok]; ok {
				row[j]++
			}
		}

		var norm float64
		for j, tf := range row {
			if tf == 0 {
				continue
			}
			row[j] = tf * v.idf[j]
			norm += row[j] * row[j]
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}
		rows[i] = row
	}

	return rows, nil
}

// FitTransform is Fit followed by Transform on the same documents.
func (v *Vectorizer) FitTransform(docs []string) ([][]float64, error) {
	v.Fit(docs)
	return v.Transform(docs)
}

func tokenize(doc string) []string {
	return tokenPattern.FindAllString(doc, -1)
}
