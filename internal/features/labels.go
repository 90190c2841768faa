package features

import (
	"fmt"
	"sort"
)

// LabelEncoder maps category names to dense class ids in sorted order.
type LabelEncoder struct {
	ids     map[string]int
	classes []string
}

// NewLabelEncoder returns an unfitted label encoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// Fit learns the distinct labels.
func (e *LabelEncoder) Fit(labels []string) {
	ids := make(map[string]int)
	for _, l := range labels {
		ids[l] = 0
	}

	classes := make([]string, 0, len(ids))
	for l := range ids {
		classes = append(classes, l)
	}
	sort.Strings(classes)

	for i, l := range classes {
		ids[l] = i
	}
	e.ids = ids
	e.classes = classes
}

// Fitted reports whether Fit has been called.
func (e *LabelEncoder) Fitted() bool {
	return e != nil && e.ids != nil
}

// Classes returns the labels in id order.
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// NumClasses returns the number of distinct labels.
func (e *LabelEncoder) NumClasses() int {
	return len(e.classes)
}

// Encode maps labels to ids.
func (e *LabelEncoder) Encode(labels []string) ([]int, error) {
	if !e.Fitted() {
		return nil, ErrNotFitted
	}
	out := make([]int, len(labels))
	for i, l := range labels {
		id, ok := e.ids[l]
		if !ok {
			return nil, fmt.Errorf("unknown label %q", l)
		}
		out[i] = id
	}
	return out, nil
}

// Decode maps ids back to labels.
func (e *LabelEncoder) Decode(ids []int) ([]string, error) {
	if !e.Fitted() {
		return nil, ErrNotFitted
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		if id < 0 || id >= len(e.classes) {
			return nil, fmt.Errorf("unknown class id %d", id)
		}
		out[i] = e.classes[id]
	}
	return out, nil
}
