package model

// Vocabulary is the ordered set of valid category names.
type Vocabulary struct {
	index map[string]struct{}
	names []string
}

// NewVocabulary builds a vocabulary, dropping blanks and duplicates while
// preserving first-seen order.
func NewVocabulary(names []string) Vocabulary {
	v := Vocabulary{
		index: make(map[string]struct{}, len(names)),
		names: make([]string, 0, len(names)),
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := v.index[name]; ok {
			continue
		}
		v.index[name] = struct{}{}
		v.names = append(v.names, name)
	}
	return v
}

// Contains reports whether name is a valid category.
func (v Vocabulary) Contains(name string) bool {
	_, ok := v.index[name]
	return ok
}

// Names returns the categories in order. The slice is a copy.
func (v Vocabulary) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Len returns the number of categories.
func (v Vocabulary) Len() int {
	return len(v.names)
}
