// Package reconcile implements the human-in-the-loop review of predicted
// categories: confirm, override from the category list, add a note, or stop.
package reconcile

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/spice-autocategorize/internal/common"
	"github.com/Veraticus/spice-autocategorize/internal/model"
)

// AbortToken ends the review early when entered at the category prompt.
const AbortToken = "q"

// ErrInvalidTransition is returned when an event does not apply to the
// current phase.
var ErrInvalidTransition = errors.New("invalid reconciliation transition")

// Phase is where the review of a record currently stands.
type Phase int

// Review phases.
const (
	Presenting Phase = iota
	AwaitingCategory
	AwaitingNote
	Advancing
	Done
	Aborted
)

func (p Phase) String() string {
	switch p {
	case Presenting:
		return "presenting"
	case AwaitingCategory:
		return "awaiting-category"
	case AwaitingNote:
		return "awaiting-note"
	case Advancing:
		return "advancing"
	case Done:
		return "done"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return p == Done || p == Aborted
}

// Decision is the reviewed outcome for one record.
type Decision struct {
	Category string
	Note     string
}

// State is an immutable snapshot of a review. Transitions return a new State
// and never modify the one they were given.
type State struct {
	// Pending is the category chosen for record Index while its note is awaited.
	Pending   string
	Decisions []Decision
	Phase     Phase
	Index     int
}

// Machine holds the inputs that do not change during a review: the
// predictions and the category vocabulary.
type Machine struct {
	vocabulary  model.Vocabulary
	predictions []string
}

// NewMachine returns a machine for the given predictions. The slice is copied.
func NewMachine(predictions []string, vocabulary model.Vocabulary) *Machine {
	return &Machine{
		predictions: slices.Clone(predictions),
		vocabulary:  vocabulary,
	}
}

// Len returns the number of records under review.
func (m *Machine) Len() int {
	return len(m.predictions)
}

// Prediction returns the predicted category for record i.
func (m *Machine) Prediction(i int) string {
	return m.predictions[i]
}

// Start returns the initial state. An empty batch is Done immediately.
func (m *Machine) Start() State {
	if len(m.predictions) == 0 {
		return State{Phase: Done}
	}
	return State{Phase: Presenting}
}

// Present moves from showing record i to waiting for its category.
func (m *Machine) Present(s State) (State, error) {
	if s.Phase != Presenting {
		return s, transitionError("present", s)
	}
	s.Phase = AwaitingCategory
	return s, nil
}

// Category applies the user's answer at the category prompt. Empty input
// keeps the prediction, AbortToken stops the review, and any other input must
// name a category from the vocabulary. Rejected input returns the unchanged
// state with an error wrapping common.ErrValidation.
func (m *Machine) Category(s State, input string) (State, error) {
	if s.Phase != AwaitingCategory {
		return s, transitionError("category", s)
	}

	input = strings.TrimSpace(input)
	switch {
	case input == AbortToken:
		s.Phase = Aborted
		s.Pending = ""
		return s, nil
	case input == "":
		predicted := m.predictions[s.Index]
		if !m.vocabulary.Contains(predicted) {
			return s, fmt.Errorf("%w: predicted category %q is not in the category list, type a category",
				common.ErrValidation, predicted)
		}
		s.Pending = predicted
	case m.vocabulary.Contains(input):
		s.Pending = input
	default:
		return s, fmt.Errorf("%w: %q is not in the category list", common.ErrValidation, input)
	}

	s.Phase = AwaitingNote
	return s, nil
}

// Note records the note for the current record verbatim; empty means none.
func (m *Machine) Note(s State, input string) (State, error) {
	if s.Phase != AwaitingNote {
		return s, transitionError("note", s)
	}
	// Clip forces append to copy so earlier states keep their own decisions.
	s.Decisions = append(slices.Clip(s.Decisions), Decision{Category: s.Pending, Note: input})
	s.Pending = ""
	s.Phase = Advancing
	return s, nil
}

// Advance moves to the next record, or to Done after the last one.
func (m *Machine) Advance(s State) (State, error) {
	if s.Phase != Advancing {
		return s, transitionError("advance", s)
	}
	if s.Index >= len(m.predictions)-1 {
		s.Phase = Done
		return s, nil
	}
	s.Index++
	s.Phase = Presenting
	return s, nil
}

// Result is the outcome of a review, aligned with the reviewed records.
type Result struct {
	Categories []string
	Notes      []string
	// Reviewed counts the leading records the user answered for.
	Reviewed int
	// Overridden counts reviewed records whose category differs from the prediction.
	Overridden int
	Aborted    bool
}

// Outcome builds full-length category and note slices from s. Records the
// user never reached keep their predicted category and an empty note.
func (m *Machine) Outcome(s State) Result {
	r := Result{
		Categories: slices.Clone(m.predictions),
		Notes:      make([]string, len(m.predictions)),
		Reviewed:   len(s.Decisions),
		Aborted:    s.Phase == Aborted,
	}
	if r.Categories == nil {
		r.Categories = []string{}
	}
	for i, d := range s.Decisions {
		if d.Category != m.predictions[i] {
			r.Overridden++
		}
		r.Categories[i] = d.Category
		r.Notes[i] = d.Note
	}
	return r
}

func transitionError(event string, s State) error {
	return fmt.Errorf("%w: %s in phase %s at record %d", ErrInvalidTransition, event, s.Phase, s.Index)
}
