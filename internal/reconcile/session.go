package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-autocategorize/internal/common"
	"github.com/Veraticus/spice-autocategorize/internal/model"
)

// Prompter is the interactive surface a Session talks to. Each Ask call
// blocks until the user answers.
type Prompter interface {
	ShowTransaction(ctx context.Context, index, total int, txn model.Transaction, predicted string) error
	AskCategory(ctx context.Context) (string, error)
	AskNote(ctx context.Context) (string, error)
	ShowInvalid(ctx context.Context, input string, err error) error
}

// Session runs a review of one batch through a Prompter.
type Session struct {
	prompter Prompter
}

// NewSession creates a session backed by prompter.
func NewSession(prompter Prompter) *Session {
	return &Session{prompter: prompter}
}

// Reconcile reviews records against their predicted categories and returns
// full-length results. Input errors and context cancellation abandon the
// review and return the error; nothing is half-applied because the result
// is only built at the end.
func (s *Session) Reconcile(ctx context.Context, records []model.Transaction, predictions []string, vocabulary model.Vocabulary) (Result, error) {
	if len(records) != len(predictions) {
		return Result{}, fmt.Errorf("%w: %d records but %d predictions",
			common.ErrContractViolation, len(records), len(predictions))
	}

	m := NewMachine(predictions, vocabulary)
	st := m.Start()

	for !st.Phase.Terminal() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		var err error
		switch st.Phase {
		case Presenting:
			if err = s.prompter.ShowTransaction(ctx, st.Index, m.Len(), records[st.Index], m.Prediction(st.Index)); err != nil {
				return Result{}, fmt.Errorf("failed to show transaction: %w", err)
			}
			st, err = m.Present(st)

		case AwaitingCategory:
			input, readErr := s.prompter.AskCategory(ctx)
			if readErr != nil {
				return Result{}, fmt.Errorf("failed to read category: %w", readErr)
			}
			next, catErr := m.Category(st, input)
			if errors.Is(catErr, common.ErrValidation) {
				if showErr := s.prompter.ShowInvalid(ctx, input, catErr); showErr != nil {
					return Result{}, fmt.Errorf("failed to show validation error: %w", showErr)
				}
				continue
			}
			st, err = next, catErr

		case AwaitingNote:
			note, readErr := s.prompter.AskNote(ctx)
			if readErr != nil {
				return Result{}, fmt.Errorf("failed to read note: %w", readErr)
			}
			st, err = m.Note(st, note)

		case Advancing:
			st, err = m.Advance(st)
		}

		if err != nil {
			return Result{}, err
		}
	}

	result := m.Outcome(st)
	slog.Debug("Reconciliation finished",
		"records", len(records),
		"reviewed", result.Reviewed,
		"overridden", result.Overridden,
		"aborted", result.Aborted)

	return result, nil
}
