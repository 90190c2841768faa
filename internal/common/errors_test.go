package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(ErrNoWork))
	assert.False(t, IsFatal(fmt.Errorf("account AmexBlueCash: %w", ErrNoWork)))
	assert.True(t, IsFatal(ErrValidation))
	assert.True(t, IsFatal(errors.New("disk full")))
}

func TestUserError(t *testing.T) {
	err := NewUserError("no categories defined", ErrConfiguration)

	assert.Equal(t, "no categories defined: configuration error", err.Error())
	assert.ErrorIs(t, err, ErrConfiguration)

	var userErr *UserError
	assert.True(t, errors.As(err, &userErr))
	assert.Equal(t, "no categories defined", userErr.UserMessage)

	bare := NewUserError("just a message", nil)
	assert.Equal(t, "just a message", bare.Error())
}

func TestErrUnknownAccountIsConfiguration(t *testing.T) {
	err := fmt.Errorf("%w %q", ErrUnknownAccount, "Nope")
	assert.ErrorIs(t, err, ErrUnknownAccount)
	assert.ErrorIs(t, err, ErrConfiguration)
}
