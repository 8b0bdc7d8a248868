package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_KindFollowsCode(t *testing.T) {
	err := New(CodeSeatUnavailable, "seat %s is taken", "A2")

	assert.Equal(t, KindConflict, err.Kind)
	assert.Equal(t, "seat A2 is taken", err.Error())
	assert.True(t, errors.Is(err, ErrSeatUnavailable))
	assert.False(t, errors.Is(err, ErrInvalidSelection))
}

func TestIs_ThroughWrapping(t *testing.T) {
	base := New(CodeBookingExpired, "booking bk-1 expired")
	wrapped := fmt.Errorf("confirm payment: %w", base)

	assert.True(t, errors.Is(wrapped, ErrBookingExpired))
	assert.Equal(t, KindState, KindOf(wrapped))
	assert.Equal(t, CodeBookingExpired, CodeOf(wrapped))
}

func TestKindOf_PlainError(t *testing.T) {
	err := errors.New("connection refused")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("duplicate seat A1")
	err := Wrap(CodeInvalidSelection, cause, "invalid layout")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "invalid layout: duplicate seat A1", err.Error())
}
