package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("approve: %w", StateConflict("adoption cannot be approved", map[string]any{"currentStatus": "APPROVED"}))

	require.ErrorIs(t, err, ErrStateConflict)
	require.NotErrorIs(t, err, ErrNotFound)

	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindStateConflict, kind)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrValidation, cause)

	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "boom")
}

func TestResponseCodeDefaultsToKind(t *testing.T) {
	require.Equal(t, "NOT_FOUND_X", NotFound("x", 1).WithCode("NOT_FOUND_X").ResponseCode())
	require.Equal(t, string(KindNotFound), NotFound("x", 1).ResponseCode())
	require.Equal(t, "TOKEN_EXPIRED", Unauthorized("TOKEN_EXPIRED", "expired").ResponseCode())
}

func TestKindOfPlainError(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	require.False(t, ok)
}
