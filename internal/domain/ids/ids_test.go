package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULID(t *testing.T) {
	id, err := NewULID()
	require.NoError(t, err)
	assert.Len(t, id, 26)
	require.NoError(t, ValidateULID(id))
}

func TestNewULID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id, err := NewULID()
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestValidateULID_Invalid(t *testing.T) {
	require.ErrorIs(t, ValidateULID("not-a-ulid"), ErrInvalidULID)
	require.ErrorIs(t, ValidateULID(""), ErrInvalidULID)
	require.ErrorIs(t, ValidateULID("01ARZ3NDEKTSV4RRFFQ69G5FA"), ErrInvalidULID) // 25 chars
}
