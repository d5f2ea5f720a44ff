package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWhenEmpty(t *testing.T) {
	at, err := ParseWhen("", time.UTC)
	require.NoError(t, err)
	assert.Nil(t, at)

	at, err = ParseWhen("   ", time.UTC)
	require.NoError(t, err)
	assert.Nil(t, at)
}

func TestParseWhenCanonicalLayout(t *testing.T) {
	jst, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	at, err := ParseWhen("2025-03-01 21:00", jst)
	require.NoError(t, err)
	require.NotNil(t, at)

	// 21:00 JST is 12:00 UTC; stored instants are always UTC.
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), *at)
	assert.Equal(t, time.UTC, at.Location())
}

func TestParseWhenLenientFallback(t *testing.T) {
	at, err := ParseWhen("2025/03/01 21:00", time.UTC)
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.Equal(t, time.Date(2025, 3, 1, 21, 0, 0, 0, time.UTC), *at)
}

func TestParseWhenUnrecognized(t *testing.T) {
	_, err := ParseWhen("???", time.UTC)
	require.Error(t, err)

	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "when", verr.Field)
}
