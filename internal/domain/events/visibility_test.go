package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibilityFor(t *testing.T) {
	ev := Event{
		ID:           "ev1",
		CreatedBy:    "creator",
		Participants: []string{"creator", "alice"},
	}

	assert.Equal(t, VisibilityFull, VisibilityFor(ev, "creator"))
	assert.Equal(t, VisibilityFull, VisibilityFor(ev, "alice"))
	assert.Equal(t, VisibilityNone, VisibilityFor(ev, "stranger"))
}

func TestVisibilityForCreatorAfterLeaving(t *testing.T) {
	ev := Event{
		ID:           "ev1",
		CreatedBy:    "creator",
		Participants: []string{"creator", "alice"},
	}
	require.True(t, ev.RemoveParticipant("creator"))

	// The creator dropped to count-only; the remaining participant still
	// sees the full list.
	assert.Equal(t, VisibilityCountOnly, VisibilityFor(ev, "creator"))
	assert.Equal(t, VisibilityFull, VisibilityFor(ev, "alice"))
	assert.Equal(t, VisibilityNone, VisibilityFor(ev, "stranger"))
}

func TestNewViewGatesParticipantData(t *testing.T) {
	ev := Event{
		ID:           "ev1",
		GuildID:      "g1",
		ScenarioName: "Curse of Strahd",
		CreatedBy:    "creator",
		Participants: []string{"alice", "bob"},
	}

	full := NewView(ev, "alice")
	assert.Equal(t, VisibilityFull, full.Visibility)
	assert.Equal(t, 2, full.ParticipantCount)
	assert.Equal(t, []string{"alice", "bob"}, full.Participants)

	countOnly := NewView(ev, "creator")
	assert.Equal(t, VisibilityCountOnly, countOnly.Visibility)
	assert.Equal(t, 2, countOnly.ParticipantCount)
	assert.Nil(t, countOnly.Participants, "count-only view must not carry identities")

	none := NewView(ev, "stranger")
	assert.Equal(t, VisibilityNone, none.Visibility)
	assert.Zero(t, none.ParticipantCount)
	assert.Nil(t, none.Participants)

	// Non-participant fields stay readable in every tier.
	assert.Equal(t, "Curse of Strahd", none.ScenarioName)
}

func TestNewViewIsolatedFromSource(t *testing.T) {
	ev := Event{
		ID:           "ev1",
		CreatedBy:    "creator",
		Participants: []string{"alice"},
	}
	v := NewView(ev, "alice")
	v.Participants[0] = "mallory"
	assert.Equal(t, []string{"alice"}, ev.Participants)
}
