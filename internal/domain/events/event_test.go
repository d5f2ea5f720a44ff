package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParticipantSet(t *testing.T) {
	ev := Event{}

	assert.True(t, ev.AddParticipant("alice"))
	assert.False(t, ev.AddParticipant("alice"))
	assert.True(t, ev.HasParticipant("alice"))

	assert.True(t, ev.RemoveParticipant("alice"))
	assert.False(t, ev.RemoveParticipant("alice"))
	assert.False(t, ev.HasParticipant("alice"))
}

func TestCloneIsDeep(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ev := Event{ScheduledAt: &at, Participants: []string{"alice"}}

	c := ev.Clone()
	c.Participants[0] = "mallory"
	*c.ScheduledAt = c.ScheduledAt.Add(time.Hour)

	assert.Equal(t, []string{"alice"}, ev.Participants)
	assert.True(t, ev.ScheduledAt.Equal(at))
}

func TestConfigPatchApply(t *testing.T) {
	cat := "cat1"
	empty := ""
	cfg := GuildConfig{NotificationChannelID: "ch1", BoardChannelID: "ch2"}

	merged := cfg.Apply(ConfigPatch{CategoryID: &cat, BoardChannelID: &empty})
	assert.Equal(t, "ch1", merged.NotificationChannelID, "nil field stays untouched")
	assert.Equal(t, "cat1", merged.CategoryID)
	assert.Empty(t, merged.BoardChannelID, "empty pointer clears")
}
