// Package events implements the session-scheduling core: the Event model,
// the participant visibility policy, the orchestrating Service and the board
// publisher.
package events

import (
	"slices"
	"time"
)

// Event is one planned tabletop session inside a guild.
type Event struct {
	ID      string
	GuildID string

	// ScheduledAt is the session start as a UTC instant; nil means the
	// date has not been decided yet.
	ScheduledAt *time.Time

	ScenarioName string
	SystemName   string
	Gamemaster   string

	// CreatedBy never changes, even if the creator leaves the event.
	CreatedBy    string
	Participants []string

	// Notified flips to true exactly once, when the due-time announcement
	// has been sent.
	Notified bool

	// RoomID is the private channel provisioned at creation.
	RoomID string
}

// HasParticipant reports whether the user is currently joined.
func (e *Event) HasParticipant(userID string) bool {
	return slices.Contains(e.Participants, userID)
}

// AddParticipant joins the user, reporting whether the set changed.
func (e *Event) AddParticipant(userID string) bool {
	if e.HasParticipant(userID) {
		return false
	}
	e.Participants = append(e.Participants, userID)
	return true
}

// RemoveParticipant removes the user, reporting whether the set changed.
func (e *Event) RemoveParticipant(userID string) bool {
	before := len(e.Participants)
	e.Participants = slices.DeleteFunc(e.Participants, func(id string) bool {
		return id == userID
	})
	return len(e.Participants) != before
}

// Clone returns a deep copy; repository snapshots hand out clones so callers
// can mutate freely.
func (e Event) Clone() Event {
	out := e
	out.Participants = slices.Clone(e.Participants)
	if e.ScheduledAt != nil {
		at := *e.ScheduledAt
		out.ScheduledAt = &at
	}
	return out
}

// GuildConfig is the per-guild admin configuration. Empty fields mean "not
// set".
type GuildConfig struct {
	// NotificationChannelID receives creation and due-time announcements.
	NotificationChannelID string
	// CategoryID parents provisioned session rooms.
	CategoryID string
	// BoardChannelID hosts the maintained session board message.
	BoardChannelID string
}

// ConfigPatch merges over an existing GuildConfig: nil leaves a field
// untouched, a pointer to the empty string clears it.
type ConfigPatch struct {
	NotificationChannelID *string
	CategoryID            *string
	BoardChannelID        *string
}

// Apply returns the config with the patch merged in.
func (c GuildConfig) Apply(p ConfigPatch) GuildConfig {
	if p.NotificationChannelID != nil {
		c.NotificationChannelID = *p.NotificationChannelID
	}
	if p.CategoryID != nil {
		c.CategoryID = *p.CategoryID
	}
	if p.BoardChannelID != nil {
		c.BoardChannelID = *p.BoardChannelID
	}
	return c
}

// ResetPatch clears every configured field.
func ResetPatch() ConfigPatch {
	empty := ""
	return ConfigPatch{
		NotificationChannelID: &empty,
		CategoryID:            &empty,
		BoardChannelID:        &empty,
	}
}

// BoardState locates the guild's single live board message. MessageID is
// empty until the first publish.
type BoardState struct {
	ChannelID string
	MessageID string
}
