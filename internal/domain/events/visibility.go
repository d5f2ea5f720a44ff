package events

import "time"

// Visibility is what a viewer may learn about an event's participants.
type Visibility string

const (
	// VisibilityNone: the viewer is told only that participant
	// information is private.
	VisibilityNone Visibility = "none"
	// VisibilityCountOnly: headcount without identities. Creators keep
	// this even after leaving, so they can plan attendance.
	VisibilityCountOnly Visibility = "count_only"
	// VisibilityFull: the participant list itself.
	VisibilityFull Visibility = "full"
)

// VisibilityFor computes the viewer's tier for an event. Participants see
// each other; a non-participating creator sees the headcount; everyone else
// sees nothing.
func VisibilityFor(e Event, viewerID string) Visibility {
	if e.HasParticipant(viewerID) {
		return VisibilityFull
	}
	if e.CreatedBy == viewerID {
		return VisibilityCountOnly
	}
	return VisibilityNone
}

// View is the visibility-gated projection of an event returned to callers.
// Participants and ParticipantCount are populated only as the tier allows;
// a None or CountOnly view never carries identities.
type View struct {
	ID           string
	GuildID      string
	ScheduledAt  *time.Time
	ScenarioName string
	SystemName   string
	Gamemaster   string
	CreatedBy    string
	Notified     bool
	RoomID       string

	Visibility       Visibility
	ParticipantCount int
	Participants     []string
}

// NewView projects an event for a viewer, applying the visibility policy.
func NewView(e Event, viewerID string) View {
	e = e.Clone()
	v := View{
		ID:           e.ID,
		GuildID:      e.GuildID,
		ScheduledAt:  e.ScheduledAt,
		ScenarioName: e.ScenarioName,
		SystemName:   e.SystemName,
		Gamemaster:   e.Gamemaster,
		CreatedBy:    e.CreatedBy,
		Notified:     e.Notified,
		RoomID:       e.RoomID,
		Visibility:   VisibilityFor(e, viewerID),
	}
	switch v.Visibility {
	case VisibilityFull:
		v.ParticipantCount = len(e.Participants)
		v.Participants = e.Participants
	case VisibilityCountOnly:
		v.ParticipantCount = len(e.Participants)
	}
	return v
}
