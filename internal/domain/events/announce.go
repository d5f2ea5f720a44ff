package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/questboard/server/internal/chat"
)

func formatWhen(at *time.Time, zone *time.Location) string {
	if at == nil {
		return "TBD"
	}
	return at.In(zone).Format("2006-01-02 15:04 MST")
}

func gamemasterLine(ev Event) string {
	if ev.Gamemaster != "" {
		return ev.Gamemaster
	}
	return chat.Mention(ev.CreatedBy)
}

// RenderCreatedAnnouncement is the message posted to the notification
// channel when an event is created.
func RenderCreatedAnnouncement(ev Event, zone *time.Location) string {
	lines := []string{
		"✅ **Session scheduled**",
		"Date: " + formatWhen(ev.ScheduledAt, zone),
		"Scenario: " + ev.ScenarioName,
	}
	if ev.SystemName != "" {
		lines = append(lines, "System: "+ev.SystemName)
	}
	lines = append(lines, "GM: "+gamemasterLine(ev))
	if ev.RoomID != "" {
		lines = append(lines, "Room: "+chat.ChannelMention(ev.RoomID))
	}
	return strings.Join(lines, "\n")
}

// RenderDueAnnouncement is the one-time message posted when an event's
// scheduled time arrives.
func RenderDueAnnouncement(ev Event, zone *time.Location) string {
	lines := []string{
		"⏰ **Session time!**",
		"Date: " + formatWhen(ev.ScheduledAt, zone),
		"Scenario: " + ev.ScenarioName,
	}
	if ev.SystemName != "" {
		lines = append(lines, "System: "+ev.SystemName)
	}
	lines = append(lines, "GM: "+gamemasterLine(ev))
	return strings.Join(lines, "\n")
}

// RenderJoinNote is posted into the event's private room when someone joins.
func RenderJoinNote(userID string) string {
	return fmt.Sprintf("🙋 %s joined the session.", chat.Mention(userID))
}
