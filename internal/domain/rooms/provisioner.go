// Package rooms provisions the private discussion channel created for each
// event and manages per-participant access to it.
package rooms

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/questboard/server/internal/chat"
)

// Mode selects the provisioning layout for a new event's room.
type Mode string

const (
	// ModeSingleChannel creates one private text channel under the
	// guild's configured event category.
	ModeSingleChannel Mode = "channel"
	// ModeCategory creates a dedicated category plus one private text
	// channel inside it. Only the inner channel id is tracked.
	ModeCategory Mode = "category"
)

// ProvisioningError means the room could not be created; the caller must not
// persist the event.
type ProvisioningError struct {
	Reason string
	Err    error
}

func (e ProvisioningError) Error() string {
	if e.Err == nil {
		return "room provisioning failed: " + e.Reason
	}
	return fmt.Sprintf("room provisioning failed: %s: %v", e.Reason, e.Err)
}

func (e ProvisioningError) Unwrap() error { return e.Err }

// ProvisionRequest describes the room to create.
type ProvisionRequest struct {
	GuildID      string
	ScenarioName string
	CreatorID    string
	CategoryID   string
	Mode         Mode
}

// Provisioner creates event rooms and edits their access overwrites.
type Provisioner struct {
	chat chat.Service
	log  zerolog.Logger
}

func NewProvisioner(chatSvc chat.Service, logger zerolog.Logger) *Provisioner {
	return &Provisioner{
		chat: chatSvc,
		log:  logger.With().Str("component", "rooms").Logger(),
	}
}

// Provision creates the private room and returns its channel id. The room
// denies the guild's default role and grants the bot and the creator
// read/write. A welcome message is posted best-effort.
func (p *Provisioner) Provision(ctx context.Context, req ProvisionRequest) (string, error) {
	slug := Slugify(req.ScenarioName)

	var roomID string
	switch req.Mode {
	case ModeSingleChannel:
		siblings, err := p.chat.ChannelsInCategory(ctx, req.GuildID, req.CategoryID)
		if err != nil {
			return "", ProvisioningError{Reason: "event category is missing or not a category", Err: err}
		}
		name := dedupeName(slug, channelNames(siblings))
		roomID, err = p.chat.CreateChannel(ctx, req.GuildID, chat.CreateChannelRequest{
			Name:         name,
			ParentID:     req.CategoryID,
			AllowUserIDs: []string{req.CreatorID},
		})
		if err != nil {
			return "", ProvisioningError{Reason: "channel creation failed", Err: err}
		}

	case ModeCategory:
		categories, err := p.chat.Categories(ctx, req.GuildID)
		if err != nil {
			return "", ProvisioningError{Reason: "listing categories failed", Err: err}
		}
		name := dedupeName(slug, channelNames(categories))
		categoryID, err := p.chat.CreateCategory(ctx, req.GuildID, name)
		if err != nil {
			return "", ProvisioningError{Reason: "category creation failed", Err: err}
		}
		roomID, err = p.chat.CreateChannel(ctx, req.GuildID, chat.CreateChannelRequest{
			Name:         slug,
			ParentID:     categoryID,
			AllowUserIDs: []string{req.CreatorID},
		})
		if err != nil {
			return "", ProvisioningError{Reason: "channel creation failed", Err: err}
		}

	default:
		return "", ProvisioningError{Reason: fmt.Sprintf("unknown room mode %q", req.Mode)}
	}

	welcome := fmt.Sprintf(
		"🗓️ **Session room**\nThis channel was created automatically for a scheduled session.\nCreated by: %s\nScenario: **%s**",
		chat.Mention(req.CreatorID), req.ScenarioName,
	)
	if _, err := p.chat.SendMessage(ctx, roomID, welcome); err != nil {
		p.log.Warn().Err(err).Str("room_id", roomID).Msg("welcome message failed")
	}

	return roomID, nil
}

// GrantAccess gives a participant read/write on the room. Idempotent;
// failures are logged and swallowed, since the room is a convenience rather
// than the source of truth for participation.
func (p *Provisioner) GrantAccess(ctx context.Context, roomID, userID string) {
	if err := p.chat.SetPermission(ctx, roomID, userID, true); err != nil {
		p.log.Warn().Err(err).Str("room_id", roomID).Str("user_id", userID).Msg("grant access failed")
	}
}

// RevokeAccess removes a participant's overwrite. Same error policy as
// GrantAccess.
func (p *Provisioner) RevokeAccess(ctx context.Context, roomID, userID string) {
	if err := p.chat.SetPermission(ctx, roomID, userID, false); err != nil {
		p.log.Warn().Err(err).Str("room_id", roomID).Str("user_id", userID).Msg("revoke access failed")
	}
}

func channelNames(chs []chat.Channel) map[string]bool {
	names := make(map[string]bool, len(chs))
	for _, ch := range chs {
		names[ch.Name] = true
	}
	return names
}

// dedupeName suffixes the slug with -2, -3, ... until it no longer collides.
func dedupeName(base string, taken map[string]bool) string {
	name := base
	for i := 2; taken[name]; i++ {
		name = fmt.Sprintf("%s-%d", base, i)
	}
	return name
}
