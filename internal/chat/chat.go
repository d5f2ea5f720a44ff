// Package chat abstracts the chat platform behind a narrow interface. The
// engine only needs channel provisioning, per-user permission overwrites and
// message send/edit/delete; everything else (gateway connectivity,
// interactions, auth) lives in the platform adapter.
package chat

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates an unknown channel, category or message.
	ErrNotFound = errors.New("chat: not found")
	// ErrForbidden indicates the acting bot lacks permission for the call.
	ErrForbidden = errors.New("chat: forbidden")
)

// Channel is a minimal view of a platform channel.
type Channel struct {
	ID       string
	Name     string
	ParentID string
}

// Message identifies a posted message by location.
type Message struct {
	ChannelID string
	ID        string
}

// CreateChannelRequest describes a private text channel to create. The
// adapter always denies the guild's default role and grants itself access;
// AllowUserIDs are additionally granted read/write.
type CreateChannelRequest struct {
	Name         string
	ParentID     string
	AllowUserIDs []string
}

// Service is the platform surface the scheduling engine depends on. All
// calls are fallible network I/O; SetPermission and DeleteMessage are
// idempotent.
type Service interface {
	CreateChannel(ctx context.Context, guildID string, req CreateChannelRequest) (string, error)
	CreateCategory(ctx context.Context, guildID, name string) (string, error)

	// Categories lists the guild's category channels.
	Categories(ctx context.Context, guildID string) ([]Channel, error)
	// ChannelsInCategory lists the text channels under a category. It
	// returns ErrNotFound when the category does not exist or is not a
	// category channel.
	ChannelsInCategory(ctx context.Context, guildID, categoryID string) ([]Channel, error)

	// SetPermission grants (allow=true) or removes (allow=false) a user's
	// read/write overwrite on a channel.
	SetPermission(ctx context.Context, channelID, userID string, allow bool) error

	SendMessage(ctx context.Context, channelID, content string) (string, error)
	EditMessage(ctx context.Context, channelID, messageID, content string) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	FetchMessage(ctx context.Context, channelID, messageID string) (Message, error)
}

// Mention renders a user mention in the platform's wire format.
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// ChannelMention renders a channel mention in the platform's wire format.
func ChannelMention(channelID string) string {
	return "<#" + channelID + ">"
}
