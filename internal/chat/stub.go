package chat

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Stub is a Service implementation that succeeds with synthetic ids and logs
// every call. It lets the server run headless (migrations, scheduler, ops
// endpoints) before a platform adapter is wired in, and doubles as a safe
// default in local development.
type Stub struct {
	log zerolog.Logger
	seq atomic.Int64
}

var _ Service = (*Stub)(nil)

func NewStub(logger zerolog.Logger) *Stub {
	return &Stub{log: logger.With().Str("component", "chat_stub").Logger()}
}

func (s *Stub) next(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, s.seq.Add(1))
}

func (s *Stub) CreateChannel(ctx context.Context, guildID string, req CreateChannelRequest) (string, error) {
	id := s.next("channel")
	s.log.Info().Str("guild_id", guildID).Str("name", req.Name).Str("channel_id", id).Msg("create channel")
	return id, nil
}

func (s *Stub) CreateCategory(ctx context.Context, guildID, name string) (string, error) {
	id := s.next("category")
	s.log.Info().Str("guild_id", guildID).Str("name", name).Str("category_id", id).Msg("create category")
	return id, nil
}

func (s *Stub) Categories(ctx context.Context, guildID string) ([]Channel, error) {
	return nil, nil
}

func (s *Stub) ChannelsInCategory(ctx context.Context, guildID, categoryID string) ([]Channel, error) {
	return nil, nil
}

func (s *Stub) SetPermission(ctx context.Context, channelID, userID string, allow bool) error {
	s.log.Info().Str("channel_id", channelID).Str("user_id", userID).Bool("allow", allow).Msg("set permission")
	return nil
}

func (s *Stub) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	id := s.next("message")
	s.log.Info().Str("channel_id", channelID).Str("message_id", id).Msg("send message")
	return id, nil
}

func (s *Stub) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	s.log.Info().Str("channel_id", channelID).Str("message_id", messageID).Msg("edit message")
	return nil
}

func (s *Stub) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	s.log.Info().Str("channel_id", channelID).Str("message_id", messageID).Msg("delete message")
	return nil
}

func (s *Stub) FetchMessage(ctx context.Context, channelID, messageID string) (Message, error) {
	return Message{ChannelID: channelID, ID: messageID}, nil
}
