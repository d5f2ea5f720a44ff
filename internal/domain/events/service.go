package events

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/questboard/server/internal/chat"
	"github.com/questboard/server/internal/domain/ids"
	"github.com/questboard/server/internal/domain/rooms"
)

// Service orchestrates the event lifecycle. All read-modify-write cycles on
// a guild's collection run under that guild's lock; the authoritative state
// commits before any board or announcement side effect, and those side
// effects are best-effort only. Room provisioning is the one exception: it
// must succeed before the event is persisted, since the room id is embedded
// in the event.
type Service struct {
	repo     Repository
	rooms    *rooms.Provisioner
	board    *BoardPublisher
	chat     chat.Service
	locks    *guildLocks
	validate *validator.Validate
	zone     *time.Location
	log      zerolog.Logger
}

func NewService(repo Repository, provisioner *rooms.Provisioner, board *BoardPublisher, chatSvc chat.Service, zone *time.Location, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		rooms:    provisioner,
		board:    board,
		chat:     chatSvc,
		locks:    newGuildLocks(),
		validate: newValidator(),
		zone:     zone,
		log:      logger.With().Str("component", "events").Logger(),
	}
}

// Create validates the input, provisions the private room, persists the new
// event with the creator as sole participant, then refreshes the board and
// posts a creation announcement.
func (s *Service) Create(ctx context.Context, in CreateInput) (Event, error) {
	in.ScenarioName = strings.TrimSpace(in.ScenarioName)
	in.SystemName = strings.TrimSpace(in.SystemName)
	in.Gamemaster = strings.TrimSpace(in.Gamemaster)
	if err := s.validate.Struct(in); err != nil {
		return Event{}, validationError(err)
	}
	scheduledAt, err := ParseWhen(in.When, s.zone)
	if err != nil {
		return Event{}, err
	}

	cfg, err := s.repo.GuildConfig(ctx, in.GuildID)
	if err != nil {
		return Event{}, fmt.Errorf("load guild config: %w", err)
	}
	if cfg.NotificationChannelID == "" {
		return Event{}, ConfigError{Missing: "notification channel"}
	}
	if cfg.CategoryID == "" {
		return Event{}, ConfigError{Missing: "event category"}
	}

	roomID, err := s.rooms.Provision(ctx, rooms.ProvisionRequest{
		GuildID:      in.GuildID,
		ScenarioName: in.ScenarioName,
		CreatorID:    in.CreatorID,
		CategoryID:   cfg.CategoryID,
		Mode:         in.Mode,
	})
	if err != nil {
		return Event{}, err
	}

	id, err := ids.NewULID()
	if err != nil {
		return Event{}, fmt.Errorf("mint event id: %w", err)
	}
	ev := Event{
		ID:           id,
		GuildID:      in.GuildID,
		ScheduledAt:  scheduledAt,
		ScenarioName: in.ScenarioName,
		SystemName:   in.SystemName,
		Gamemaster:   in.Gamemaster,
		CreatedBy:    in.CreatorID,
		Participants: []string{in.CreatorID},
		RoomID:       roomID,
	}

	release := s.locks.acquire(in.GuildID)
	evs, err := s.repo.Events(ctx, in.GuildID)
	if err == nil {
		err = s.repo.ReplaceEvents(ctx, in.GuildID, append(evs, ev))
	}
	release()
	if err != nil {
		return Event{}, fmt.Errorf("persist event: %w", err)
	}

	s.log.Info().Str("guild_id", in.GuildID).Str("event_id", ev.ID).
		Str("room_id", roomID).Msg("event created")
	s.publishBoard(ctx, in.GuildID)
	s.announce(ctx, cfg.NotificationChannelID, RenderCreatedAnnouncement(ev, s.zone))
	return ev.Clone(), nil
}

// Edit replaces the event's editable fields. An empty scenario name is
// rejected; empty date, system or gamemaster inputs clear the stored values.
func (s *Service) Edit(ctx context.Context, in EditInput) (Event, error) {
	in.ScenarioName = strings.TrimSpace(in.ScenarioName)
	in.SystemName = strings.TrimSpace(in.SystemName)
	in.Gamemaster = strings.TrimSpace(in.Gamemaster)
	if err := s.validate.Struct(in); err != nil {
		return Event{}, validationError(err)
	}
	scheduledAt, err := ParseWhen(in.When, s.zone)
	if err != nil {
		return Event{}, err
	}

	var updated Event
	err = s.mutate(ctx, in.GuildID, func(evs []Event) ([]Event, error) {
		i := indexOf(evs, in.EventID)
		if i < 0 {
			return nil, ErrNotFound
		}
		evs[i].ScheduledAt = scheduledAt
		evs[i].ScenarioName = in.ScenarioName
		evs[i].SystemName = in.SystemName
		evs[i].Gamemaster = in.Gamemaster
		updated = evs[i].Clone()
		return evs, nil
	})
	if err != nil {
		return Event{}, err
	}

	s.log.Info().Str("guild_id", in.GuildID).Str("event_id", in.EventID).Msg("event updated")
	s.publishBoard(ctx, in.GuildID)
	return updated, nil
}

// Remove deletes the event from the guild's collection. The provisioned
// room is intentionally left in place.
func (s *Service) Remove(ctx context.Context, guildID, eventID string) (Event, error) {
	var removed Event
	err := s.mutate(ctx, guildID, func(evs []Event) ([]Event, error) {
		i := indexOf(evs, eventID)
		if i < 0 {
			return nil, ErrNotFound
		}
		removed = evs[i].Clone()
		return slices.Delete(evs, i, i+1), nil
	})
	if err != nil {
		return Event{}, err
	}

	s.log.Info().Str("guild_id", guildID).Str("event_id", eventID).Msg("event removed")
	s.publishBoard(ctx, guildID)
	return removed, nil
}

// Join adds the user to the participant set. Idempotent. Room access is
// granted best-effort, and a short note is posted into the room on a first
// join.
func (s *Service) Join(ctx context.Context, guildID, eventID, userID string) (Event, error) {
	var joined Event
	changed := false
	err := s.mutate(ctx, guildID, func(evs []Event) ([]Event, error) {
		i := indexOf(evs, eventID)
		if i < 0 {
			return nil, ErrNotFound
		}
		changed = evs[i].AddParticipant(userID)
		joined = evs[i].Clone()
		return evs, nil
	})
	if err != nil {
		return Event{}, err
	}

	if joined.RoomID != "" {
		// Granting on every join heals overwrites lost to manual edits.
		s.rooms.GrantAccess(ctx, joined.RoomID, userID)
		if changed {
			if _, err := s.chat.SendMessage(ctx, joined.RoomID, RenderJoinNote(userID)); err != nil {
				s.log.Warn().Err(err).Str("room_id", joined.RoomID).Msg("join note failed")
			}
		}
	}
	if changed {
		s.publishBoard(ctx, guildID)
	}
	return joined, nil
}

// Leave removes the user from the participant set. Idempotent; leaving is
// allowed for everyone including the creator. Room access is revoked except
// for the creator, whose access predates participation.
func (s *Service) Leave(ctx context.Context, guildID, eventID, userID string) (Event, error) {
	var left Event
	changed := false
	err := s.mutate(ctx, guildID, func(evs []Event) ([]Event, error) {
		i := indexOf(evs, eventID)
		if i < 0 {
			return nil, ErrNotFound
		}
		changed = evs[i].RemoveParticipant(userID)
		left = evs[i].Clone()
		return evs, nil
	})
	if err != nil {
		return Event{}, err
	}

	if changed && left.RoomID != "" && userID != left.CreatedBy {
		s.rooms.RevokeAccess(ctx, left.RoomID, userID)
	}
	if changed {
		s.publishBoard(ctx, guildID)
	}
	return left, nil
}

// View returns the visibility-gated projection of one event.
func (s *Service) View(ctx context.Context, guildID, eventID, viewerID string) (View, error) {
	evs, err := s.repo.Events(ctx, guildID)
	if err != nil {
		return View{}, err
	}
	i := indexOf(evs, eventID)
	if i < 0 {
		return View{}, ErrNotFound
	}
	return NewView(evs[i], viewerID), nil
}

// List returns board-ordered views of every event in the guild, each gated
// by the viewer's visibility.
func (s *Service) List(ctx context.Context, guildID, viewerID string) ([]View, error) {
	evs, err := s.repo.Events(ctx, guildID)
	if err != nil {
		return nil, err
	}
	sorted := SortForBoard(evs)
	out := make([]View, len(sorted))
	for i, ev := range sorted {
		out[i] = NewView(ev, viewerID)
	}
	return out, nil
}

// MarkNotified flips the event's notified flag. Idempotent: marking an
// already-notified event is a no-op, so the flag only ever transitions
// false to true.
func (s *Service) MarkNotified(ctx context.Context, guildID, eventID string) error {
	return s.mutate(ctx, guildID, func(evs []Event) ([]Event, error) {
		i := indexOf(evs, eventID)
		if i < 0 {
			return nil, ErrNotFound
		}
		if evs[i].Notified {
			return evs, nil
		}
		evs[i].Notified = true
		return evs, nil
	})
}

// GetConfig returns the guild's configuration.
func (s *Service) GetConfig(ctx context.Context, guildID string) (GuildConfig, error) {
	return s.repo.GuildConfig(ctx, guildID)
}

// SetConfig merges the patch over the guild's configuration. Changing the
// board channel clears the recorded message, best-effort deletes the old
// board message and republishes at the new location.
func (s *Service) SetConfig(ctx context.Context, guildID string, patch ConfigPatch) (GuildConfig, error) {
	current, err := s.repo.GuildConfig(ctx, guildID)
	if err != nil {
		return GuildConfig{}, err
	}
	boardMoved := patch.BoardChannelID != nil && *patch.BoardChannelID != current.BoardChannelID

	cfg, err := s.repo.SetGuildConfig(ctx, guildID, patch)
	if err != nil {
		return GuildConfig{}, err
	}

	if boardMoved {
		state, err := s.repo.BoardState(ctx, guildID)
		if err == nil && state.MessageID != "" {
			if err := s.chat.DeleteMessage(ctx, state.ChannelID, state.MessageID); err != nil {
				s.log.Warn().Err(err).Str("guild_id", guildID).Msg("old board delete failed")
			}
		}
		if err := s.repo.SetBoardState(ctx, guildID, BoardState{ChannelID: cfg.BoardChannelID}); err != nil {
			return cfg, err
		}
		if cfg.BoardChannelID != "" {
			s.publishBoard(ctx, guildID)
		}
	}
	return cfg, nil
}

// ResetConfig clears every configured field for the guild.
func (s *Service) ResetConfig(ctx context.Context, guildID string) (GuildConfig, error) {
	return s.SetConfig(ctx, guildID, ResetPatch())
}

// mutate runs one read-modify-write cycle under the guild's lock.
func (s *Service) mutate(ctx context.Context, guildID string, fn func([]Event) ([]Event, error)) error {
	release := s.locks.acquire(guildID)
	defer release()

	evs, err := s.repo.Events(ctx, guildID)
	if err != nil {
		return err
	}
	next, err := fn(evs)
	if err != nil {
		return err
	}
	if err := s.repo.ReplaceEvents(ctx, guildID, next); err != nil {
		return fmt.Errorf("persist events: %w", err)
	}
	return nil
}

func (s *Service) publishBoard(ctx context.Context, guildID string) {
	if err := s.board.Publish(ctx, guildID); err != nil {
		s.log.Warn().Err(err).Str("guild_id", guildID).Msg("board publish failed")
	}
}

func (s *Service) announce(ctx context.Context, channelID, content string) {
	if _, err := s.chat.SendMessage(ctx, channelID, content); err != nil {
		s.log.Warn().Err(err).Str("channel_id", channelID).Msg("announcement failed")
	}
}

func indexOf(evs []Event, eventID string) int {
	return slices.IndexFunc(evs, func(ev Event) bool { return ev.ID == eventID })
}
