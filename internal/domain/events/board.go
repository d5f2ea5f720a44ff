package events

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/questboard/server/internal/chat"
	"github.com/questboard/server/internal/metrics"
)

const boardPlaceholder = "(no sessions scheduled)"

// SortForBoard orders events for display: dated ascending, undated last, id
// as the tiebreaker so the rendering is deterministic.
func SortForBoard(evs []Event) []Event {
	out := make([]Event, len(evs))
	for i, ev := range evs {
		out[i] = ev.Clone()
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.ScheduledAt == nil && b.ScheduledAt == nil:
			return a.ID < b.ID
		case a.ScheduledAt == nil:
			return false
		case b.ScheduledAt == nil:
			return true
		case !a.ScheduledAt.Equal(*b.ScheduledAt):
			return a.ScheduledAt.Before(*b.ScheduledAt)
		default:
			return a.ID < b.ID
		}
	})
	return out
}

// RenderBoard produces the guild's summary message. Pure: the same events
// and zone always render the same text. Participant identities never appear,
// only counts.
func RenderBoard(evs []Event, zone *time.Location) string {
	var b strings.Builder
	b.WriteString("📋 **Session board**\n")

	sorted := SortForBoard(evs)
	if len(sorted) == 0 {
		b.WriteString(boardPlaceholder)
		return b.String()
	}

	for i, ev := range sorted {
		if i > 0 {
			b.WriteString("\n")
		}
		when := "TBD"
		if ev.ScheduledAt != nil {
			when = ev.ScheduledAt.In(zone).Format("2006-01-02 15:04")
		}
		system := ev.SystemName
		if system == "" {
			system = "TBD"
		}
		fmt.Fprintf(&b, "• %s | %s | %s | %d joined", when, ev.ScenarioName, system, len(ev.Participants))
		if ev.Notified {
			b.WriteString(" (notified)")
		}
	}
	return b.String()
}

// BoardPublisher maintains the single live board message per guild: edit in
// place when possible, send fresh when the message or channel is gone, and
// best-effort delete a stale copy when the board moved channels.
type BoardPublisher struct {
	repo Repository
	chat chat.Service
	zone *time.Location
	log  zerolog.Logger
}

func NewBoardPublisher(repo Repository, chatSvc chat.Service, zone *time.Location, logger zerolog.Logger) *BoardPublisher {
	return &BoardPublisher{
		repo: repo,
		chat: chatSvc,
		zone: zone,
		log:  logger.With().Str("component", "board").Logger(),
	}
}

// Publish upserts the guild's board message. A guild with no board channel
// configured is a no-op. Transient duplicates during a channel move are
// tolerated; the stale delete is best-effort.
func (p *BoardPublisher) Publish(ctx context.Context, guildID string) error {
	cfg, err := p.repo.GuildConfig(ctx, guildID)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.BoardChannelID == "" {
		p.log.Debug().Str("guild_id", guildID).Msg("no board channel configured")
		return nil
	}

	evs, err := p.repo.Events(ctx, guildID)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	content := RenderBoard(evs, p.zone)

	state, err := p.repo.BoardState(ctx, guildID)
	if err != nil {
		return fmt.Errorf("load board state: %w", err)
	}

	if state.MessageID != "" && state.ChannelID == cfg.BoardChannelID {
		if err := p.chat.EditMessage(ctx, state.ChannelID, state.MessageID, content); err == nil {
			metrics.BoardPublishes.WithLabelValues("edited").Inc()
			return nil
		}
		p.log.Info().Str("guild_id", guildID).Str("message_id", state.MessageID).
			Msg("board edit failed, sending a new message")
	}

	messageID, err := p.chat.SendMessage(ctx, cfg.BoardChannelID, content)
	if err != nil {
		metrics.BoardPublishes.WithLabelValues("failed").Inc()
		return fmt.Errorf("send board message: %w", err)
	}

	if state.MessageID != "" && state.ChannelID != cfg.BoardChannelID {
		if _, err := p.chat.FetchMessage(ctx, state.ChannelID, state.MessageID); err == nil {
			if err := p.chat.DeleteMessage(ctx, state.ChannelID, state.MessageID); err != nil {
				p.log.Warn().Err(err).Str("guild_id", guildID).Msg("stale board delete failed")
			}
		}
	}

	if err := p.repo.SetBoardState(ctx, guildID, BoardState{ChannelID: cfg.BoardChannelID, MessageID: messageID}); err != nil {
		return fmt.Errorf("record board state: %w", err)
	}
	metrics.BoardPublishes.WithLabelValues("created").Inc()
	return nil
}
