// Package jobs runs the background notification scheduler: a recurring scan
// that fires one announcement per due event and flags it notified.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/questboard/server/internal/chat"
	"github.com/questboard/server/internal/domain/events"
	"github.com/questboard/server/internal/metrics"
)

// DefaultGraceWindow bounds how late an announcement may still be sent.
// Events that have been due longer are treated as missed and never notified,
// so a long scheduler outage does not replay a backlog of stale pings.
const DefaultGraceWindow = 60 * time.Second

// Notifier scans every guild for due, not-yet-notified events. Reads come
// straight from the repository; the notified flag is flipped through the
// service so the flip runs under the same per-guild lock as user mutations.
type Notifier struct {
	repo  events.Repository
	svc   *events.Service
	chat  chat.Service
	zone  *time.Location
	grace time.Duration
	log   zerolog.Logger

	mu     sync.Mutex
	missed map[string]struct{}
}

func NewNotifier(repo events.Repository, svc *events.Service, chatSvc chat.Service, zone *time.Location, grace time.Duration, logger zerolog.Logger) *Notifier {
	if grace <= 0 {
		grace = DefaultGraceWindow
	}
	return &Notifier{
		repo:   repo,
		svc:    svc,
		chat:   chatSvc,
		zone:   zone,
		grace:  grace,
		log:    logger.With().Str("component", "notifier").Logger(),
		missed: make(map[string]struct{}),
	}
}

// RunPass performs one scan. Guilds without a notification channel are
// skipped. Each fired event is persisted as notified before the scan moves
// on, so a crash mid-pass re-sends at most the one event that was not yet
// flagged. A single event's failure never aborts the pass.
func (n *Notifier) RunPass(ctx context.Context, now time.Time) error {
	guilds, err := n.repo.GuildIDs(ctx)
	if err != nil {
		return err
	}

	for _, guildID := range guilds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := n.runGuild(ctx, guildID, now); err != nil {
			n.log.Error().Err(err).Str("guild_id", guildID).Msg("guild scan failed")
		}
	}
	metrics.SchedulerPasses.Inc()
	return nil
}

func (n *Notifier) runGuild(ctx context.Context, guildID string, now time.Time) error {
	cfg, err := n.repo.GuildConfig(ctx, guildID)
	if err != nil {
		return err
	}
	if cfg.NotificationChannelID == "" {
		return nil
	}

	evs, err := n.repo.Events(ctx, guildID)
	if err != nil {
		return err
	}

	for _, ev := range evs {
		if ev.Notified || ev.ScheduledAt == nil || ev.ScheduledAt.After(now) {
			continue
		}

		if now.Sub(*ev.ScheduledAt) > n.grace {
			n.markMissed(ev)
			continue
		}

		content := events.RenderDueAnnouncement(ev, n.zone)
		if _, err := n.chat.SendMessage(ctx, cfg.NotificationChannelID, content); err != nil {
			n.log.Error().Err(err).Str("guild_id", guildID).Str("event_id", ev.ID).
				Msg("due announcement failed")
			continue
		}
		if err := n.svc.MarkNotified(ctx, guildID, ev.ID); err != nil {
			n.log.Error().Err(err).Str("guild_id", guildID).Str("event_id", ev.ID).
				Msg("marking notified failed")
			continue
		}
		metrics.NotificationsSent.Inc()
		n.log.Info().Str("guild_id", guildID).Str("event_id", ev.ID).Msg("due announcement sent")
	}
	return nil
}

// markMissed logs and counts a permanently skipped event once; later passes
// skip it silently.
func (n *Notifier) markMissed(ev events.Event) {
	n.mu.Lock()
	_, seen := n.missed[ev.ID]
	if !seen {
		n.missed[ev.ID] = struct{}{}
	}
	n.mu.Unlock()
	if seen {
		return
	}
	metrics.NotificationsMissed.Inc()
	n.log.Warn().Str("guild_id", ev.GuildID).Str("event_id", ev.ID).
		Time("scheduled_at", *ev.ScheduledAt).Dur("grace", n.grace).
		Msg("due event exceeded grace window, skipping permanently")
}
