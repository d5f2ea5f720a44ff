package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questboard/server/internal/chat/chattest"
	"github.com/questboard/server/internal/domain/events"
	"github.com/questboard/server/internal/domain/rooms"
	"github.com/questboard/server/internal/jobs"
	"github.com/questboard/server/internal/storage"
	"github.com/questboard/server/internal/storage/memory"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

type notifyFixture struct {
	repo     *storage.CachedRepository
	fake     *chattest.Fake
	notifier *jobs.Notifier
	notifCh  string
}

func newNotifyFixture(t *testing.T, grace time.Duration) *notifyFixture {
	t.Helper()
	fake := chattest.NewFake()
	repo, err := storage.NewCachedRepository(context.Background(), memory.NewStore(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	prov := rooms.NewProvisioner(fake, zerolog.Nop())
	board := events.NewBoardPublisher(repo, fake, time.UTC, zerolog.Nop())
	svc := events.NewService(repo, prov, board, fake, time.UTC, zerolog.Nop())

	f := &notifyFixture{
		repo:     repo,
		fake:     fake,
		notifier: jobs.NewNotifier(repo, svc, fake, time.UTC, grace, zerolog.Nop()),
		notifCh:  fake.AddChannel("session-notices"),
	}
	_, err = repo.SetGuildConfig(context.Background(), "g1", events.ConfigPatch{
		NotificationChannelID: strPtr(f.notifCh),
	})
	require.NoError(t, err)
	return f
}

func (f *notifyFixture) seed(t *testing.T, evs ...events.Event) {
	t.Helper()
	require.NoError(t, f.repo.ReplaceEvents(context.Background(), "g1", evs))
}

func (f *notifyFixture) event(t *testing.T, id string) events.Event {
	t.Helper()
	evs, err := f.repo.Events(context.Background(), "g1")
	require.NoError(t, err)
	for _, ev := range evs {
		if ev.ID == id {
			return ev
		}
	}
	t.Fatalf("event %s not found", id)
	return events.Event{}
}

func TestRunPassSendsOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 30, 0, time.UTC)
	f := newNotifyFixture(t, time.Minute)
	f.seed(t, events.Event{
		ID:           "ev1",
		GuildID:      "g1",
		ScheduledAt:  timePtr(now.Add(-10 * time.Second)),
		ScenarioName: "Curse of Strahd",
		CreatedBy:    "creator",
		Participants: []string{"creator"},
	})

	require.NoError(t, f.notifier.RunPass(ctx, now))

	msgs := f.fake.Messages(f.notifCh)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Session time!")
	assert.Contains(t, msgs[0], "Curse of Strahd")
	assert.True(t, f.event(t, "ev1").Notified)

	// A later pass finds nothing to do.
	require.NoError(t, f.notifier.RunPass(ctx, now.Add(30*time.Second)))
	assert.Len(t, f.fake.Messages(f.notifCh), 1)
}

func TestRunPassBoundaryOfGraceWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newNotifyFixture(t, time.Minute)
	f.seed(t,
		events.Event{ID: "edge", GuildID: "g1", ScheduledAt: timePtr(now.Add(-time.Minute)), ScenarioName: "Edge"},
		events.Event{ID: "exact", GuildID: "g1", ScheduledAt: timePtr(now), ScenarioName: "Exact"},
	)

	require.NoError(t, f.notifier.RunPass(ctx, now))

	// Exactly grace-window late is still inside the window; exactly due fires.
	assert.Len(t, f.fake.Messages(f.notifCh), 2)
	assert.True(t, f.event(t, "edge").Notified)
	assert.True(t, f.event(t, "exact").Notified)
}

func TestRunPassSkipsStaleEvents(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newNotifyFixture(t, time.Minute)
	f.seed(t, events.Event{
		ID:           "ev1",
		GuildID:      "g1",
		ScheduledAt:  timePtr(now.Add(-10 * time.Minute)),
		ScenarioName: "Stale",
	})

	require.NoError(t, f.notifier.RunPass(ctx, now))
	require.NoError(t, f.notifier.RunPass(ctx, now.Add(30*time.Second)))

	// Never announced, never flagged: the event stays visibly unnotified.
	assert.Empty(t, f.fake.Messages(f.notifCh))
	assert.False(t, f.event(t, "ev1").Notified)
}

func TestRunPassSkipsFutureAndUndated(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newNotifyFixture(t, time.Minute)
	f.seed(t,
		events.Event{ID: "future", GuildID: "g1", ScheduledAt: timePtr(now.Add(time.Hour)), ScenarioName: "Future"},
		events.Event{ID: "undated", GuildID: "g1", ScenarioName: "Undated"},
	)

	require.NoError(t, f.notifier.RunPass(ctx, now))
	assert.Empty(t, f.fake.Messages(f.notifCh))
}

func TestRunPassSkipsUnconfiguredGuild(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newNotifyFixture(t, time.Minute)

	require.NoError(t, f.repo.ReplaceEvents(ctx, "g2", []events.Event{
		{ID: "ev1", GuildID: "g2", ScheduledAt: timePtr(now.Add(-10 * time.Second)), ScenarioName: "Orphan"},
	}))

	require.NoError(t, f.notifier.RunPass(ctx, now))
	assert.Empty(t, f.fake.Messages(f.notifCh))

	evs, err := f.repo.Events(ctx, "g2")
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.False(t, evs[0].Notified)
}

func TestRunPassRetriesAfterSendFailure(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newNotifyFixture(t, time.Minute)
	f.seed(t, events.Event{
		ID:           "ev1",
		GuildID:      "g1",
		ScheduledAt:  timePtr(now.Add(-10 * time.Second)),
		ScenarioName: "Curse of Strahd",
	})

	f.fake.FailSend = errors.New("gateway down")
	require.NoError(t, f.notifier.RunPass(ctx, now))
	assert.False(t, f.event(t, "ev1").Notified)

	// Delivery failed, so the flag stayed false and the next healthy pass
	// inside the window sends it.
	f.fake.FailSend = nil
	require.NoError(t, f.notifier.RunPass(ctx, now.Add(20*time.Second)))
	require.Len(t, f.fake.Messages(f.notifCh), 1)
	assert.True(t, f.event(t, "ev1").Notified)
}
