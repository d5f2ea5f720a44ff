package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/questboard/server/internal/domain/events"
	"github.com/questboard/server/internal/metrics"
)

// CachedRepository implements events.Repository over a durable Store. Reads
// are served from an in-memory mirror; mutations update the mirror
// synchronously and enqueue the durable write to a single background writer.
// A crash between mirror update and durable write can lose the most recent
// mutation, which the domain accepts for its low write rate.
type CachedRepository struct {
	store Store
	log   zerolog.Logger

	mu      sync.RWMutex
	events  map[string][]events.Event
	configs map[string]events.GuildConfig
	boards  map[string]events.BoardState

	writes    chan writeOp
	writerEnd chan struct{}
	closeOnce sync.Once
}

type writeOp struct {
	apply func(ctx context.Context) error
	// done is closed once the op (and everything queued before it) has
	// been applied; used by Flush.
	done chan struct{}
}

var _ events.Repository = (*CachedRepository)(nil)

// NewCachedRepository seeds the mirror from the store and starts the
// background writer. Callers must Close it to drain pending writes.
func NewCachedRepository(ctx context.Context, store Store, logger zerolog.Logger) (*CachedRepository, error) {
	snap, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	r := &CachedRepository{
		store:     store,
		log:       logger.With().Str("component", "storage").Logger(),
		events:    snap.Events,
		configs:   snap.Configs,
		boards:    snap.Boards,
		writes:    make(chan writeOp, 256),
		writerEnd: make(chan struct{}),
	}
	if r.events == nil {
		r.events = make(map[string][]events.Event)
	}
	if r.configs == nil {
		r.configs = make(map[string]events.GuildConfig)
	}
	if r.boards == nil {
		r.boards = make(map[string]events.BoardState)
	}
	go r.runWriter()
	r.log.Info().Int("guilds", len(r.events)).Msg("mirror restored from store")
	return r, nil
}

func (r *CachedRepository) runWriter() {
	defer close(r.writerEnd)
	for op := range r.writes {
		if op.apply != nil {
			if err := op.apply(context.Background()); err != nil {
				metrics.StoreWriteFailures.Inc()
				r.log.Error().Err(err).Msg("durable write failed")
			}
		}
		if op.done != nil {
			close(op.done)
		}
	}
}

func (r *CachedRepository) enqueue(apply func(ctx context.Context) error) {
	r.writes <- writeOp{apply: apply}
}

// Flush blocks until every previously enqueued durable write has been
// applied. Tests and shutdown use it to assert strict durability.
func (r *CachedRepository) Flush(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case r.writes <- writeOp{done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending writes and stops the writer.
func (r *CachedRepository) Close() {
	r.closeOnce.Do(func() {
		close(r.writes)
	})
	<-r.writerEnd
}

func (r *CachedRepository) GuildIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool, len(r.events)+len(r.configs))
	for gid := range r.events {
		seen[gid] = true
	}
	for gid := range r.configs {
		seen[gid] = true
	}
	out := make([]string, 0, len(seen))
	for gid := range seen {
		out = append(out, gid)
	}
	slices.Sort(out)
	return out, nil
}

func (r *CachedRepository) Events(ctx context.Context, guildID string) ([]events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneEvents(r.events[guildID]), nil
}

func (r *CachedRepository) ReplaceEvents(ctx context.Context, guildID string, evs []events.Event) error {
	stored := cloneEvents(evs)
	r.mu.Lock()
	r.events[guildID] = stored
	r.mu.Unlock()

	queued := cloneEvents(stored)
	r.enqueue(func(ctx context.Context) error {
		return r.store.ReplaceEvents(ctx, guildID, queued)
	})
	return nil
}

func (r *CachedRepository) GuildConfig(ctx context.Context, guildID string) (events.GuildConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.configs[guildID], nil
}

func (r *CachedRepository) SetGuildConfig(ctx context.Context, guildID string, patch events.ConfigPatch) (events.GuildConfig, error) {
	r.mu.Lock()
	merged := r.configs[guildID].Apply(patch)
	r.configs[guildID] = merged
	r.mu.Unlock()

	r.enqueue(func(ctx context.Context) error {
		return r.store.SaveGuildConfig(ctx, guildID, merged)
	})
	return merged, nil
}

func (r *CachedRepository) BoardState(ctx context.Context, guildID string) (events.BoardState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.boards[guildID], nil
}

func (r *CachedRepository) SetBoardState(ctx context.Context, guildID string, st events.BoardState) error {
	r.mu.Lock()
	r.boards[guildID] = st
	r.mu.Unlock()

	r.enqueue(func(ctx context.Context) error {
		return r.store.SaveBoardState(ctx, guildID, st)
	})
	return nil
}

func cloneEvents(evs []events.Event) []events.Event {
	out := make([]events.Event, len(evs))
	for i, ev := range evs {
		out[i] = ev.Clone()
	}
	return out
}
