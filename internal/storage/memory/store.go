// Package memory implements storage.Store with plain maps. It backs tests
// and can run the server without Postgres for local experiments.
package memory

import (
	"context"
	"sync"

	"github.com/questboard/server/internal/domain/events"
	"github.com/questboard/server/internal/storage"
)

type Store struct {
	mu      sync.Mutex
	events  map[string][]events.Event
	configs map[string]events.GuildConfig
	boards  map[string]events.BoardState
}

var _ storage.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		events:  make(map[string][]events.Event),
		configs: make(map[string]events.GuildConfig),
		boards:  make(map[string]events.BoardState),
	}
}

func (s *Store) LoadAll(ctx context.Context) (storage.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := storage.Snapshot{
		Events:  make(map[string][]events.Event, len(s.events)),
		Configs: make(map[string]events.GuildConfig, len(s.configs)),
		Boards:  make(map[string]events.BoardState, len(s.boards)),
	}
	for gid, evs := range s.events {
		snap.Events[gid] = cloneEvents(evs)
	}
	for gid, cfg := range s.configs {
		snap.Configs[gid] = cfg
	}
	for gid, st := range s.boards {
		snap.Boards[gid] = st
	}
	return snap, nil
}

func (s *Store) ReplaceEvents(ctx context.Context, guildID string, evs []events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[guildID] = cloneEvents(evs)
	return nil
}

func (s *Store) SaveGuildConfig(ctx context.Context, guildID string, cfg events.GuildConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[guildID] = cfg
	return nil
}

func (s *Store) SaveBoardState(ctx context.Context, guildID string, st events.BoardState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[guildID] = st
	return nil
}

// EventsFor returns the persisted events for a guild; tests use it to assert
// durability after a Flush.
func (s *Store) EventsFor(guildID string) []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEvents(s.events[guildID])
}

// ConfigFor returns the persisted config for a guild.
func (s *Store) ConfigFor(guildID string) events.GuildConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configs[guildID]
}

func cloneEvents(evs []events.Event) []events.Event {
	out := make([]events.Event, len(evs))
	for i, ev := range evs {
		out[i] = ev.Clone()
	}
	return out
}
