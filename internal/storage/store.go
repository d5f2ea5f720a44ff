// Package storage provides the durable Store contract and the cached
// repository that fronts it with an in-memory mirror.
package storage

import (
	"context"

	"github.com/questboard/server/internal/domain/events"
)

// Store is the durable backend. Event writes replace a guild's whole
// collection; config and board-state writes replace the guild's row.
type Store interface {
	// LoadAll reads the complete dataset, used to seed the mirror at
	// startup.
	LoadAll(ctx context.Context) (Snapshot, error)

	ReplaceEvents(ctx context.Context, guildID string, evs []events.Event) error
	SaveGuildConfig(ctx context.Context, guildID string, cfg events.GuildConfig) error
	SaveBoardState(ctx context.Context, guildID string, st events.BoardState) error
}

// Snapshot is the full persisted dataset, keyed by guild id.
type Snapshot struct {
	Events  map[string][]events.Event
	Configs map[string]events.GuildConfig
	Boards  map[string]events.BoardState
}
