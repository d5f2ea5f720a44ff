package events

import "context"

// Repository is the storage contract for the scheduling core. Reads are
// served from an in-memory mirror and are safe to call on every interaction;
// mutations update the mirror synchronously while durable persistence runs
// in the background. Callers performing external side effects must only act
// after the mutating call returns.
//
// Mutations overwrite whole per-guild collections; callers serialize
// read-modify-write cycles per guild (see Service's keyed lock).
type Repository interface {
	// GuildIDs lists every guild known to the store (events or config).
	GuildIDs(ctx context.Context) ([]string, error)

	// Events returns a snapshot of the guild's events.
	Events(ctx context.Context, guildID string) ([]Event, error)
	// ReplaceEvents atomically overwrites the guild's full event set.
	ReplaceEvents(ctx context.Context, guildID string, evs []Event) error

	// GuildConfig returns the guild's configuration, zero-valued if never
	// set.
	GuildConfig(ctx context.Context, guildID string) (GuildConfig, error)
	// SetGuildConfig merges the patch over the stored config and returns
	// the result.
	SetGuildConfig(ctx context.Context, guildID string, patch ConfigPatch) (GuildConfig, error)

	BoardState(ctx context.Context, guildID string) (BoardState, error)
	SetBoardState(ctx context.Context, guildID string, st BoardState) error
}
