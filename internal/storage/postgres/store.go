// Package postgres implements the durable Store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/questboard/server/internal/domain/events"
	"github.com/questboard/server/internal/storage"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres store: pool is nil")
	}
	return &Store{pool: pool}, nil
}

func (s *Store) LoadAll(ctx context.Context) (storage.Snapshot, error) {
	snap := storage.Snapshot{
		Events:  make(map[string][]events.Event),
		Configs: make(map[string]events.GuildConfig),
		Boards:  make(map[string]events.BoardState),
	}

	rows, err := s.pool.Query(ctx, `
SELECT guild_id,
       COALESCE(notification_channel_id, ''),
       COALESCE(event_category_id, ''),
       COALESCE(board_channel_id, '')
  FROM guild_configs`)
	if err != nil {
		return snap, fmt.Errorf("load guild configs: %w", err)
	}
	for rows.Next() {
		var gid string
		var cfg events.GuildConfig
		if err := rows.Scan(&gid, &cfg.NotificationChannelID, &cfg.CategoryID, &cfg.BoardChannelID); err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan guild config: %w", err)
		}
		snap.Configs[gid] = cfg
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("load guild configs: %w", err)
	}

	participants, err := s.loadParticipants(ctx)
	if err != nil {
		return snap, err
	}

	rows, err = s.pool.Query(ctx, `
SELECT id, guild_id, scheduled_at, scenario_name,
       COALESCE(system_name, ''), COALESCE(gamemaster, ''),
       created_by, notified, COALESCE(room_id, '')
  FROM events`)
	if err != nil {
		return snap, fmt.Errorf("load events: %w", err)
	}
	for rows.Next() {
		var ev events.Event
		var scheduledAt *time.Time
		if err := rows.Scan(&ev.ID, &ev.GuildID, &scheduledAt, &ev.ScenarioName,
			&ev.SystemName, &ev.Gamemaster, &ev.CreatedBy, &ev.Notified, &ev.RoomID); err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan event: %w", err)
		}
		if scheduledAt != nil {
			utc := scheduledAt.UTC()
			ev.ScheduledAt = &utc
		}
		ev.Participants = participants[ev.ID]
		snap.Events[ev.GuildID] = append(snap.Events[ev.GuildID], ev)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("load events: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
SELECT guild_id, COALESCE(channel_id, ''), COALESCE(message_id, '')
  FROM board_states`)
	if err != nil {
		return snap, fmt.Errorf("load board states: %w", err)
	}
	for rows.Next() {
		var gid string
		var st events.BoardState
		if err := rows.Scan(&gid, &st.ChannelID, &st.MessageID); err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan board state: %w", err)
		}
		snap.Boards[gid] = st
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("load board states: %w", err)
	}

	return snap, nil
}

func (s *Store) loadParticipants(ctx context.Context) (map[string][]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT event_id, user_id FROM participants`)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var eventID, userID string
		if err := rows.Scan(&eventID, &userID); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out[eventID] = append(out[eventID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	return out, nil
}

// ReplaceEvents overwrites a guild's full event set in one transaction.
// Participants cascade on event delete.
func (s *Store) ReplaceEvents(ctx context.Context, guildID string, evs []events.Event) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM events WHERE guild_id = $1`, guildID); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}

	for _, ev := range evs {
		if _, err := tx.Exec(ctx, `
INSERT INTO events (id, guild_id, scheduled_at, scenario_name, system_name, gamemaster, created_by, notified, room_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			ev.ID, guildID, ev.ScheduledAt, ev.ScenarioName,
			nullable(ev.SystemName), nullable(ev.Gamemaster),
			ev.CreatedBy, ev.Notified, nullable(ev.RoomID),
		); err != nil {
			return fmt.Errorf("insert event %s: %w", ev.ID, err)
		}
		for _, uid := range ev.Participants {
			if _, err := tx.Exec(ctx, `
INSERT INTO participants (event_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				ev.ID, uid,
			); err != nil {
				return fmt.Errorf("insert participant: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) SaveGuildConfig(ctx context.Context, guildID string, cfg events.GuildConfig) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO guild_configs (guild_id, notification_channel_id, event_category_id, board_channel_id)
VALUES ($1, $2, $3, $4)
ON CONFLICT (guild_id)
DO UPDATE SET notification_channel_id = EXCLUDED.notification_channel_id,
              event_category_id = EXCLUDED.event_category_id,
              board_channel_id = EXCLUDED.board_channel_id`,
		guildID, nullable(cfg.NotificationChannelID), nullable(cfg.CategoryID), nullable(cfg.BoardChannelID),
	)
	if err != nil {
		return fmt.Errorf("save guild config: %w", err)
	}
	return nil
}

func (s *Store) SaveBoardState(ctx context.Context, guildID string, st events.BoardState) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO board_states (guild_id, channel_id, message_id)
VALUES ($1, $2, $3)
ON CONFLICT (guild_id)
DO UPDATE SET channel_id = EXCLUDED.channel_id,
              message_id = EXCLUDED.message_id`,
		guildID, nullable(st.ChannelID), nullable(st.MessageID),
	)
	if err != nil {
		return fmt.Errorf("save board state: %w", err)
	}
	return nil
}

// nullable maps the domain's empty-string "unset" to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
