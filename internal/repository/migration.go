package repository

import (
	"context"
	"fmt"
)

// schema is portable between PostgreSQL and SQLite: TEXT ids, BIGINT unix
// millisecond timestamps, no engine-specific types.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		external_id  TEXT UNIQUE,
		display_name TEXT NOT NULL,
		handle       TEXT UNIQUE,
		avatar_url   TEXT NOT NULL DEFAULT '',
		created_at   BIGINT NOT NULL,
		updated_at   BIGINT NOT NULL,
		deleted_at   BIGINT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_display_name ON users (display_name)`,

	`CREATE TABLE IF NOT EXISTS connections (
		id           TEXT PRIMARY KEY,
		requester_id TEXT NOT NULL REFERENCES users(id),
		recipient_id TEXT NOT NULL REFERENCES users(id),
		pair_key     TEXT NOT NULL UNIQUE,
		status       TEXT NOT NULL CHECK (status IN ('pending', 'accepted', 'rejected')),
		created_at   BIGINT NOT NULL,
		updated_at   BIGINT NOT NULL,
		CHECK (requester_id <> recipient_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_connections_requester ON connections (requester_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_connections_recipient ON connections (recipient_id, status)`,

	`CREATE TABLE IF NOT EXISTS social_groups (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		visibility   TEXT NOT NULL CHECK (visibility IN ('public', 'private')),
		min_members  INTEGER NOT NULL,
		max_members  INTEGER NOT NULL,
		member_count INTEGER NOT NULL DEFAULT 0,
		creator_id   TEXT NOT NULL REFERENCES users(id),
		created_at   BIGINT NOT NULL,
		updated_at   BIGINT NOT NULL,
		CHECK (min_members >= 2 AND min_members <= max_members AND max_members <= 6),
		CHECK (member_count >= 0 AND member_count <= max_members)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_social_groups_creator ON social_groups (creator_id)`,
	`CREATE INDEX IF NOT EXISTS idx_social_groups_visibility ON social_groups (visibility, created_at)`,

	`CREATE TABLE IF NOT EXISTS group_members (
		group_id  TEXT NOT NULL REFERENCES social_groups(id) ON DELETE CASCADE,
		user_id   TEXT NOT NULL REFERENCES users(id),
		is_admin  BOOLEAN NOT NULL DEFAULT FALSE,
		joined_at BIGINT NOT NULL,
		PRIMARY KEY (group_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_group_members_user ON group_members (user_id)`,

	`CREATE TABLE IF NOT EXISTS prompts (
		id         TEXT PRIMARY KEY,
		content    TEXT NOT NULL,
		active_at  BIGINT NOT NULL,
		reveal_at  BIGINT NOT NULL,
		created_at BIGINT NOT NULL,
		CHECK (reveal_at >= active_at)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_prompts_active_at ON prompts (active_at)`,

	`CREATE TABLE IF NOT EXISTS responses (
		id         TEXT PRIMARY KEY,
		prompt_id  TEXT NOT NULL REFERENCES prompts(id),
		group_id   TEXT NOT NULL REFERENCES social_groups(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL REFERENCES users(id),
		content    TEXT NOT NULL,
		vote_count INTEGER NOT NULL DEFAULT 0,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL,
		UNIQUE (prompt_id, group_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_responses_group_prompt ON responses (group_id, prompt_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_responses_user ON responses (user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS votes (
		response_id TEXT NOT NULL REFERENCES responses(id) ON DELETE CASCADE,
		voter_id    TEXT NOT NULL REFERENCES users(id),
		created_at  BIGINT NOT NULL,
		PRIMARY KEY (response_id, voter_id)
	)`,

	`CREATE TABLE IF NOT EXISTS prompt_dispatches (
		prompt_id     TEXT NOT NULL REFERENCES prompts(id),
		kind          TEXT NOT NULL,
		dispatched_at BIGINT NOT NULL,
		PRIMARY KEY (prompt_id, kind)
	)`,

	`CREATE TABLE IF NOT EXISTS chats (
		id            TEXT PRIMARY KEY,
		participant_a TEXT NOT NULL REFERENCES users(id),
		participant_b TEXT NOT NULL REFERENCES users(id),
		pair_key      TEXT NOT NULL UNIQUE,
		created_at    BIGINT NOT NULL,
		last_read_a   BIGINT,
		last_read_b   BIGINT,
		CHECK (participant_a <> participant_b)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chats_participant_a ON chats (participant_a)`,
	`CREATE INDEX IF NOT EXISTS idx_chats_participant_b ON chats (participant_b)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id         TEXT PRIMARY KEY,
		chat_id    TEXT NOT NULL REFERENCES chats(id),
		sender_id  TEXT NOT NULL REFERENCES users(id),
		content    TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages (chat_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL REFERENCES users(id),
		type           TEXT NOT NULL,
		payload        TEXT NOT NULL,
		schema_version INTEGER NOT NULL,
		is_read        BOOLEAN NOT NULL DEFAULT FALSE,
		created_at     BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, is_read, created_at)`,
}

// Tables lists every table InitSchema creates, in dependency order.
var Tables = []string{
	"users", "connections", "social_groups", "group_members", "prompts",
	"responses", "votes", "prompt_dispatches", "chats", "messages", "notifications",
}

// InitSchema creates every table and index that does not exist yet.
func InitSchema(ctx context.Context, db *Conn) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// TableCounts reports the row count of every table. Used by the migrate status command.
func TableCounts(ctx context.Context, db *Conn) (map[string]int64, error) {
	counts := make(map[string]int64, len(Tables))
	for _, table := range Tables {
		var n int64
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
