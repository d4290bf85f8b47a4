package repository

import (
	"context"
	"database/sql"
	"time"

	"circles/internal/domain"
	"circles/internal/domain/chat"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

const chatColumns = "id, participant_a, participant_b, created_at, last_read_a, last_read_b"

const messageColumns = "id, chat_id, sender_id, content, created_at"

func scanChat(row scanner) (chat.Chat, error) {
	var c chat.Chat
	var createdAt int64
	var lastReadA, lastReadB sql.NullInt64
	if err := row.Scan(&c.ID, &c.ParticipantA, &c.ParticipantB, &createdAt, &lastReadA, &lastReadB); err != nil {
		return chat.Chat{}, err
	}
	c.CreatedAt = fromMillis(createdAt)
	c.LastReadA = fromNullMillis(lastReadA)
	c.LastReadB = fromNullMillis(lastReadB)
	return c, nil
}

func scanMessage(row scanner) (chat.Message, error) {
	var m chat.Message
	var createdAt int64
	if err := row.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &createdAt); err != nil {
		return chat.Message{}, err
	}
	m.CreatedAt = fromMillis(createdAt)
	return m, nil
}

type SQLChatRepository struct {
	db *Conn
}

func NewChatRepository(db *Conn) ChatRepository {
	return &SQLChatRepository{db: db}
}

// GetOrCreate inserts c unless a chat already exists for the pair, then
// returns whichever row holds the pair key.
func (r *SQLChatRepository) GetOrCreate(ctx context.Context, c chat.Chat) (chat.Chat, error) {
	key := domain.PairKey(c.ParticipantA, c.ParticipantB)
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO chats (id, participant_a, participant_b, pair_key, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (pair_key) DO NOTHING`,
		c.ID, c.ParticipantA, c.ParticipantB, key, toMillis(c.CreatedAt)); err != nil {
		return chat.Chat{}, err
	}
	got, err := scanChat(r.db.QueryRowContext(ctx, `SELECT `+chatColumns+` FROM chats WHERE pair_key = $1`, key))
	return got, notFound(err)
}

func (r *SQLChatRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error) {
	c, err := scanChat(r.db.QueryRowContext(ctx, `SELECT `+chatColumns+` FROM chats WHERE id = $1`, id))
	return c, notFound(err)
}

func (r *SQLChatRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+chatColumns+` FROM chats
		WHERE participant_a = $1 OR participant_b = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []chat.Chat
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// MarkRead moves only the reader's watermark. ErrNotFound covers both an
// unknown chat and a reader who is not a participant.
func (r *SQLChatRepository) MarkRead(ctx context.Context, chatID, readerID uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE chats SET
			last_read_a = CASE WHEN participant_a = $2 THEN $3 ELSE last_read_a END,
			last_read_b = CASE WHEN participant_b = $2 THEN $3 ELSE last_read_b END
		WHERE id = $1 AND (participant_a = $2 OR participant_b = $2)`,
		chatID, readerID, toMillis(at))
	if err != nil {
		return err
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return circles_errors.ErrNotFound
	}
	return nil
}

func (r *SQLChatRepository) CreateMessage(ctx context.Context, m *chat.Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, chat_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.ChatID, m.SenderID, m.Content, toMillis(m.CreatedAt))
	return err
}

// ListMessages returns up to limit of the most recent messages, oldest first.
func (r *SQLChatRepository) ListMessages(ctx context.Context, chatID uuid.UUID, limit int) ([]chat.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+` FROM (
			SELECT `+messageColumns+` FROM messages
			WHERE chat_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC`, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []chat.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *SQLChatRepository) LatestMessage(ctx context.Context, chatID uuid.UUID) (chat.Message, error) {
	m, err := scanMessage(r.db.QueryRowContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE chat_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, chatID))
	return m, notFound(err)
}

// CountUnread counts messages from the other participant newer than the
// watermark. Without a watermark every such message counts.
func (r *SQLChatRepository) CountUnread(ctx context.Context, chatID, viewerID uuid.UUID, watermark sql.NullTime) (int, error) {
	var n int
	var err error
	if watermark.Valid {
		err = r.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM messages
			WHERE chat_id = $1 AND sender_id <> $2 AND created_at > $3`,
			chatID, viewerID, toMillis(watermark.Time)).Scan(&n)
	} else {
		err = r.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM messages
			WHERE chat_id = $1 AND sender_id <> $2`,
			chatID, viewerID).Scan(&n)
	}
	return n, err
}
