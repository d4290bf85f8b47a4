package chat

import (
	"database/sql"
	"time"

	"circles/internal/domain/user"

	"github.com/google/uuid"
)

// Chat represents the chats table: a thread between exactly two users with
// one read watermark per participant.
type Chat struct {
	ID           uuid.UUID
	ParticipantA uuid.UUID
	ParticipantB uuid.UUID
	CreatedAt    time.Time
	LastReadA    sql.NullTime
	LastReadB    sql.NullTime
}

func (c Chat) HasParticipant(userID uuid.UUID) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

func (c Chat) Other(userID uuid.UUID) uuid.UUID {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// WatermarkFor returns the last-read time of userID, if any.
func (c Chat) WatermarkFor(userID uuid.UUID) sql.NullTime {
	switch userID {
	case c.ParticipantA:
		return c.LastReadA
	case c.ParticipantB:
		return c.LastReadB
	}
	return sql.NullTime{}
}

// Message represents the messages table. Messages are append-only.
type Message struct {
	ID        uuid.UUID
	ChatID    uuid.UUID
	SenderID  uuid.UUID
	Content   string
	CreatedAt time.Time
}

// IsUnreadBy reports whether m counts toward viewerID's unread total in c.
func IsUnreadBy(c Chat, m Message, viewerID uuid.UUID) bool {
	if m.SenderID == viewerID {
		return false
	}
	w := c.WatermarkFor(viewerID)
	return !w.Valid || m.CreatedAt.After(w.Time)
}

// Summary is one row of a user's chat list.
type Summary struct {
	Chat        Chat
	Other       user.Profile
	LastMessage *Message
	UnreadCount int
}

// LastActivity is the newer of the last message time and the chat creation time.
func (s Summary) LastActivity() time.Time {
	if s.LastMessage != nil && s.LastMessage.CreatedAt.After(s.Chat.CreatedAt) {
		return s.LastMessage.CreatedAt
	}
	return s.Chat.CreatedAt
}
