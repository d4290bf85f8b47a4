package chat

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIsUnreadBy(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := Chat{ParticipantA: a, ParticipantB: b}

	fromA := Message{SenderID: a, CreatedAt: base}
	if !IsUnreadBy(c, fromA, b) {
		t.Error("missing watermark should count every message from the other side")
	}
	if IsUnreadBy(c, fromA, a) {
		t.Error("own messages are never unread")
	}

	c.LastReadB = sql.NullTime{Time: base, Valid: true}
	if IsUnreadBy(c, fromA, b) {
		t.Error("message at the watermark should be read")
	}
	if !IsUnreadBy(c, Message{SenderID: a, CreatedAt: base.Add(time.Millisecond)}, b) {
		t.Error("message after the watermark should be unread")
	}
}

func TestSummaryLastActivity(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Summary{Chat: Chat{CreatedAt: created}}
	if !s.LastActivity().Equal(created) {
		t.Errorf("LastActivity = %v, want %v", s.LastActivity(), created)
	}
	later := created.Add(time.Hour)
	s.LastMessage = &Message{CreatedAt: later}
	if !s.LastActivity().Equal(later) {
		t.Errorf("LastActivity = %v, want %v", s.LastActivity(), later)
	}
}
