package prompt

import (
	"strings"
	"time"

	"circles/internal/domain/user"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

// Prompt represents the prompts table. Prompts are global: every group
// answers the same one.
type Prompt struct {
	ID        uuid.UUID
	Content   string
	ActiveAt  time.Time
	RevealAt  time.Time
	CreatedAt time.Time
}

func (p Prompt) IsActiveAt(now time.Time) bool {
	return !now.Before(p.ActiveAt)
}

// IsRevealed reports whether responses to p are visible at now.
func (p Prompt) IsRevealed(now time.Time) bool {
	return !now.Before(p.RevealAt)
}

type Visibility string

const (
	VisibilityHidden   Visibility = "hidden"
	VisibilityRevealed Visibility = "revealed"
)

// VisibilityAt is monotonic in now: once revealed, always revealed.
func VisibilityAt(p Prompt, now time.Time) Visibility {
	if p.IsRevealed(now) {
		return VisibilityRevealed
	}
	return VisibilityHidden
}

type CreateInput struct {
	Content  string
	ActiveAt time.Time
	RevealAt time.Time
}

func (in CreateInput) Validate() error {
	if strings.TrimSpace(in.Content) == "" || in.ActiveAt.IsZero() || in.RevealAt.Before(in.ActiveAt) {
		return circles_errors.ErrInvalidInput
	}
	return nil
}

// Response represents the responses table. One per (prompt, group, user).
type Response struct {
	ID        uuid.UUID
	PromptID  uuid.UUID
	GroupID   uuid.UUID
	UserID    uuid.UUID
	Content   string
	VoteCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ResponseWithAuthor struct {
	Response
	Author user.Profile
}

// ResponseList is the gated view of a group's responses to one prompt.
// While hidden, Responses holds at most the caller's own response.
type ResponseList struct {
	Prompt        Prompt
	Responses     []ResponseWithAuthor
	ResponseCount int
	IsRevealed    bool
	RevealAt      time.Time
}

// FeedEntry is one of a user's responses with its prompt and group.
type FeedEntry struct {
	Response  Response
	Prompt    Prompt
	GroupName string
}
