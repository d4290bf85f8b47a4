package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"circles/internal/domain/chat"
	"circles/internal/domain/user"
	"circles/internal/repository"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

const (
	defaultMessageLimit = 100
	maxMessageLimit     = 500
)

type ChatService struct {
	repo  repository.ChatRepository
	users repository.UserRepository
	now   func() time.Time
}

func NewChatService(repo repository.ChatRepository, users repository.UserRepository) *ChatService {
	return &ChatService{repo: repo, users: users, now: time.Now}
}

// GetOrCreate returns the single chat between userA and userB, creating it
// with userA as participant A when none exists.
func (s *ChatService) GetOrCreate(ctx context.Context, userA, userB uuid.UUID) (chat.Chat, error) {
	if userA == userB {
		return chat.Chat{}, circles_errors.ErrSelfReference
	}
	other, err := s.users.GetByID(ctx, userB)
	if err != nil {
		return chat.Chat{}, err
	}
	if other.IsDeleted() {
		return chat.Chat{}, circles_errors.ErrNotFound
	}
	return s.repo.GetOrCreate(ctx, chat.Chat{
		ID:           uuid.New(),
		ParticipantA: userA,
		ParticipantB: userB,
		CreatedAt:    s.now(),
	})
}

func (s *ChatService) Send(ctx context.Context, chatID, senderID uuid.UUID, content string) (chat.Message, error) {
	if _, err := s.participantChat(ctx, chatID, senderID); err != nil {
		return chat.Message{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return chat.Message{}, circles_errors.ErrInvalidInput
	}
	m := chat.Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateMessage(ctx, &m); err != nil {
		return chat.Message{}, err
	}
	return m, nil
}

// MarkRead moves readerID's watermark to now. The other participant's is untouched.
func (s *ChatService) MarkRead(ctx context.Context, chatID, readerID uuid.UUID, now time.Time) error {
	if _, err := s.participantChat(ctx, chatID, readerID); err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, chatID, readerID, now)
}

// UnreadCount counts messages from the other participant after viewerID's watermark.
func (s *ChatService) UnreadCount(ctx context.Context, c chat.Chat, viewerID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, c.ID, viewerID, c.WatermarkFor(viewerID))
}

// ListForUser returns the user's chats, most recently active first.
func (s *ChatService) ListForUser(ctx context.Context, userID uuid.UUID) ([]chat.Summary, error) {
	chats, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	otherIDs := make([]uuid.UUID, 0, len(chats))
	for _, c := range chats {
		otherIDs = append(otherIDs, c.Other(userID))
	}
	others, err := s.users.GetByIDs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]chat.Summary, 0, len(chats))
	for _, c := range chats {
		summary, err := s.summarize(ctx, c, userID, others[c.Other(userID)])
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	slices.SortStableFunc(summaries, func(a, b chat.Summary) int {
		return b.LastActivity().Compare(a.LastActivity())
	})
	return summaries, nil
}

func (s *ChatService) Get(ctx context.Context, chatID, viewerID uuid.UUID) (chat.Summary, error) {
	c, err := s.participantChat(ctx, chatID, viewerID)
	if err != nil {
		return chat.Summary{}, err
	}
	other, err := s.users.GetByID(ctx, c.Other(viewerID))
	if err != nil {
		return chat.Summary{}, err
	}
	return s.summarize(ctx, c, viewerID, other)
}

// Messages returns the latest messages of the chat in ascending order.
func (s *ChatService) Messages(ctx context.Context, chatID, viewerID uuid.UUID, limit int) ([]chat.Message, error) {
	if _, err := s.participantChat(ctx, chatID, viewerID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}
	return s.repo.ListMessages(ctx, chatID, limit)
}

func (s *ChatService) participantChat(ctx context.Context, chatID, userID uuid.UUID) (chat.Chat, error) {
	c, err := s.repo.GetByID(ctx, chatID)
	if err != nil {
		return chat.Chat{}, err
	}
	if !c.HasParticipant(userID) {
		return chat.Chat{}, circles_errors.ErrUnauthorized
	}
	return c, nil
}

func (s *ChatService) summarize(ctx context.Context, c chat.Chat, viewerID uuid.UUID, other user.User) (chat.Summary, error) {
	summary := chat.Summary{Chat: c, Other: other.Profile()}

	last, err := s.repo.LatestMessage(ctx, c.ID)
	switch {
	case err == nil:
		summary.LastMessage = &last
	case !errors.Is(err, circles_errors.ErrNotFound):
		return chat.Summary{}, err
	}

	if summary.UnreadCount, err = s.UnreadCount(ctx, c, viewerID); err != nil {
		return chat.Summary{}, err
	}
	return summary, nil
}
