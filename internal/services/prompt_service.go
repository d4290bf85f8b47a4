package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"circles/internal/domain/notification"
	"circles/internal/domain/prompt"
	"circles/internal/domain/user"
	"circles/internal/repository"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

const (
	defaultPastLimit     = 10
	defaultUpcomingLimit = 5
	defaultFeedLimit     = 20
)

type PromptService struct {
	prompts     repository.PromptRepository
	groups      repository.GroupRepository
	connections repository.ConnectionRepository
	notifier    Notifier
	now         func() time.Time
}

func NewPromptService(prompts repository.PromptRepository, groups repository.GroupRepository, connections repository.ConnectionRepository, notifier Notifier) *PromptService {
	return &PromptService{prompts: prompts, groups: groups, connections: connections, notifier: notifier, now: time.Now}
}

// ActivePrompt is the prompt with the latest activeAt not after now.
func (s *PromptService) ActivePrompt(ctx context.Context, now time.Time) (prompt.Prompt, error) {
	return s.prompts.GetActive(ctx, now)
}

func (s *PromptService) Visibility(p prompt.Prompt, now time.Time) prompt.Visibility {
	return prompt.VisibilityAt(p, now)
}

// SubmitResponse records or replaces the caller's answer to the active prompt
// in one group.
func (s *PromptService) SubmitResponse(ctx context.Context, userID, groupID uuid.UUID, content string, now time.Time) (prompt.Response, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return prompt.Response{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return prompt.Response{}, circles_errors.ErrInvalidInput
	}
	active, err := s.prompts.GetActive(ctx, now)
	if err != nil {
		return prompt.Response{}, err
	}

	return s.prompts.UpsertResponse(ctx, prompt.Response{
		ID:        uuid.New(),
		PromptID:  active.ID,
		GroupID:   groupID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// ListResponses returns the group's answers to the active prompt. Until the
// reveal only the caller's own answer is included.
func (s *PromptService) ListResponses(ctx context.Context, groupID, callerID uuid.UUID, now time.Time) (prompt.ResponseList, error) {
	if err := s.requireMember(ctx, groupID, callerID); err != nil {
		return prompt.ResponseList{}, err
	}
	active, err := s.prompts.GetActive(ctx, now)
	if err != nil {
		return prompt.ResponseList{}, err
	}
	count, err := s.prompts.CountResponses(ctx, active.ID, groupID)
	if err != nil {
		return prompt.ResponseList{}, err
	}

	list := prompt.ResponseList{
		Prompt:        active,
		ResponseCount: count,
		IsRevealed:    active.IsRevealed(now),
		RevealAt:      active.RevealAt,
		Responses:     []prompt.ResponseWithAuthor{},
	}
	if list.IsRevealed {
		all, err := s.prompts.ListResponses(ctx, active.ID, groupID)
		if err != nil {
			return prompt.ResponseList{}, err
		}
		if all != nil {
			list.Responses = all
		}
		return list, nil
	}

	own, err := s.prompts.GetUserResponse(ctx, active.ID, groupID, callerID)
	switch {
	case err == nil:
		list.Responses = append(list.Responses, own)
	case !errors.Is(err, circles_errors.ErrNotFound):
		return prompt.ResponseList{}, err
	}
	return list, nil
}

func (s *PromptService) CreatePrompt(ctx context.Context, in prompt.CreateInput) (prompt.Prompt, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := in.Validate(); err != nil {
		return prompt.Prompt{}, err
	}
	p := prompt.Prompt{
		ID:        uuid.New(),
		Content:   in.Content,
		ActiveAt:  in.ActiveAt,
		RevealAt:  in.RevealAt,
		CreatedAt: s.now(),
	}
	if err := s.prompts.Create(ctx, &p); err != nil {
		return prompt.Prompt{}, err
	}
	return p, nil
}

func (s *PromptService) PastPrompts(ctx context.Context, now time.Time, limit int) ([]prompt.Prompt, error) {
	if limit <= 0 {
		limit = defaultPastLimit
	}
	return s.prompts.ListPast(ctx, now, limit)
}

func (s *PromptService) UpcomingPrompts(ctx context.Context, now time.Time, limit int) ([]prompt.Prompt, error) {
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	return s.prompts.ListUpcoming(ctx, now, limit)
}

// ResponseCount counts the group's answers to the active prompt, zero when
// no prompt is active. Only members of the group may ask.
func (s *PromptService) ResponseCount(ctx context.Context, groupID, callerID uuid.UUID, now time.Time) (int, error) {
	if err := s.requireMember(ctx, groupID, callerID); err != nil {
		return 0, err
	}
	active, err := s.prompts.GetActive(ctx, now)
	if errors.Is(err, circles_errors.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return s.prompts.CountResponses(ctx, active.ID, groupID)
}

// Vote toggles voterID's vote on a revealed response and reports whether the
// vote is now in place.
func (s *PromptService) Vote(ctx context.Context, responseID, voterID uuid.UUID, now time.Time) (bool, error) {
	r, err := s.prompts.GetResponse(ctx, responseID)
	if err != nil {
		return false, err
	}
	p, err := s.prompts.GetByID(ctx, r.PromptID)
	if err != nil {
		return false, err
	}
	if !p.IsRevealed(now) {
		return false, circles_errors.ErrInvalidState
	}
	if r.UserID == voterID {
		return false, circles_errors.ErrSelfReference
	}
	if err := s.requireMember(ctx, r.GroupID, voterID); err != nil {
		return false, err
	}

	voted, err := s.prompts.ToggleVote(ctx, responseID, voterID, now)
	if err != nil {
		return false, err
	}
	if voted {
		s.notifier.Emit(ctx, r.UserID, notification.VoteReceived{ResponseID: responseID, VoterID: voterID})
	}
	return voted, nil
}

// UserFeed lists userID's responses, newest first. Other viewers only see
// responses to revealed prompts.
func (s *PromptService) UserFeed(ctx context.Context, viewerID, userID uuid.UUID, limit int, now time.Time) ([]prompt.FeedEntry, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	entries, err := s.prompts.ListUserFeed(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if viewerID == userID {
		return entries, nil
	}
	visible := entries[:0]
	for _, e := range entries {
		if e.Prompt.IsRevealed(now) {
			visible = append(visible, e)
		}
	}
	return visible, nil
}

func (s *PromptService) UserStats(ctx context.Context, userID uuid.UUID) (user.Stats, error) {
	responses, votes, err := s.prompts.UserResponseStats(ctx, userID)
	if err != nil {
		return user.Stats{}, err
	}
	friends, err := s.connections.CountFriends(ctx, userID)
	if err != nil {
		return user.Stats{}, err
	}
	return user.Stats{ResponseCount: responses, TotalVotesReceived: votes, FriendCount: friends}, nil
}

func (s *PromptService) requireMember(ctx context.Context, groupID, userID uuid.UUID) error {
	_, err := s.groups.GetMember(ctx, groupID, userID)
	if errors.Is(err, circles_errors.ErrNotFound) {
		return circles_errors.ErrUnauthorized
	}
	return err
}
