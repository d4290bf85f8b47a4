package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"circles/internal/domain/group"
	"circles/internal/domain/notification"
	"circles/internal/repository"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

const defaultExploreLimit = 20

type GroupService struct {
	repo     repository.GroupRepository
	users    repository.UserRepository
	notifier Notifier
	now      func() time.Time
}

func NewGroupService(repo repository.GroupRepository, users repository.UserRepository, notifier Notifier) *GroupService {
	return &GroupService{repo: repo, users: users, notifier: notifier, now: time.Now}
}

// Create inserts the group and the creator's admin membership together.
func (s *GroupService) Create(ctx context.Context, creatorID uuid.UUID, in group.CreateInput) (group.Group, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Visibility == "" {
		in.Visibility = group.VisibilityPublic
	}
	if err := in.Validate(); err != nil {
		return group.Group{}, err
	}
	if _, err := s.users.GetByID(ctx, creatorID); err != nil {
		return group.Group{}, err
	}

	now := s.now()
	g := group.Group{
		ID:          uuid.New(),
		Name:        in.Name,
		Description: in.Description,
		Visibility:  in.Visibility,
		MinMembers:  in.MinMembers,
		MaxMembers:  in.MaxMembers,
		MemberCount: 1,
		CreatorID:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	creator := group.Member{GroupID: g.ID, UserID: creatorID, IsAdmin: true, JoinedAt: now}
	if err := s.repo.CreateWithCreator(ctx, &g, creator); err != nil {
		return group.Group{}, err
	}
	return g, nil
}

func (s *GroupService) Join(ctx context.Context, userID, groupID uuid.UUID) (group.Group, error) {
	g, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return group.Group{}, err
	}
	joiner, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return group.Group{}, err
	}

	m := group.Member{GroupID: groupID, UserID: userID, JoinedAt: s.now()}
	if err := s.repo.AddMember(ctx, m); err != nil {
		return group.Group{}, err
	}

	s.notifier.Emit(ctx, g.CreatorID, notification.MemberJoined{
		GroupID:    g.ID,
		GroupName:  g.Name,
		MemberID:   userID,
		MemberName: joiner.DisplayName,
	})

	if updated, err := s.repo.GetByID(ctx, groupID); err == nil {
		return updated, nil
	}
	g.MemberCount++
	return g, nil
}

func (s *GroupService) Promote(ctx context.Context, actingUserID, groupID, targetUserID uuid.UUID) error {
	return s.setAdmin(ctx, actingUserID, groupID, targetUserID, true)
}

func (s *GroupService) Demote(ctx context.Context, actingUserID, groupID, targetUserID uuid.UUID) error {
	return s.setAdmin(ctx, actingUserID, groupID, targetUserID, false)
}

func (s *GroupService) setAdmin(ctx context.Context, actingUserID, groupID, targetUserID uuid.UUID, isAdmin bool) error {
	g, err := s.creatorGroup(ctx, actingUserID, groupID)
	if err != nil {
		return err
	}
	if g.IsCreator(targetUserID) {
		if isAdmin {
			return nil
		}
		return circles_errors.ErrInvalidState
	}

	changed, err := s.repo.SetAdmin(ctx, groupID, targetUserID, isAdmin)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	action := s.groupAction(ctx, g, actingUserID)
	if isAdmin {
		s.notifier.Emit(ctx, targetUserID, notification.MemberPromoted(action))
	} else {
		s.notifier.Emit(ctx, targetUserID, notification.MemberDemoted(action))
	}
	return nil
}

// Remove takes targetUserID out of the group. Only the creator may do it and
// the creator cannot be removed.
func (s *GroupService) Remove(ctx context.Context, actingUserID, groupID, targetUserID uuid.UUID) error {
	g, err := s.creatorGroup(ctx, actingUserID, groupID)
	if err != nil {
		return err
	}
	if g.IsCreator(targetUserID) {
		return circles_errors.ErrInvalidState
	}
	if err := s.repo.RemoveMember(ctx, groupID, targetUserID, s.now()); err != nil {
		return err
	}
	s.notifier.Emit(ctx, targetUserID, notification.MemberRemoved(s.groupAction(ctx, g, actingUserID)))
	return nil
}

// Leave removes the caller's own membership. Creators delete instead.
func (s *GroupService) Leave(ctx context.Context, userID, groupID uuid.UUID) error {
	g, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if g.IsCreator(userID) {
		return circles_errors.ErrInvalidState
	}
	return s.repo.RemoveMember(ctx, groupID, userID, s.now())
}

func (s *GroupService) UpdateSettings(ctx context.Context, actingUserID, groupID uuid.UUID, patch group.SettingsPatch) (group.Group, error) {
	g, err := s.creatorGroup(ctx, actingUserID, groupID)
	if err != nil {
		return group.Group{}, err
	}
	updated, err := g.Apply(patch)
	if err != nil {
		return group.Group{}, err
	}
	if updated.MaxMembers < updated.MemberCount {
		return group.Group{}, circles_errors.ErrCapacityExceeded
	}
	updated.UpdatedAt = s.now()
	if err := s.repo.UpdateSettings(ctx, updated); err != nil {
		return group.Group{}, err
	}
	return s.repo.GetByID(ctx, groupID)
}

// Delete removes the group with its memberships, responses and votes, then
// tells every former member except the actor.
func (s *GroupService) Delete(ctx context.Context, actingUserID, groupID uuid.UUID) error {
	g, err := s.creatorGroup(ctx, actingUserID, groupID)
	if err != nil {
		return err
	}
	memberIDs, err := s.repo.Delete(ctx, groupID)
	if err != nil {
		return err
	}

	payload := notification.GroupDeleted{GroupName: g.Name, AdminName: s.displayName(ctx, actingUserID)}
	for _, id := range memberIDs {
		if id == actingUserID {
			continue
		}
		s.notifier.Emit(ctx, id, payload)
	}
	return nil
}

func (s *GroupService) Get(ctx context.Context, groupID uuid.UUID) (group.Group, error) {
	return s.repo.GetByID(ctx, groupID)
}

// Members lists the roster with profiles, creator first.
func (s *GroupService) Members(ctx context.Context, groupID uuid.UUID) ([]group.MemberProfile, error) {
	if _, err := s.repo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, groupID)
}

func (s *GroupService) ListForUser(ctx context.Context, userID uuid.UUID) ([]group.Group, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *GroupService) ListPublic(ctx context.Context, limit int) ([]group.Group, error) {
	if limit <= 0 {
		limit = defaultExploreLimit
	}
	return s.repo.ListPublic(ctx, limit)
}

func (s *GroupService) ListCreatedBy(ctx context.Context, userID uuid.UUID) ([]group.Group, error) {
	return s.repo.ListCreatedBy(ctx, userID)
}

// IsAdmin reports whether userID administers the group. Non-members are not admins.
func (s *GroupService) IsAdmin(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	g, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return false, err
	}
	if g.IsCreator(userID) {
		return true, nil
	}
	m, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, circles_errors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return group.IsAdmin(g, m), nil
}

// creatorGroup loads the group and checks that actingUserID created it.
func (s *GroupService) creatorGroup(ctx context.Context, actingUserID, groupID uuid.UUID) (group.Group, error) {
	g, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return group.Group{}, err
	}
	if !g.IsCreator(actingUserID) {
		return group.Group{}, circles_errors.ErrUnauthorized
	}
	return g, nil
}

func (s *GroupService) groupAction(ctx context.Context, g group.Group, adminID uuid.UUID) notification.GroupAction {
	return notification.GroupAction{GroupID: g.ID, GroupName: g.Name, AdminName: s.displayName(ctx, adminID)}
}

func (s *GroupService) displayName(ctx context.Context, userID uuid.UUID) string {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ""
	}
	return u.DisplayName
}
