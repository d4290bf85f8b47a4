package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"circles/internal/domain/connection"
	"circles/internal/domain/user"
	"circles/internal/repository"
	"circles/internal/storage"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
	handleAttempts     = 4
)

var ErrAvatarUploadsDisabled = errors.New("avatar uploads are not configured")

// SearchResult is a matching user annotated with the caller's relation to them.
type SearchResult struct {
	Profile      user.Profile
	Relation     connection.Relation
	ConnectionID uuid.NullUUID
}

type UserService struct {
	repo        repository.UserRepository
	connections *ConnectionService
	groups      *GroupService
	avatars     AvatarPresigner
	now         func() time.Time
}

func NewUserService(repo repository.UserRepository, connections *ConnectionService, groups *GroupService, avatars AvatarPresigner) *UserService {
	return &UserService{repo: repo, connections: connections, groups: groups, avatars: avatars, now: time.Now}
}

// EnsureUser returns the account bound to the identity's subject, creating it
// on first sign-in. A taken handle gets a numeric suffix.
func (s *UserService) EnsureUser(ctx context.Context, id user.Identity) (user.User, error) {
	if strings.TrimSpace(id.Subject) == "" {
		return user.User{}, circles_errors.ErrUnauthenticated
	}
	existing, err := s.repo.GetByExternalID(ctx, id.Subject)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, circles_errors.ErrNotFound) {
		return user.User{}, err
	}

	displayName := strings.TrimSpace(id.DisplayName)
	if displayName == "" {
		displayName = strings.TrimSpace(id.Username)
	}
	if displayName == "" {
		displayName = "New user"
	}

	base := user.DeriveHandle(id)
	now := s.now()
	for attempt := 0; attempt < handleAttempts; attempt++ {
		handle := base
		if attempt > 0 {
			handle = fmt.Sprintf("%s_%d", base, 1000+rand.IntN(9000))
		}
		u := user.User{
			ID:          uuid.New(),
			ExternalID:  sql.NullString{String: id.Subject, Valid: true},
			DisplayName: displayName,
			Handle:      sql.NullString{String: handle, Valid: true},
			AvatarURL:   id.AvatarURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		err := s.repo.Create(ctx, &u)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, circles_errors.ErrAlreadyExists) {
			return user.User{}, err
		}
		// A concurrent sign-in may have created the account.
		if existing, err := s.repo.GetByExternalID(ctx, id.Subject); err == nil {
			return existing, nil
		}
	}
	return user.User{}, circles_errors.ErrAlreadyExists
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (user.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, patch user.ProfilePatch) (user.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	if u.IsDeleted() {
		return user.User{}, circles_errors.ErrNotFound
	}

	if patch.DisplayName != nil {
		name := strings.TrimSpace(*patch.DisplayName)
		if name == "" {
			return user.User{}, circles_errors.ErrInvalidInput
		}
		u.DisplayName = name
	}
	if patch.Handle != nil {
		handle := user.NormalizeHandle(*patch.Handle)
		if handle == "" {
			return user.User{}, circles_errors.ErrInvalidInput
		}
		u.Handle = sql.NullString{String: handle, Valid: true}
	}
	if patch.AvatarURL != nil {
		u.AvatarURL = strings.TrimSpace(*patch.AvatarURL)
	}
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// Search matches display names and handles, excluding the caller.
func (s *UserService) Search(ctx context.Context, callerID uuid.UUID, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	found, err := s.repo.Search(ctx, query, callerID, limit)
	if err != nil {
		return nil, err
	}
	results := make([]SearchResult, 0, len(found))
	for _, u := range found {
		view, err := s.connections.Status(ctx, callerID, u.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{
			Profile:      u.Profile(),
			Relation:     view.Relation,
			ConnectionID: view.ConnectionID,
		})
	}
	return results, nil
}

// AvatarUploadURL presigns an upload for a new avatar image. The client sets
// the returned public URL on its profile once the upload completes.
func (s *UserService) AvatarUploadURL(ctx context.Context, userID uuid.UUID, contentType string) (storage.AvatarUpload, error) {
	if s.avatars == nil {
		return storage.AvatarUpload{}, ErrAvatarUploadsDisabled
	}
	if _, err := storage.AvatarExtension(contentType); err != nil {
		return storage.AvatarUpload{}, circles_errors.ErrInvalidInput
	}
	return s.avatars.PresignAvatarUpload(ctx, userID, contentType)
}

// DeleteAccount deletes the groups the user created, then tombstones the account.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return err
	}
	created, err := s.groups.ListCreatedBy(ctx, userID)
	if err != nil {
		return err
	}
	for _, g := range created {
		if err := s.groups.Delete(ctx, userID, g.ID); err != nil && !errors.Is(err, circles_errors.ErrNotFound) {
			return fmt.Errorf("delete group %s: %w", g.ID, err)
		}
	}
	return s.repo.Tombstone(ctx, userID, s.now())
}
