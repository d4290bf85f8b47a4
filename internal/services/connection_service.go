package services

import (
	"context"
	"errors"
	"time"

	"circles/internal/domain/connection"
	"circles/internal/domain/notification"
	"circles/internal/domain/user"
	"circles/internal/repository"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

type ConnectionService struct {
	repo     repository.ConnectionRepository
	users    repository.UserRepository
	notifier Notifier
	now      func() time.Time
}

func NewConnectionService(repo repository.ConnectionRepository, users repository.UserRepository, notifier Notifier) *ConnectionService {
	return &ConnectionService{repo: repo, users: users, notifier: notifier, now: time.Now}
}

// SendRequest creates a pending connection. Any existing row for the pair,
// in either direction and any status, blocks a new one.
func (s *ConnectionService) SendRequest(ctx context.Context, requesterID, recipientID uuid.UUID) (connection.Connection, error) {
	if requesterID == recipientID {
		return connection.Connection{}, circles_errors.ErrSelfReference
	}
	recipient, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		return connection.Connection{}, err
	}
	if recipient.IsDeleted() {
		return connection.Connection{}, circles_errors.ErrNotFound
	}
	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return connection.Connection{}, err
	}

	now := s.now()
	c := connection.Connection{
		ID:          uuid.New(),
		RequesterID: requesterID,
		RecipientID: recipientID,
		Status:      connection.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, &c); err != nil {
		return connection.Connection{}, err
	}

	s.notifier.Emit(ctx, recipientID, notification.FriendRequest{
		FromUserID: requesterID,
		FromName:   requester.DisplayName,
	})
	return c, nil
}

// Respond accepts or rejects a pending request addressed to actingUserID.
func (s *ConnectionService) Respond(ctx context.Context, connectionID uuid.UUID, accept bool, actingUserID uuid.UUID) (connection.Connection, error) {
	status := connection.StatusRejected
	if accept {
		status = connection.StatusAccepted
	}

	ok, err := s.repo.TransitionFromPending(ctx, connectionID, actingUserID, status, s.now())
	if err != nil {
		return connection.Connection{}, err
	}
	c, err := s.repo.GetByID(ctx, connectionID)
	if err != nil {
		return connection.Connection{}, err
	}
	if !ok {
		if c.RecipientID != actingUserID {
			return connection.Connection{}, circles_errors.ErrNotFound
		}
		return connection.Connection{}, circles_errors.ErrInvalidState
	}

	actor, err := s.users.GetByID(ctx, actingUserID)
	if err != nil {
		return c, nil
	}
	from := notification.FriendActor{FromUserID: actingUserID, FromName: actor.DisplayName}
	if accept {
		s.notifier.Emit(ctx, c.RequesterID, notification.FriendRequestAccepted(from))
	} else {
		s.notifier.Emit(ctx, c.RequesterID, notification.FriendRequestDeclined(from))
	}
	return c, nil
}

func (s *ConnectionService) Status(ctx context.Context, callerID, otherID uuid.UUID) (connection.StatusView, error) {
	if callerID == otherID {
		return connection.StatusView{Relation: connection.RelationSelf}, nil
	}
	c, err := s.repo.GetByPair(ctx, callerID, otherID)
	if errors.Is(err, circles_errors.ErrNotFound) {
		return connection.StatusView{Relation: connection.RelationNone}, nil
	}
	if err != nil {
		return connection.StatusView{}, err
	}
	return connection.StatusView{
		Relation:     c.RelationTo(callerID),
		ConnectionID: uuid.NullUUID{UUID: c.ID, Valid: true},
	}, nil
}

func (s *ConnectionService) Friends(ctx context.Context, userID uuid.UUID) ([]user.Profile, error) {
	friends, err := s.repo.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	profiles := make([]user.Profile, 0, len(friends))
	for _, f := range friends {
		profiles = append(profiles, f.Profile())
	}
	return profiles, nil
}

// IncomingRequests lists pending requests addressed to userID, newest first.
func (s *ConnectionService) IncomingRequests(ctx context.Context, userID uuid.UUID) ([]connection.Request, error) {
	return s.repo.ListIncoming(ctx, userID)
}

func (s *ConnectionService) RemoveFriend(ctx context.Context, actingUserID, friendID uuid.UUID) error {
	if actingUserID == friendID {
		return circles_errors.ErrSelfReference
	}
	ok, err := s.repo.DeleteAccepted(ctx, actingUserID, friendID)
	if err != nil {
		return err
	}
	if !ok {
		return circles_errors.ErrNotFound
	}
	return nil
}

func (s *ConnectionService) FriendCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountFriends(ctx, userID)
}
