package services

import (
	"context"
	"errors"
	"time"

	"circles/internal/domain/notification"
	"circles/internal/repository"
	circles_errors "circles/pkg/errors"
	"circles/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultEmitTimeout       = 5 * time.Second
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

var ErrBadgeStreamUnavailable = errors.New("badge stream unavailable")

type NotificationOptions struct {
	Cache       BadgeCache
	Publisher   BadgePublisher
	Subscriber  BadgeSubscriber
	Logger      *logger.Logger
	EmitTimeout time.Duration
}

type NotificationService struct {
	repo        repository.NotificationRepository
	cache       BadgeCache
	publisher   BadgePublisher
	subscriber  BadgeSubscriber
	log         *logger.Logger
	emitTimeout time.Duration
	now         func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, opts NotificationOptions) *NotificationService {
	if opts.Logger == nil {
		opts.Logger = logger.GetGlobalLogger()
	}
	if opts.EmitTimeout <= 0 {
		opts.EmitTimeout = defaultEmitTimeout
	}
	return &NotificationService{
		repo:        repo,
		cache:       opts.Cache,
		publisher:   opts.Publisher,
		subscriber:  opts.Subscriber,
		log:         opts.Logger.Named("notifications"),
		emitTimeout: opts.EmitTimeout,
		now:         time.Now,
	}
}

// Emit stores an unread notification for userID. Failures are logged and
// dropped; the caller's operation has already succeeded.
func (s *NotificationService) Emit(ctx context.Context, userID uuid.UUID, payload notification.Payload) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.emitTimeout)
	defer cancel()

	log := s.log.WithContext(ctx).Logger
	if payload == nil {
		log.Error("emit notification: nil payload", zap.Stringer("recipient", userID))
		return
	}

	n := notification.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Payload:   payload,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		log.Error("emit notification",
			zap.Stringer("recipient", userID),
			zap.String("type", string(payload.Type())),
			zap.Error(err))
		return
	}
	s.refreshBadge(ctx, userID)
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]notification.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	return s.repo.ListForUser(ctx, userID, limit)
}

// UnreadCount serves the badge from the cache when it holds a value.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if s.cache != nil {
		count, ok, err := s.cache.GetUnreadCount(ctx, userID)
		if err != nil {
			s.log.WithContext(ctx).Logger.Warn("read badge cache", zap.Stringer("user", userID), zap.Error(err))
		} else if ok {
			return count, nil
		}
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.SetUnreadCount(ctx, userID, count); err != nil {
			s.log.WithContext(ctx).Logger.Warn("fill badge cache", zap.Stringer("user", userID), zap.Error(err))
		}
	}
	return count, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	s.refreshBadge(ctx, userID)
	return nil
}

// ClearRead deletes the user's read notifications. The unread count is unchanged.
func (s *NotificationService) ClearRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.DeleteRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return circles_errors.ErrUnauthorized
	}
	if err := s.repo.Delete(ctx, notificationID); err != nil {
		return err
	}
	if !n.IsRead {
		s.refreshBadge(ctx, userID)
	}
	return nil
}

// Subscribe returns the current unread count and a channel of later counts.
// The channel closes when ctx is done.
func (s *NotificationService) Subscribe(ctx context.Context, userID uuid.UUID) (int, <-chan int, error) {
	if s.subscriber == nil {
		return 0, nil, ErrBadgeStreamUnavailable
	}
	updates, err := s.subscriber.SubscribeUnreadCount(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	count, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	return count, updates, nil
}

// refreshBadge stores the fresh count in the cache and publishes it. When
// the count cannot be read the cached value is dropped instead.
func (s *NotificationService) refreshBadge(ctx context.Context, userID uuid.UUID) {
	log := s.log.WithContext(ctx).Logger
	if s.cache == nil && s.publisher == nil {
		return
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		log.Warn("count unread for badge", zap.Stringer("user", userID), zap.Error(err))
		s.invalidateBadge(ctx, userID)
		return
	}
	if s.cache != nil {
		if err := s.cache.SetUnreadCount(ctx, userID, count); err != nil {
			log.Warn("write badge cache", zap.Stringer("user", userID), zap.Error(err))
			s.invalidateBadge(ctx, userID)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishUnreadCount(ctx, userID, count); err != nil {
			log.Warn("publish badge", zap.Stringer("user", userID), zap.Error(err))
		}
	}
}

func (s *NotificationService) invalidateBadge(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUnreadCount(ctx, userID); err != nil {
		s.log.WithContext(ctx).Logger.Warn("invalidate badge cache", zap.Stringer("user", userID), zap.Error(err))
	}
}
