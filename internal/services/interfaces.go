package services

import (
	"context"

	"circles/internal/domain/notification"
	"circles/internal/storage"

	"github.com/google/uuid"
)

// Notifier delivers a notification to one user. Implementations never fail
// the caller.
type Notifier interface {
	Emit(ctx context.Context, userID uuid.UUID, payload notification.Payload)
}

// BadgeCache holds each user's unread notification count.
type BadgeCache interface {
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, bool, error)
	SetUnreadCount(ctx context.Context, userID uuid.UUID, count int) error
	InvalidateUnreadCount(ctx context.Context, userID uuid.UUID) error
}

type BadgePublisher interface {
	PublishUnreadCount(ctx context.Context, userID uuid.UUID, count int) error
}

type BadgeSubscriber interface {
	SubscribeUnreadCount(ctx context.Context, userID uuid.UUID) (<-chan int, error)
}

type AvatarPresigner interface {
	PresignAvatarUpload(ctx context.Context, userID uuid.UUID, contentType string) (storage.AvatarUpload, error)
}
