package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BadgeUpdate is the message carried on a user's notification channel.
type BadgeUpdate struct {
	UserID      uuid.UUID `json:"userId"`
	UnreadCount int       `json:"unreadCount"`
}

// NotificationChannel is the pub/sub channel for one user's badge updates.
func NotificationChannel(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:user:%s", userID.String())
}

type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.client.Publish(ctx, channel, payload).Err()
}

func (p *Publisher) PublishUnreadCount(ctx context.Context, userID uuid.UUID, count int) error {
	payload, err := json.Marshal(BadgeUpdate{UserID: userID, UnreadCount: count})
	if err != nil {
		return err
	}
	return p.Publish(ctx, NotificationChannel(userID), payload)
}
