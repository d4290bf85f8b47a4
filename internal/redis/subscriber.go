package redis

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Subscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// SubscribeUnreadCount streams the badge counts published for userID until
// ctx is done. The returned channel is closed when the subscription ends.
func (s *Subscriber) SubscribeUnreadCount(ctx context.Context, userID uuid.UUID) (<-chan int, error) {
	sub := s.client.Subscribe(ctx, NotificationChannel(userID))
	// Wait for the subscription to be confirmed so no update published after
	// this call returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan int, 8)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			msg, err := sub.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			update, err := DecodeBadgeUpdate([]byte(msg.Payload))
			if err != nil {
				continue
			}
			select {
			case out <- update.UnreadCount:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func DecodeBadgeUpdate(payload []byte) (BadgeUpdate, error) {
	var update BadgeUpdate
	err := json.Unmarshal(payload, &update)
	return update, err
}
