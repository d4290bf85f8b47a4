package httpdto

import (
	"circles/internal/domain/notification"
)

type NotificationDTO struct {
	ID            string               `json:"id"`
	Type          string               `json:"type"`
	Payload       notification.Payload `json:"payload"`
	SchemaVersion int                  `json:"schemaVersion"`
	IsRead        bool                 `json:"isRead"`
	CreatedAt     string               `json:"createdAt"`
}

type UnreadCountDTO struct {
	Count int `json:"count"`
}

type ClearedDTO struct {
	Deleted int64 `json:"deleted"`
}

func FromNotifications(items []notification.Notification) []NotificationDTO {
	out := make([]NotificationDTO, 0, len(items))
	for _, n := range items {
		out = append(out, NotificationDTO{
			ID:            n.ID.String(),
			Type:          string(n.Type),
			Payload:       n.Payload,
			SchemaVersion: n.SchemaVersion,
			IsRead:        n.IsRead,
			CreatedAt:     formatTime(n.CreatedAt),
		})
	}
	return out
}
