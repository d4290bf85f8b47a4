package services

import (
	"context"

	"circles/pkg/logger"

	"github.com/google/uuid"
)

type ctxKey string

var userIDKey ctxKey = "user_id"

// WithUserID stores the resolved caller on ctx and tags it for request logging.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return logger.WithUserID(ctx, userID.String())
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v := ctx.Value(userIDKey)
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
