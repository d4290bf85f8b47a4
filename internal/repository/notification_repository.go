package repository

import (
	"context"
	"fmt"

	"circles/internal/domain/notification"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

const notificationColumns = "id, user_id, type, payload, schema_version, is_read, created_at"

func scanNotification(row scanner) (notification.Notification, error) {
	var n notification.Notification
	var payload string
	var createdAt int64
	if err := row.Scan(&n.ID, &n.UserID, &n.Type, &payload, &n.SchemaVersion, &n.IsRead, &createdAt); err != nil {
		return notification.Notification{}, err
	}
	p, err := notification.Decode(n.Type, n.SchemaVersion, []byte(payload))
	if err != nil {
		return notification.Notification{}, err
	}
	n.Payload = p
	n.CreatedAt = fromMillis(createdAt)
	return n, nil
}

type SQLNotificationRepository struct {
	db *Conn
}

func NewNotificationRepository(db *Conn) NotificationRepository {
	return &SQLNotificationRepository{db: db}
}

func (r *SQLNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	data, version, err := notification.Encode(n.Payload)
	if err != nil {
		return err
	}
	n.Type = n.Payload.Type()
	n.SchemaVersion = version

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, payload, schema_version, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.UserID, n.Type, string(data), n.SchemaVersion, n.IsRead, toMillis(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *SQLNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (notification.Notification, error) {
	n, err := scanNotification(r.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	return n, notFound(err)
}

func (r *SQLNotificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]notification.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *SQLNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = $2`, userID, false).Scan(&n)
	return n, err
}

func (r *SQLNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = $2 WHERE user_id = $1 AND is_read = $3`, userID, true, false)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res)
}

func (r *SQLNotificationRepository) DeleteRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE user_id = $1 AND is_read = $2`, userID, true)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res)
}

func (r *SQLNotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return circles_errors.ErrNotFound
	}
	return nil
}
