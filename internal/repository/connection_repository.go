package repository

import (
	"context"
	"time"

	"circles/internal/domain"
	"circles/internal/domain/connection"
	"circles/internal/domain/user"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

const connectionColumns = "id, requester_id, recipient_id, status, created_at, updated_at"

func scanConnection(row scanner) (connection.Connection, error) {
	var c connection.Connection
	var createdAt, updatedAt int64
	if err := row.Scan(&c.ID, &c.RequesterID, &c.RecipientID, &c.Status, &createdAt, &updatedAt); err != nil {
		return connection.Connection{}, err
	}
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}

type SQLConnectionRepository struct {
	db *Conn
}

func NewConnectionRepository(db *Conn) ConnectionRepository {
	return &SQLConnectionRepository{db: db}
}

// Create inserts c. The pair_key constraint rejects a second row for the same
// unordered pair regardless of direction or status.
func (r *SQLConnectionRepository) Create(ctx context.Context, c *connection.Connection) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO connections (id, requester_id, recipient_id, pair_key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.RequesterID, c.RecipientID, domain.PairKey(c.RequesterID, c.RecipientID),
		c.Status, toMillis(c.CreatedAt), toMillis(c.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return circles_errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *SQLConnectionRepository) GetByID(ctx context.Context, id uuid.UUID) (connection.Connection, error) {
	c, err := scanConnection(r.db.QueryRowContext(ctx,
		`SELECT `+connectionColumns+` FROM connections WHERE id = $1`, id))
	return c, notFound(err)
}

func (r *SQLConnectionRepository) GetByPair(ctx context.Context, a, b uuid.UUID) (connection.Connection, error) {
	c, err := scanConnection(r.db.QueryRowContext(ctx,
		`SELECT `+connectionColumns+` FROM connections WHERE pair_key = $1`, domain.PairKey(a, b)))
	return c, notFound(err)
}

func (r *SQLConnectionRepository) TransitionFromPending(ctx context.Context, id, recipientID uuid.UUID, status connection.Status, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE connections SET status = $3, updated_at = $4
		WHERE id = $1 AND recipient_id = $2 AND status = $5`,
		id, recipientID, status, toMillis(at), connection.StatusPending)
	if err != nil {
		return false, err
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *SQLConnectionRepository) ListFriends(ctx context.Context, userID uuid.UUID) ([]user.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumnsAs("u")+`
		FROM connections c
		JOIN users u ON u.id = CASE WHEN c.requester_id = $1 THEN c.recipient_id ELSE c.requester_id END
		WHERE (c.requester_id = $1 OR c.recipient_id = $1) AND c.status = $2
		ORDER BY u.display_name ASC, u.id ASC`,
		userID, connection.StatusAccepted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friends []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		friends = append(friends, u)
	}
	return friends, rows.Err()
}

func (r *SQLConnectionRepository) ListIncoming(ctx context.Context, userID uuid.UUID) ([]connection.Request, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.requester_id, c.recipient_id, c.status, c.created_at, c.updated_at, `+userColumnsAs("u")+`
		FROM connections c
		JOIN users u ON u.id = c.requester_id
		WHERE c.recipient_id = $1 AND c.status = $2
		ORDER BY c.created_at DESC, c.id DESC`,
		userID, connection.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []connection.Request
	for rows.Next() {
		var c connection.Connection
		var createdAt, updatedAt int64
		u, err := scanUser(rows, &c.ID, &c.RequesterID, &c.RecipientID, &c.Status, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}
		c.CreatedAt = fromMillis(createdAt)
		c.UpdatedAt = fromMillis(updatedAt)
		requests = append(requests, connection.Request{Connection: c, Requester: u.Profile()})
	}
	return requests, rows.Err()
}

func (r *SQLConnectionRepository) DeleteAccepted(ctx context.Context, a, b uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM connections WHERE pair_key = $1 AND status = $2`,
		domain.PairKey(a, b), connection.StatusAccepted)
	if err != nil {
		return false, err
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLConnectionRepository) CountFriends(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM connections
		WHERE (requester_id = $1 OR recipient_id = $1) AND status = $2`,
		userID, connection.StatusAccepted).Scan(&n)
	return n, err
}
