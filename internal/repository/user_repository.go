package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"circles/internal/domain/user"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

const userColumns = "id, external_id, display_name, handle, avatar_url, created_at, updated_at, deleted_at"

func userColumnsAs(alias string) string {
	return qualify(alias, userColumns)
}

// scanUser reads userColumns. Destinations for columns selected before the
// user columns can be passed in leading.
func scanUser(row scanner, leading ...any) (user.User, error) {
	var u user.User
	var createdAt, updatedAt int64
	var deletedAt sql.NullInt64
	dest := append(leading, &u.ID, &u.ExternalID, &u.DisplayName, &u.Handle, &u.AvatarURL, &createdAt, &updatedAt, &deletedAt)
	if err := row.Scan(dest...); err != nil {
		return user.User{}, err
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	u.DeletedAt = fromNullMillis(deletedAt)
	return u, nil
}

type SQLUserRepository struct {
	db *Conn
}

func NewUserRepository(db *Conn) UserRepository {
	return &SQLUserRepository{db: db}
}

func (r *SQLUserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, external_id, display_name, handle, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.ExternalID, u.DisplayName, u.Handle, u.AvatarURL, toMillis(u.CreatedAt), toMillis(u.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return circles_errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *SQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, notFound(err)
}

func (r *SQLUserRepository) GetByExternalID(ctx context.Context, externalID string) (user.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE external_id = $1`, externalID))
	return u, notFound(err)
}

func (r *SQLUserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.User, error) {
	out := make(map[uuid.UUID]user.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN (`+buildPlaceholders(1, len(ids))+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

func (r *SQLUserRepository) Update(ctx context.Context, u user.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET display_name = $2, handle = $3, avatar_url = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL`,
		u.ID, u.DisplayName, u.Handle, u.AvatarURL, toMillis(u.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return circles_errors.ErrAlreadyExists
		}
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

func (r *SQLUserRepository) Search(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]user.User, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE deleted_at IS NULL AND id <> $1
		  AND (LOWER(display_name) LIKE $2 ESCAPE '\' OR handle LIKE $2 ESCAPE '\')
		ORDER BY display_name ASC, id ASC
		LIMIT $3`, excludeID, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *SQLUserRepository) Tombstone(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithTx(ctx, func(tx *Conn) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM connections WHERE requester_id = $1 OR recipient_id = $1`, id); err != nil {
			return fmt.Errorf("delete connections: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE social_groups SET member_count = member_count - 1, updated_at = $2
			WHERE creator_id <> $1
			  AND id IN (SELECT group_id FROM group_members WHERE user_id = $1)`,
			id, toMillis(at)); err != nil {
			return fmt.Errorf("decrement member counts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM group_members
			WHERE user_id = $1
			  AND group_id IN (SELECT id FROM social_groups WHERE creator_id <> $1)`, id); err != nil {
			return fmt.Errorf("delete memberships: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE users
			SET external_id = NULL, handle = NULL, display_name = $2, avatar_url = '',
			    deleted_at = $3, updated_at = $3
			WHERE id = $1 AND deleted_at IS NULL`,
			id, user.DeletedDisplayName, toMillis(at))
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
	})
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
