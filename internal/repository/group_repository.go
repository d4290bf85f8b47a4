package repository

import (
	"context"
	"fmt"
	"time"

	"circles/internal/domain/group"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

const groupColumns = "id, name, description, visibility, min_members, max_members, member_count, creator_id, created_at, updated_at"

func scanGroup(row scanner) (group.Group, error) {
	var g group.Group
	var createdAt, updatedAt int64
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.Visibility, &g.MinMembers, &g.MaxMembers,
		&g.MemberCount, &g.CreatorID, &createdAt, &updatedAt); err != nil {
		return group.Group{}, err
	}
	g.CreatedAt = fromMillis(createdAt)
	g.UpdatedAt = fromMillis(updatedAt)
	return g, nil
}

type SQLGroupRepository struct {
	db *Conn
}

func NewGroupRepository(db *Conn) GroupRepository {
	return &SQLGroupRepository{db: db}
}

// CreateWithCreator inserts the group and the creator's admin membership together.
func (r *SQLGroupRepository) CreateWithCreator(ctx context.Context, g *group.Group, creator group.Member) error {
	return r.db.WithTx(ctx, func(tx *Conn) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO social_groups (id, name, description, visibility, min_members, max_members, member_count, creator_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			g.ID, g.Name, g.Description, g.Visibility, g.MinMembers, g.MaxMembers, g.MemberCount,
			g.CreatorID, toMillis(g.CreatedAt), toMillis(g.UpdatedAt)); err != nil {
			return fmt.Errorf("insert group: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO group_members (group_id, user_id, is_admin, joined_at)
			VALUES ($1, $2, $3, $4)`,
			creator.GroupID, creator.UserID, creator.IsAdmin, toMillis(creator.JoinedAt)); err != nil {
			return fmt.Errorf("insert creator membership: %w", err)
		}
		return nil
	})
}

func (r *SQLGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (group.Group, error) {
	g, err := scanGroup(r.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM social_groups WHERE id = $1`, id))
	return g, notFound(err)
}

// UpdateSettings writes the mutable settings. The member_count guard lives in
// the WHERE clause so a concurrent join cannot push the group past a lowered cap.
func (r *SQLGroupRepository) UpdateSettings(ctx context.Context, g group.Group) error {
	return r.db.WithTx(ctx, func(tx *Conn) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE social_groups
			SET name = $2, description = $3, visibility = $4, min_members = $5, max_members = $6, updated_at = $7
			WHERE id = $1 AND member_count <= $6`,
			g.ID, g.Name, g.Description, g.Visibility, g.MinMembers, g.MaxMembers, toMillis(g.UpdatedAt))
		if err != nil {
			return err
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 1 {
			return nil
		}
		if _, err := scanGroup(tx.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM social_groups WHERE id = $1`, g.ID)); err != nil {
			return notFound(err)
		}
		return circles_errors.ErrCapacityExceeded
	})
}

// Delete removes the group with its votes, responses and memberships, and
// returns the ids of the users who were members.
func (r *SQLGroupRepository) Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var members []uuid.UUID
	err := r.db.WithTx(ctx, func(tx *Conn) error {
		rows, err := tx.QueryContext(ctx, `SELECT user_id FROM group_members WHERE group_id = $1 ORDER BY joined_at`, id)
		if err != nil {
			return err
		}
		for rows.Next() {
			var uid uuid.UUID
			if err := rows.Scan(&uid); err != nil {
				rows.Close()
				return err
			}
			members = append(members, uid)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		steps := []struct {
			what  string
			query string
		}{
			{"votes", `DELETE FROM votes WHERE response_id IN (SELECT id FROM responses WHERE group_id = $1)`},
			{"responses", `DELETE FROM responses WHERE group_id = $1`},
			{"members", `DELETE FROM group_members WHERE group_id = $1`},
		}
		for _, step := range steps {
			if _, err := tx.ExecContext(ctx, step.query, id); err != nil {
				return fmt.Errorf("delete %s: %w", step.what, err)
			}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM social_groups WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete group: %w", err)
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
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *SQLGroupRepository) GetMember(ctx context.Context, groupID, userID uuid.UUID) (group.Member, error) {
	var m group.Member
	var joinedAt int64
	err := r.db.QueryRowContext(ctx, `
		SELECT group_id, user_id, is_admin, joined_at FROM group_members
		WHERE group_id = $1 AND user_id = $2`, groupID, userID).
		Scan(&m.GroupID, &m.UserID, &m.IsAdmin, &joinedAt)
	if err != nil {
		return group.Member{}, notFound(err)
	}
	m.JoinedAt = fromMillis(joinedAt)
	return m, nil
}

// AddMember claims a seat and inserts the membership in one transaction. The
// guarded increment row-locks the group in PostgreSQL, so concurrent joins
// for the same group serialize on it.
func (r *SQLGroupRepository) AddMember(ctx context.Context, m group.Member) error {
	return r.db.WithTx(ctx, func(tx *Conn) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM group_members WHERE group_id = $1 AND user_id = $2`,
			m.GroupID, m.UserID).Scan(&exists)
		if err != nil {
			return err
		}
		if exists > 0 {
			return circles_errors.ErrAlreadyMember
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE social_groups SET member_count = member_count + 1, updated_at = $2
			WHERE id = $1 AND member_count < max_members`,
			m.GroupID, toMillis(m.JoinedAt))
		if err != nil {
			return err
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			var found int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM social_groups WHERE id = $1`, m.GroupID).Scan(&found); err != nil {
				return err
			}
			if found == 0 {
				return circles_errors.ErrNotFound
			}
			return circles_errors.ErrCapacityExceeded
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO group_members (group_id, user_id, is_admin, joined_at)
			VALUES ($1, $2, $3, $4)`,
			m.GroupID, m.UserID, m.IsAdmin, toMillis(m.JoinedAt)); err != nil {
			if isUniqueViolation(err) {
				return circles_errors.ErrAlreadyMember
			}
			return err
		}
		return nil
	})
}

func (r *SQLGroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID, at time.Time) error {
	return r.db.WithTx(ctx, func(tx *Conn) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
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
		_, err = tx.ExecContext(ctx, `
			UPDATE social_groups SET member_count = member_count - 1, updated_at = $2
			WHERE id = $1`, groupID, toMillis(at))
		return err
	})
}

func (r *SQLGroupRepository) SetAdmin(ctx context.Context, groupID, userID uuid.UUID, isAdmin bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE group_members SET is_admin = $3
		WHERE group_id = $1 AND user_id = $2 AND is_admin <> $3`,
		groupID, userID, isAdmin)
	if err != nil {
		return false, err
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	if _, err := r.GetMember(ctx, groupID, userID); err != nil {
		return false, err
	}
	return false, nil
}

// ListMembers returns memberships with profiles: creator first, then admins,
// then everyone else by join time.
func (r *SQLGroupRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]group.MemberProfile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.group_id, m.user_id, m.is_admin, m.joined_at, g.creator_id, `+userColumnsAs("u")+`
		FROM group_members m
		JOIN social_groups g ON g.id = m.group_id
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY CASE WHEN m.user_id = g.creator_id THEN 0 WHEN m.is_admin THEN 1 ELSE 2 END, m.joined_at ASC`,
		groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []group.MemberProfile
	for rows.Next() {
		var m group.Member
		var joinedAt int64
		var creatorID uuid.UUID
		u, err := scanUser(rows, &m.GroupID, &m.UserID, &m.IsAdmin, &joinedAt, &creatorID)
		if err != nil {
			return nil, err
		}
		m.JoinedAt = fromMillis(joinedAt)
		members = append(members, group.MemberProfile{
			Member:    m,
			Profile:   u.Profile(),
			IsCreator: m.UserID == creatorID,
		})
	}
	return members, rows.Err()
}

func (r *SQLGroupRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]group.Group, error) {
	return r.queryGroups(ctx, `
		SELECT `+groupColumnsAs("g")+`
		FROM social_groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.created_at DESC, g.id DESC`, userID)
}

func (r *SQLGroupRepository) ListPublic(ctx context.Context, limit int) ([]group.Group, error) {
	return r.queryGroups(ctx, `
		SELECT `+groupColumns+` FROM social_groups
		WHERE visibility = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, group.VisibilityPublic, limit)
}

func (r *SQLGroupRepository) ListCreatedBy(ctx context.Context, userID uuid.UUID) ([]group.Group, error) {
	return r.queryGroups(ctx, `
		SELECT `+groupColumns+` FROM social_groups
		WHERE creator_id = $1
		ORDER BY created_at ASC, id ASC`, userID)
}

func (r *SQLGroupRepository) ListAllMemberIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM group_members`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLGroupRepository) queryGroups(ctx context.Context, query string, args ...any) ([]group.Group, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []group.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

func groupColumnsAs(alias string) string {
	return qualify(alias, groupColumns)
}
