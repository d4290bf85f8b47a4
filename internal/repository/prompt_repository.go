package repository

import (
	"context"
	"time"

	"circles/internal/domain/prompt"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

const promptColumns = "id, content, active_at, reveal_at, created_at"

const responseColumns = "id, prompt_id, group_id, user_id, content, vote_count, created_at, updated_at"

func scanPrompt(row scanner, leading ...any) (prompt.Prompt, error) {
	var p prompt.Prompt
	var activeAt, revealAt, createdAt int64
	dest := append(leading, &p.ID, &p.Content, &activeAt, &revealAt, &createdAt)
	if err := row.Scan(dest...); err != nil {
		return prompt.Prompt{}, err
	}
	p.ActiveAt = fromMillis(activeAt)
	p.RevealAt = fromMillis(revealAt)
	p.CreatedAt = fromMillis(createdAt)
	return p, nil
}

// responseScan collects the destinations of responseColumns so a response can
// be scanned as part of a wider row.
type responseScan struct {
	r                    prompt.Response
	createdAt, updatedAt int64
}

func (s *responseScan) dest() []any {
	return []any{&s.r.ID, &s.r.PromptID, &s.r.GroupID, &s.r.UserID, &s.r.Content, &s.r.VoteCount, &s.createdAt, &s.updatedAt}
}

func (s *responseScan) response() prompt.Response {
	s.r.CreatedAt = fromMillis(s.createdAt)
	s.r.UpdatedAt = fromMillis(s.updatedAt)
	return s.r
}

type SQLPromptRepository struct {
	db *Conn
}

func NewPromptRepository(db *Conn) PromptRepository {
	return &SQLPromptRepository{db: db}
}

func (r *SQLPromptRepository) Create(ctx context.Context, p *prompt.Prompt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prompts (id, content, active_at, reveal_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Content, toMillis(p.ActiveAt), toMillis(p.RevealAt), toMillis(p.CreatedAt))
	return err
}

func (r *SQLPromptRepository) GetByID(ctx context.Context, id uuid.UUID) (prompt.Prompt, error) {
	p, err := scanPrompt(r.db.QueryRowContext(ctx, `SELECT `+promptColumns+` FROM prompts WHERE id = $1`, id))
	return p, notFound(err)
}

// GetActive returns the prompt with the greatest activation time not after now.
func (r *SQLPromptRepository) GetActive(ctx context.Context, now time.Time) (prompt.Prompt, error) {
	p, err := scanPrompt(r.db.QueryRowContext(ctx, `
		SELECT `+promptColumns+` FROM prompts
		WHERE active_at <= $1
		ORDER BY active_at DESC, created_at DESC
		LIMIT 1`, toMillis(now)))
	return p, notFound(err)
}

func (r *SQLPromptRepository) ListPast(ctx context.Context, now time.Time, limit int) ([]prompt.Prompt, error) {
	return r.queryPrompts(ctx, `
		SELECT `+promptColumns+` FROM prompts
		WHERE reveal_at <= $1
		ORDER BY active_at DESC, id DESC
		LIMIT $2`, toMillis(now), limit)
}

func (r *SQLPromptRepository) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]prompt.Prompt, error) {
	return r.queryPrompts(ctx, `
		SELECT `+promptColumns+` FROM prompts
		WHERE active_at > $1
		ORDER BY active_at ASC, id ASC
		LIMIT $2`, toMillis(now), limit)
}

// ListForDispatch returns prompts that are active at now and were revealed no
// earlier than revealedSince (or are not revealed yet).
func (r *SQLPromptRepository) ListForDispatch(ctx context.Context, now, revealedSince time.Time) ([]prompt.Prompt, error) {
	return r.queryPrompts(ctx, `
		SELECT `+promptColumns+` FROM prompts
		WHERE active_at <= $1 AND reveal_at >= $2
		ORDER BY active_at ASC, id ASC`, toMillis(now), toMillis(revealedSince))
}

// ClaimDispatch records that kind was sent for promptID. Only the first
// caller gets true.
func (r *SQLPromptRepository) ClaimDispatch(ctx context.Context, promptID uuid.UUID, kind prompt.DispatchKind, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO prompt_dispatches (prompt_id, kind, dispatched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (prompt_id, kind) DO NOTHING`,
		promptID, kind, toMillis(at))
	if err != nil {
		return false, err
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// UpsertResponse stores the caller's answer, replacing the content of an
// existing one. It returns the stored row.
func (r *SQLPromptRepository) UpsertResponse(ctx context.Context, resp prompt.Response) (prompt.Response, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO responses (id, prompt_id, group_id, user_id, content, vote_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7)
		ON CONFLICT (prompt_id, group_id, user_id)
		DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		resp.ID, resp.PromptID, resp.GroupID, resp.UserID, resp.Content, toMillis(resp.CreatedAt), toMillis(resp.UpdatedAt))
	if err != nil {
		return prompt.Response{}, err
	}

	var s responseScan
	err = r.db.QueryRowContext(ctx, `
		SELECT `+responseColumns+` FROM responses
		WHERE prompt_id = $1 AND group_id = $2 AND user_id = $3`,
		resp.PromptID, resp.GroupID, resp.UserID).Scan(s.dest()...)
	if err != nil {
		return prompt.Response{}, notFound(err)
	}
	return s.response(), nil
}

func (r *SQLPromptRepository) GetResponse(ctx context.Context, id uuid.UUID) (prompt.Response, error) {
	var s responseScan
	err := r.db.QueryRowContext(ctx, `SELECT `+responseColumns+` FROM responses WHERE id = $1`, id).Scan(s.dest()...)
	if err != nil {
		return prompt.Response{}, notFound(err)
	}
	return s.response(), nil
}

func (r *SQLPromptRepository) GetUserResponse(ctx context.Context, promptID, groupID, userID uuid.UUID) (prompt.ResponseWithAuthor, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+qualify("r", responseColumns)+`, `+userColumnsAs("u")+`
		FROM responses r
		JOIN users u ON u.id = r.user_id
		WHERE r.prompt_id = $1 AND r.group_id = $2 AND r.user_id = $3`,
		promptID, groupID, userID)
	var s responseScan
	u, err := scanUser(row, s.dest()...)
	if err != nil {
		return prompt.ResponseWithAuthor{}, notFound(err)
	}
	return prompt.ResponseWithAuthor{Response: s.response(), Author: u.Profile()}, nil
}

func (r *SQLPromptRepository) ListResponses(ctx context.Context, promptID, groupID uuid.UUID) ([]prompt.ResponseWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+qualify("r", responseColumns)+`, `+userColumnsAs("u")+`
		FROM responses r
		JOIN users u ON u.id = r.user_id
		WHERE r.prompt_id = $1 AND r.group_id = $2
		ORDER BY r.created_at ASC, r.id ASC`,
		promptID, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []prompt.ResponseWithAuthor
	for rows.Next() {
		var s responseScan
		u, err := scanUser(rows, s.dest()...)
		if err != nil {
			return nil, err
		}
		out = append(out, prompt.ResponseWithAuthor{Response: s.response(), Author: u.Profile()})
	}
	return out, rows.Err()
}

func (r *SQLPromptRepository) CountResponses(ctx context.Context, promptID, groupID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM responses WHERE prompt_id = $1 AND group_id = $2`,
		promptID, groupID).Scan(&n)
	return n, err
}

// ToggleVote adds the voter's vote or takes it back, keeping vote_count in
// step within the same transaction. It reports whether a vote now exists.
func (r *SQLPromptRepository) ToggleVote(ctx context.Context, responseID, voterID uuid.UUID, at time.Time) (bool, error) {
	var voted bool
	err := r.db.WithTx(ctx, func(tx *Conn) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM votes WHERE response_id = $1 AND voter_id = $2`, responseID, voterID)
		if err != nil {
			return err
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}

		delta := -1
		if n == 0 {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO votes (response_id, voter_id, created_at) VALUES ($1, $2, $3)`,
				responseID, voterID, toMillis(at)); err != nil {
				if isUniqueViolation(err) {
					return circles_errors.ErrAlreadyExists
				}
				return err
			}
			delta = 1
			voted = true
		}

		res, err = tx.ExecContext(ctx,
			`UPDATE responses SET vote_count = vote_count + $2 WHERE id = $1`, responseID, delta)
		if err != nil {
			return err
		}
		if n, err = rowsAffected(res); err != nil {
			return err
		}
		if n == 0 {
			return circles_errors.ErrNotFound
		}
		return nil
	})
	return voted, err
}

func (r *SQLPromptRepository) ListUserFeed(ctx context.Context, userID uuid.UUID, limit int) ([]prompt.FeedEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+qualify("r", responseColumns)+`, g.name, `+qualify("p", promptColumns)+`
		FROM responses r
		JOIN prompts p ON p.id = r.prompt_id
		JOIN social_groups g ON g.id = r.group_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feed []prompt.FeedEntry
	for rows.Next() {
		var s responseScan
		var groupName string
		p, err := scanPrompt(rows, append(s.dest(), &groupName)...)
		if err != nil {
			return nil, err
		}
		feed = append(feed, prompt.FeedEntry{Response: s.response(), Prompt: p, GroupName: groupName})
	}
	return feed, rows.Err()
}

func (r *SQLPromptRepository) UserResponseStats(ctx context.Context, userID uuid.UUID) (int, int, error) {
	var responses, votes int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(vote_count), 0) FROM responses WHERE user_id = $1`, userID).
		Scan(&responses, &votes)
	return responses, votes, err
}

func (r *SQLPromptRepository) queryPrompts(ctx context.Context, query string, args ...any) ([]prompt.Prompt, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []prompt.Prompt
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}
