package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"circles/internal/domain/prompt"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

func createPrompt(t *testing.T, repo PromptRepository, activeAt, revealAt time.Time) prompt.Prompt {
	t.Helper()
	p := prompt.Prompt{ID: uuid.New(), Content: "prompt at " + activeAt.Format(time.RFC3339), ActiveAt: activeAt, RevealAt: revealAt, CreatedAt: t0}
	if err := repo.Create(context.Background(), &p); err != nil {
		t.Fatalf("Create prompt: %v", err)
	}
	return p
}

func TestGetActivePicksLatestActivated(t *testing.T) {
	conn := newTestConn(t)
	repo := NewPromptRepository(conn)
	ctx := context.Background()
	week := 7 * 24 * time.Hour

	older := createPrompt(t, repo, t0.Add(-week), t0.Add(-24*time.Hour))
	current := createPrompt(t, repo, t0, t0.Add(6*24*time.Hour))
	future := createPrompt(t, repo, t0.Add(week), t0.Add(week+6*24*time.Hour))

	if _, err := repo.GetActive(ctx, t0.Add(-2*week)); !errors.Is(err, circles_errors.ErrNotFound) {
		t.Errorf("before any prompt: err = %v, want ErrNotFound", err)
	}
	got, err := repo.GetActive(ctx, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if got.ID != current.ID {
		t.Errorf("GetActive = %s, want %s", got.Content, current.Content)
	}
	if !got.ActiveAt.Equal(current.ActiveAt) {
		t.Errorf("ActiveAt = %v, want %v", got.ActiveAt, current.ActiveAt)
	}

	past, err := repo.ListPast(ctx, t0.Add(time.Hour), 10)
	if err != nil || len(past) != 1 || past[0].ID != older.ID {
		t.Errorf("ListPast = %v, %v; want [older]", past, err)
	}
	upcoming, err := repo.ListUpcoming(ctx, t0.Add(time.Hour), 5)
	if err != nil || len(upcoming) != 1 || upcoming[0].ID != future.ID {
		t.Errorf("ListUpcoming = %v, %v; want [future]", upcoming, err)
	}
}

func TestUpsertResponseReplacesContent(t *testing.T) {
	conn := newTestConn(t)
	repo := NewPromptRepository(conn)
	ctx := context.Background()
	u := createUser(t, conn, "ana")
	g := createGroup(t, conn, u.ID, 4)
	p := createPrompt(t, repo, t0, t0.Add(time.Hour))

	first, err := repo.UpsertResponse(ctx, prompt.Response{
		ID: uuid.New(), PromptID: p.ID, GroupID: g.ID, UserID: u.ID, Content: "first", CreatedAt: t0, UpdatedAt: t0,
	})
	if err != nil {
		t.Fatalf("UpsertResponse: %v", err)
	}
	later := t0.Add(time.Minute)
	second, err := repo.UpsertResponse(ctx, prompt.Response{
		ID: uuid.New(), PromptID: p.ID, GroupID: g.ID, UserID: u.ID, Content: "second", CreatedAt: later, UpdatedAt: later,
	})
	if err != nil {
		t.Fatalf("UpsertResponse again: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("upsert created a new row: %s vs %s", second.ID, first.ID)
	}
	if second.Content != "second" || !second.CreatedAt.Equal(t0) || !second.UpdatedAt.Equal(later) {
		t.Errorf("response = %+v", second)
	}
	if n, _ := repo.CountResponses(ctx, p.ID, g.ID); n != 1 {
		t.Errorf("CountResponses = %d, want 1", n)
	}

	own, err := repo.GetUserResponse(ctx, p.ID, g.ID, u.ID)
	if err != nil || own.Author.DisplayName != "ana" {
		t.Errorf("GetUserResponse = %+v, %v", own, err)
	}
}

func TestToggleVoteKeepsCountInStep(t *testing.T) {
	conn := newTestConn(t)
	repo := NewPromptRepository(conn)
	ctx := context.Background()
	author, voter := createUser(t, conn, "author"), createUser(t, conn, "voter")
	g := createGroup(t, conn, author.ID, 4)
	p := createPrompt(t, repo, t0, t0)
	resp, err := repo.UpsertResponse(ctx, prompt.Response{
		ID: uuid.New(), PromptID: p.ID, GroupID: g.ID, UserID: author.ID, Content: "a", CreatedAt: t0, UpdatedAt: t0,
	})
	if err != nil {
		t.Fatalf("UpsertResponse: %v", err)
	}

	for i, want := range []bool{true, false, true} {
		voted, err := repo.ToggleVote(ctx, resp.ID, voter.ID, t0)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if voted != want {
			t.Errorf("toggle %d: voted = %v, want %v", i, voted, want)
		}
	}
	got, _ := repo.GetResponse(ctx, resp.ID)
	if got.VoteCount != 1 {
		t.Errorf("VoteCount = %d, want 1", got.VoteCount)
	}

	responses, votes, err := repo.UserResponseStats(ctx, author.ID)
	if err != nil || responses != 1 || votes != 1 {
		t.Errorf("UserResponseStats = %d, %d, %v; want 1, 1", responses, votes, err)
	}

	if _, err := repo.ToggleVote(ctx, uuid.New(), voter.ID, t0); err == nil {
		t.Error("vote on unknown response should fail")
	}
}

func TestClaimDispatchOnce(t *testing.T) {
	conn := newTestConn(t)
	repo := NewPromptRepository(conn)
	ctx := context.Background()
	p := createPrompt(t, repo, t0, t0.Add(time.Hour))

	first, err := repo.ClaimDispatch(ctx, p.ID, prompt.DispatchOpen, t0)
	if err != nil || !first {
		t.Fatalf("first claim = %v, %v; want true", first, err)
	}
	second, err := repo.ClaimDispatch(ctx, p.ID, prompt.DispatchOpen, t0)
	if err != nil || second {
		t.Errorf("second claim = %v, %v; want false", second, err)
	}
	other, err := repo.ClaimDispatch(ctx, p.ID, prompt.DispatchVotingOpen, t0)
	if err != nil || !other {
		t.Errorf("other kind claim = %v, %v; want true", other, err)
	}
}

func TestListUserFeed(t *testing.T) {
	conn := newTestConn(t)
	repo := NewPromptRepository(conn)
	ctx := context.Background()
	u := createUser(t, conn, "ana")
	g := createGroup(t, conn, u.ID, 4)
	p1 := createPrompt(t, repo, t0, t0.Add(time.Hour))
	p2 := createPrompt(t, repo, t0.Add(2*time.Hour), t0.Add(3*time.Hour))

	for i, p := range []prompt.Prompt{p1, p2} {
		at := t0.Add(time.Duration(i) * time.Hour)
		if _, err := repo.UpsertResponse(ctx, prompt.Response{
			ID: uuid.New(), PromptID: p.ID, GroupID: g.ID, UserID: u.ID, Content: "answer", CreatedAt: at, UpdatedAt: at,
		}); err != nil {
			t.Fatalf("UpsertResponse: %v", err)
		}
	}

	feed, err := repo.ListUserFeed(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("ListUserFeed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("len(feed) = %d, want 2", len(feed))
	}
	if feed[0].Prompt.ID != p2.ID || feed[0].GroupName != g.Name {
		t.Errorf("feed[0] = %+v, want newest first with group name", feed[0])
	}
}
