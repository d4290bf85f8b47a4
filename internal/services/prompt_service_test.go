package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"circles/internal/domain/notification"
	"circles/internal/domain/prompt"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

func newPrompt(t *testing.T, env *testEnv, activeAt, revealAt time.Time) prompt.Prompt {
	t.Helper()
	p, err := env.prompts.CreatePrompt(context.Background(), prompt.CreateInput{
		Content:  "What made you laugh this week?",
		ActiveAt: activeAt,
		RevealAt: revealAt,
	})
	if err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	return p
}

func TestCreatePromptValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.prompts.CreatePrompt(context.Background(), prompt.CreateInput{
		Content:  "backwards",
		ActiveAt: t0,
		RevealAt: t0.Add(-time.Hour),
	})
	if !errors.Is(err, circles_errors.ErrInvalidInput) {
		t.Errorf("reveal before active err = %v, want ErrInvalidInput", err)
	}
}

func TestActivePromptPicksLatestStarted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.prompts.ActivePrompt(ctx, t0); !errors.Is(err, circles_errors.ErrNotFound) {
		t.Errorf("ActivePrompt with none err = %v, want ErrNotFound", err)
	}

	newPrompt(t, env, t0.Add(-14*24*time.Hour), t0.Add(-8*24*time.Hour))
	current := newPrompt(t, env, t0.Add(-time.Hour), t0.Add(5*24*time.Hour))
	next := newPrompt(t, env, t0.Add(7*24*time.Hour), t0.Add(13*24*time.Hour))

	got, err := env.prompts.ActivePrompt(ctx, t0)
	if err != nil {
		t.Fatalf("ActivePrompt: %v", err)
	}
	if got.ID != current.ID {
		t.Errorf("ActivePrompt = %s, want %s", got.ID, current.ID)
	}

	past, err := env.prompts.PastPrompts(ctx, t0, 0)
	if err != nil || len(past) != 1 {
		t.Errorf("PastPrompts = %d, %v, want 1", len(past), err)
	}
	upcoming, err := env.prompts.UpcomingPrompts(ctx, t0, 0)
	if err != nil || len(upcoming) != 1 || upcoming[0].ID != next.ID {
		t.Errorf("UpcomingPrompts = %v, %v, want [%s]", upcoming, err, next.ID)
	}
}

func TestVisibilityIsMonotonic(t *testing.T) {
	env := newTestEnv(t)
	p := prompt.Prompt{ActiveAt: t0, RevealAt: t0.Add(time.Hour)}
	if v := env.prompts.Visibility(p, t0.Add(59*time.Minute)); v != prompt.VisibilityHidden {
		t.Errorf("before reveal = %v, want hidden", v)
	}
	for _, d := range []time.Duration{time.Hour, 2 * time.Hour, 1000 * time.Hour} {
		if v := env.prompts.Visibility(p, t0.Add(d)); v != prompt.VisibilityRevealed {
			t.Errorf("at +%v = %v, want revealed", d, v)
		}
	}
}

func TestResponsesAreHiddenUntilReveal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signUp(t, "alice")
	bob := env.signUp(t, "bob")
	outsider := env.signUp(t, "outsider")
	g := newGroup(t, env, alice.ID, 4)
	if _, err := env.groups.Join(ctx, bob.ID, g.ID); err != nil {
		t.Fatalf("Join: %v", err)
	}
	p := newPrompt(t, env, t0.Add(-time.Hour), t0.Add(24*time.Hour))

	if _, err := env.prompts.SubmitResponse(ctx, outsider.ID, g.ID, "hi", t0); !errors.Is(err, circles_errors.ErrUnauthorized) {
		t.Errorf("outsider SubmitResponse err = %v, want ErrUnauthorized", err)
	}
	if _, err := env.prompts.SubmitResponse(ctx, alice.ID, g.ID, "   ", t0); !errors.Is(err, circles_errors.ErrInvalidInput) {
		t.Errorf("empty SubmitResponse err = %v, want ErrInvalidInput", err)
	}

	first, err := env.prompts.SubmitResponse(ctx, alice.ID, g.ID, "first draft", t0)
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	edited, err := env.prompts.SubmitResponse(ctx, alice.ID, g.ID, "final answer", t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("SubmitResponse edit: %v", err)
	}
	if edited.ID != first.ID || edited.Content != "final answer" || edited.PromptID != p.ID {
		t.Errorf("edit = %+v, want the same row with new content", edited)
	}
	if _, err := env.prompts.SubmitResponse(ctx, bob.ID, g.ID, "bob's answer", t0.Add(2*time.Minute)); err != nil {
		t.Fatalf("SubmitResponse bob: %v", err)
	}

	hidden, err := env.prompts.ListResponses(ctx, g.ID, alice.ID, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListResponses hidden: %v", err)
	}
	if hidden.IsRevealed || hidden.ResponseCount != 2 || !hidden.RevealAt.Equal(p.RevealAt) {
		t.Errorf("hidden list = %+v", hidden)
	}
	if len(hidden.Responses) != 1 || hidden.Responses[0].UserID != alice.ID {
		t.Errorf("hidden responses = %+v, want only alice's own", hidden.Responses)
	}

	count, err := env.prompts.ResponseCount(ctx, g.ID, bob.ID, t0.Add(time.Hour))
	if err != nil || count != 2 {
		t.Errorf("ResponseCount = %d, %v, want 2", count, err)
	}
	if _, err := env.prompts.ResponseCount(ctx, g.ID, outsider.ID, t0.Add(time.Hour)); !errors.Is(err, circles_errors.ErrUnauthorized) {
		t.Errorf("outsider ResponseCount err = %v, want ErrUnauthorized", err)
	}

	if _, err := env.prompts.ListResponses(ctx, g.ID, outsider.ID, t0); !errors.Is(err, circles_errors.ErrUnauthorized) {
		t.Errorf("outsider ListResponses err = %v, want ErrUnauthorized", err)
	}

	revealed, err := env.prompts.ListResponses(ctx, g.ID, alice.ID, p.RevealAt)
	if err != nil {
		t.Fatalf("ListResponses revealed: %v", err)
	}
	if !revealed.IsRevealed || len(revealed.Responses) != 2 {
		t.Fatalf("revealed list = %+v, want both responses", revealed)
	}
	if revealed.Responses[0].UserID != alice.ID || revealed.Responses[1].Author.DisplayName != "bob" {
		t.Errorf("revealed order = %+v, want alice then bob", revealed.Responses)
	}
}

func TestVoteToggleRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signUp(t, "alice")
	bob := env.signUp(t, "bob")
	outsider := env.signUp(t, "outsider")
	g := newGroup(t, env, alice.ID, 4)
	if _, err := env.groups.Join(ctx, bob.ID, g.ID); err != nil {
		t.Fatalf("Join: %v", err)
	}
	p := newPrompt(t, env, t0.Add(-time.Hour), t0.Add(24*time.Hour))
	r, err := env.prompts.SubmitResponse(ctx, alice.ID, g.ID, "answer", t0)
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}

	if _, err := env.prompts.Vote(ctx, r.ID, bob.ID, t0); !errors.Is(err, circles_errors.ErrInvalidState) {
		t.Errorf("vote before reveal err = %v, want ErrInvalidState", err)
	}
	after := p.RevealAt.Add(time.Minute)
	if _, err := env.prompts.Vote(ctx, r.ID, alice.ID, after); !errors.Is(err, circles_errors.ErrSelfReference) {
		t.Errorf("self vote err = %v, want ErrSelfReference", err)
	}
	if _, err := env.prompts.Vote(ctx, r.ID, outsider.ID, after); !errors.Is(err, circles_errors.ErrUnauthorized) {
		t.Errorf("outsider vote err = %v, want ErrUnauthorized", err)
	}
	if _, err := env.prompts.Vote(ctx, uuid.New(), bob.ID, after); !errors.Is(err, circles_errors.ErrNotFound) {
		t.Errorf("vote on unknown err = %v, want ErrNotFound", err)
	}

	// Alice already holds the member_joined from bob.
	before := len(env.notifier.to(alice.ID))
	voted, err := env.prompts.Vote(ctx, r.ID, bob.ID, after)
	if err != nil || !voted {
		t.Fatalf("Vote = %v, %v, want true", voted, err)
	}
	got := env.notifier.to(alice.ID)[before:]
	if len(got) != 1 {
		t.Fatalf("new alice notifications = %d, want 1", len(got))
	}
	if v, ok := got[0].(notification.VoteReceived); !ok || v.ResponseID != r.ID || v.VoterID != bob.ID {
		t.Errorf("payload = %#v, want vote_received", got[0])
	}
	stats, err := env.prompts.UserStats(ctx, alice.ID)
	if err != nil || stats.TotalVotesReceived != 1 || stats.ResponseCount != 1 {
		t.Errorf("UserStats = %+v, %v", stats, err)
	}

	voted, err = env.prompts.Vote(ctx, r.ID, bob.ID, after)
	if err != nil || voted {
		t.Fatalf("second Vote = %v, %v, want false", voted, err)
	}
	if n := len(env.notifier.to(alice.ID)); n != before+1 {
		t.Errorf("alice notifications after unvote = %d, want %d", n, before+1)
	}
	stats, err = env.prompts.UserStats(ctx, alice.ID)
	if err != nil || stats.TotalVotesReceived != 0 {
		t.Errorf("UserStats after unvote = %+v, %v", stats, err)
	}
}

func TestUserFeedHidesUnrevealedFromOthers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signUp(t, "alice")
	bob := env.signUp(t, "bob")
	g := newGroup(t, env, alice.ID, 4)

	newPrompt(t, env, t0.Add(-8*24*time.Hour), t0.Add(-2*24*time.Hour))
	if _, err := env.prompts.SubmitResponse(ctx, alice.ID, g.ID, "old answer", t0.Add(-7*24*time.Hour)); err != nil {
		t.Fatalf("SubmitResponse old: %v", err)
	}
	newPrompt(t, env, t0.Add(-time.Hour), t0.Add(5*24*time.Hour))
	if _, err := env.prompts.SubmitResponse(ctx, alice.ID, g.ID, "new answer", t0); err != nil {
		t.Fatalf("SubmitResponse new: %v", err)
	}

	own, err := env.prompts.UserFeed(ctx, alice.ID, alice.ID, 0, t0)
	if err != nil || len(own) != 2 {
		t.Fatalf("own feed = %d, %v, want 2", len(own), err)
	}
	if own[0].Response.Content != "new answer" || own[0].GroupName != "Book club" {
		t.Errorf("own feed[0] = %+v, want newest first", own[0])
	}
	other, err := env.prompts.UserFeed(ctx, bob.ID, alice.ID, 0, t0)
	if err != nil || len(other) != 1 || other[0].Response.Content != "old answer" {
		t.Errorf("other's feed = %+v, %v, want only the revealed answer", other, err)
	}
}
