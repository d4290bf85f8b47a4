package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"circles/internal/domain/connection"
	"circles/internal/domain/user"
	"circles/internal/storage"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

func TestEnsureUserIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := user.Identity{Subject: "idp|123", DisplayName: "Ada Lovelace", Username: "Ada.L"}

	first, err := env.users.EnsureUser(ctx, id)
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if first.Handle.String != "ada_l" || first.DisplayName != "Ada Lovelace" {
		t.Errorf("user = %+v, want handle ada_l", first)
	}
	again, err := env.users.EnsureUser(ctx, id)
	if err != nil || again.ID != first.ID {
		t.Errorf("second EnsureUser = %s, %v, want %s", again.ID, err, first.ID)
	}
}

func TestEnsureUserSuffixesTakenHandle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.users.EnsureUser(ctx, user.Identity{Subject: "a", Username: "sam"})
	if err != nil {
		t.Fatalf("EnsureUser a: %v", err)
	}
	b, err := env.users.EnsureUser(ctx, user.Identity{Subject: "b", Username: "sam"})
	if err != nil {
		t.Fatalf("EnsureUser b: %v", err)
	}
	if a.Handle.String != "sam" {
		t.Errorf("first handle = %q, want sam", a.Handle.String)
	}
	if !strings.HasPrefix(b.Handle.String, "sam_") {
		t.Errorf("second handle = %q, want a sam_ suffix", b.Handle.String)
	}
	if _, err := env.users.EnsureUser(ctx, user.Identity{}); !errors.Is(err, circles_errors.ErrUnauthenticated) {
		t.Errorf("empty subject err = %v, want ErrUnauthenticated", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signUp(t, "alice")
	env.signUp(t, "bob")

	name := "Alice A."
	handle := "Alice-A"
	updated, err := env.users.UpdateProfile(ctx, alice.ID, user.ProfilePatch{DisplayName: &name, Handle: &handle})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.DisplayName != name || updated.Handle.String != "alice_a" {
		t.Errorf("updated = %+v", updated)
	}

	taken := "bob"
	if _, err := env.users.UpdateProfile(ctx, alice.ID, user.ProfilePatch{Handle: &taken}); !errors.Is(err, circles_errors.ErrAlreadyExists) {
		t.Errorf("taken handle err = %v, want ErrAlreadyExists", err)
	}
	blank := "  "
	if _, err := env.users.UpdateProfile(ctx, alice.ID, user.ProfilePatch{DisplayName: &blank}); !errors.Is(err, circles_errors.ErrInvalidInput) {
		t.Errorf("blank name err = %v, want ErrInvalidInput", err)
	}
}

func TestSearchAnnotatesRelation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signUp(t, "alice")
	bob := env.signUp(t, "bobby")
	env.signUp(t, "bobcat")

	if _, err := env.connections.SendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	results, err := env.users.Search(ctx, alice.ID, "BOB", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search = %d results, want 2", len(results))
	}
	relations := map[string]connection.Relation{}
	for _, r := range results {
		relations[r.Profile.DisplayName] = r.Relation
	}
	if relations["bobby"] != connection.RelationPendingSent || relations["bobcat"] != connection.RelationNone {
		t.Errorf("relations = %v", relations)
	}

	self, err := env.users.Search(ctx, alice.ID, "alice", 0)
	if err != nil || len(self) != 0 {
		t.Errorf("Search for self = %v, %v, want none", self, err)
	}
}

type stubPresigner struct{}

func (stubPresigner) PresignAvatarUpload(_ context.Context, userID uuid.UUID, contentType string) (storage.AvatarUpload, error) {
	return storage.AvatarUpload{UploadURL: "https://upload.example/" + userID.String(), Headers: map[string]string{"Content-Type": contentType}}, nil
}

func TestAvatarUploadURL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signUp(t, "alice")

	if _, err := env.users.AvatarUploadURL(ctx, alice.ID, "image/png"); !errors.Is(err, ErrAvatarUploadsDisabled) {
		t.Errorf("without presigner err = %v, want ErrAvatarUploadsDisabled", err)
	}
	env.users.avatars = stubPresigner{}
	if _, err := env.users.AvatarUploadURL(ctx, alice.ID, "text/html"); !errors.Is(err, circles_errors.ErrInvalidInput) {
		t.Errorf("html upload err = %v, want ErrInvalidInput", err)
	}
	upload, err := env.users.AvatarUploadURL(ctx, alice.ID, "image/png")
	if err != nil || !strings.HasSuffix(upload.UploadURL, alice.ID.String()) {
		t.Errorf("upload = %+v, %v", upload, err)
	}
}

func TestDeleteAccountTombstones(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signUp(t, "alice")
	bob := env.signUp(t, "bob")
	carol := env.signUp(t, "carol")

	owned := newGroup(t, env, alice.ID, 4)
	if _, err := env.groups.Join(ctx, bob.ID, owned.ID); err != nil {
		t.Fatalf("Join owned: %v", err)
	}
	other := newGroup(t, env, carol.ID, 4)
	if _, err := env.groups.Join(ctx, alice.ID, other.ID); err != nil {
		t.Fatalf("Join other: %v", err)
	}
	c, err := env.connections.SendRequest(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if _, err := env.connections.Respond(ctx, c.ID, true, alice.ID); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	chat, err := env.chats.GetOrCreate(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := env.chats.Send(ctx, chat.ID, alice.ID, "bye"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if err := env.users.DeleteAccount(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	got, err := env.users.GetProfile(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if !got.IsDeleted() || got.DisplayName != user.DeletedDisplayName || got.Handle.Valid || got.ExternalID.Valid {
		t.Errorf("tombstone = %+v", got)
	}
	if _, err := env.groups.Get(ctx, owned.ID); !errors.Is(err, circles_errors.ErrNotFound) {
		t.Errorf("owned group err = %v, want ErrNotFound", err)
	}
	remaining, err := env.groups.Get(ctx, other.ID)
	if err != nil || remaining.MemberCount != 1 {
		t.Errorf("other group = %+v, %v, want one member left", remaining, err)
	}
	if n, _ := env.connections.FriendCount(ctx, bob.ID); n != 0 {
		t.Errorf("bob FriendCount = %d, want 0", n)
	}

	summary, err := env.chats.Get(ctx, chat.ID, bob.ID)
	if err != nil {
		t.Fatalf("chat Get: %v", err)
	}
	if !summary.Other.IsDeleted || summary.Other.DisplayName != user.DeletedDisplayName || summary.LastMessage == nil {
		t.Errorf("chat summary = %+v, want retained history with tombstoned profile", summary)
	}

	// The released subject signs up as a fresh account.
	fresh, err := env.users.EnsureUser(ctx, user.Identity{Subject: "sub_alice_again", Username: "alice"})
	if err != nil || fresh.ID == alice.ID {
		t.Errorf("fresh account = %+v, %v", fresh, err)
	}
}
