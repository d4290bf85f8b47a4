package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"circles/internal/domain/user"
	"circles/pkg/database"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

func TestUserUniqueExternalIDAndHandle(t *testing.T) {
	conn := newTestConn(t)
	repo := NewUserRepository(conn)
	ctx := context.Background()
	ana := createUser(t, conn, "ana")

	dup := user.User{
		ID:          uuid.New(),
		ExternalID:  sql.NullString{String: "other", Valid: true},
		DisplayName: "Ana Two",
		Handle:      ana.Handle,
		CreatedAt:   t0,
		UpdatedAt:   t0,
	}
	if err := repo.Create(ctx, &dup); !errors.Is(err, circles_errors.ErrAlreadyExists) {
		t.Errorf("duplicate handle: err = %v, want ErrAlreadyExists", err)
	}

	got, err := repo.GetByExternalID(ctx, "ext_ana")
	if err != nil || got.ID != ana.ID {
		t.Errorf("GetByExternalID = %+v, %v", got, err)
	}
	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, circles_errors.ErrNotFound) {
		t.Errorf("unknown id: err = %v, want ErrNotFound", err)
	}
}

func TestSearchMatchesNameAndHandleLiterally(t *testing.T) {
	conn := newTestConn(t)
	repo := NewUserRepository(conn)
	ctx := context.Background()
	me := createUser(t, conn, "Mara")
	createUser(t, conn, "Marco")
	createUser(t, conn, "Tomas")
	createUser(t, conn, "under_score")

	got, err := repo.Search(ctx, "MAR", me.ID, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].DisplayName != "Marco" {
		t.Errorf("Search(MAR) = %v, want [Marco]", got)
	}

	got, err = repo.Search(ctx, "_", me.ID, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].DisplayName != "under_score" {
		t.Errorf("Search(_) = %v, want only under_score", got)
	}
}

func TestTombstoneReleasesIdentityAndDropsEdges(t *testing.T) {
	conn := newTestConn(t)
	users := NewUserRepository(conn)
	groups := NewGroupRepository(conn)
	conns := NewConnectionRepository(conn)
	ctx := context.Background()

	gone, friend, owner := createUser(t, conn, "gone"), createUser(t, conn, "friend"), createUser(t, conn, "owner")
	if err := conns.Create(ctx, newConnection(gone.ID, friend.ID)); err != nil {
		t.Fatalf("Create connection: %v", err)
	}
	g := createGroup(t, conn, owner.ID, 4)
	if err := groups.AddMember(ctx, member(g, gone.ID)); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	at := t0.Add(time.Hour)
	if err := users.Tombstone(ctx, gone.ID, at); err != nil {
		t.Fatalf("Tombstone: %v", err)
	}

	got, err := users.GetByID(ctx, gone.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.IsDeleted() || got.DisplayName != user.DeletedDisplayName || got.ExternalID.Valid || got.Handle.Valid {
		t.Errorf("tombstone = %+v", got)
	}
	if _, err := conns.GetByPair(ctx, gone.ID, friend.ID); !errors.Is(err, circles_errors.ErrNotFound) {
		t.Errorf("connection survived: err = %v", err)
	}
	if _, err := groups.GetMember(ctx, g.ID, gone.ID); !errors.Is(err, circles_errors.ErrNotFound) {
		t.Errorf("membership survived: err = %v", err)
	}
	if refreshed, _ := groups.GetByID(ctx, g.ID); refreshed.MemberCount != 1 {
		t.Errorf("MemberCount = %d, want 1", refreshed.MemberCount)
	}

	// The released identity can sign up again.
	again := user.User{
		ID: uuid.New(), ExternalID: sql.NullString{String: "ext_gone", Valid: true},
		DisplayName: "gone", Handle: sql.NullString{String: "gone", Valid: true}, CreatedAt: at, UpdatedAt: at,
	}
	if err := users.Create(ctx, &again); err != nil {
		t.Errorf("re-signup: %v", err)
	}
	if err := users.Tombstone(ctx, gone.ID, at); !errors.Is(err, circles_errors.ErrNotFound) {
		t.Errorf("second Tombstone: err = %v, want ErrNotFound", err)
	}
}

func TestSeedPromptsIsIdempotent(t *testing.T) {
	conn := newTestConn(t)
	db := &database.Database{Dialect: database.SQLite}
	var ok bool
	if db.Conn, ok = conn.db.(*sql.DB); !ok {
		t.Fatal("test connection does not wrap *sql.DB")
	}
	ctx := context.Background()
	cfg := database.DefaultSeedConfig(t0)

	first, err := database.SeedPrompts(ctx, db, cfg)
	if err != nil {
		t.Fatalf("SeedPrompts: %v", err)
	}
	if first.Inserted != len(cfg.Prompts) {
		t.Errorf("Inserted = %d, want %d", first.Inserted, len(cfg.Prompts))
	}
	second, err := database.SeedPrompts(ctx, db, cfg)
	if err != nil {
		t.Fatalf("SeedPrompts again: %v", err)
	}
	if second.Inserted != 0 || second.Skipped != len(cfg.Prompts) {
		t.Errorf("second run = %+v, want all skipped", second)
	}

	active, err := NewPromptRepository(conn).GetActive(ctx, t0)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if active.Content != cfg.Prompts[0] {
		t.Errorf("active prompt = %q, want %q", active.Content, cfg.Prompts[0])
	}
}
