package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"circles/internal/domain/group"
	"circles/internal/domain/user"
	"circles/pkg/database"

	"github.com/google/uuid"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestConn(t *testing.T) *Conn {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "circles.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	conn := NewConn(db.Conn, db.Dialect)
	if err := InitSchema(context.Background(), conn); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	return conn
}

func createUser(t *testing.T, conn *Conn, name string) user.User {
	t.Helper()
	u := user.User{
		ID:          uuid.New(),
		ExternalID:  sql.NullString{String: "ext_" + name, Valid: true},
		DisplayName: name,
		Handle:      sql.NullString{String: user.NormalizeHandle(name), Valid: true},
		CreatedAt:   t0,
		UpdatedAt:   t0,
	}
	if err := NewUserRepository(conn).Create(context.Background(), &u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func createGroup(t *testing.T, conn *Conn, creator uuid.UUID, maxMembers int) group.Group {
	t.Helper()
	g := group.Group{
		ID:          uuid.New(),
		Name:        "group " + creator.String()[:4],
		Visibility:  group.VisibilityPublic,
		MinMembers:  2,
		MaxMembers:  maxMembers,
		MemberCount: 1,
		CreatorID:   creator,
		CreatedAt:   t0,
		UpdatedAt:   t0,
	}
	creatorRow := group.Member{GroupID: g.ID, UserID: creator, IsAdmin: true, JoinedAt: t0}
	if err := NewGroupRepository(conn).CreateWithCreator(context.Background(), &g, creatorRow); err != nil {
		t.Fatalf("create group: %v", err)
	}
	return g
}
