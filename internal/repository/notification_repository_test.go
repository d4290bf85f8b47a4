package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"circles/internal/domain/notification"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

func TestNotificationStoresTypedPayload(t *testing.T) {
	conn := newTestConn(t)
	repo := NewNotificationRepository(conn)
	ctx := context.Background()
	u, from := createUser(t, conn, "ana"), createUser(t, conn, "bo")

	n := notification.Notification{
		ID:        uuid.New(),
		UserID:    u.ID,
		Payload:   notification.FriendRequest{FromUserID: from.ID, FromName: from.DisplayName},
		CreatedAt: t0,
	}
	if err := repo.Create(ctx, &n); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.Type != notification.TypeFriendRequest || n.SchemaVersion != 1 {
		t.Errorf("Create set type %s v%d", n.Type, n.SchemaVersion)
	}

	got, err := repo.GetByID(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	p, ok := got.Payload.(notification.FriendRequest)
	if !ok {
		t.Fatalf("payload type = %T, want FriendRequest", got.Payload)
	}
	if p.FromUserID != from.ID || p.FromName != "bo" {
		t.Errorf("payload = %+v", p)
	}
}

func TestNotificationReadLifecycle(t *testing.T) {
	conn := newTestConn(t)
	repo := NewNotificationRepository(conn)
	ctx := context.Background()
	u := createUser(t, conn, "ana")

	for i := 0; i < 3; i++ {
		n := notification.Notification{
			ID:        uuid.New(),
			UserID:    u.ID,
			Payload:   notification.PromptOpen{PromptID: uuid.New()},
			CreatedAt: t0.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(ctx, &n); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if n, _ := repo.CountUnread(ctx, u.ID); n != 3 {
		t.Errorf("CountUnread = %d, want 3", n)
	}
	if n, err := repo.MarkAllRead(ctx, u.ID); err != nil || n != 3 {
		t.Errorf("MarkAllRead = %d, %v; want 3", n, err)
	}

	fresh := notification.Notification{ID: uuid.New(), UserID: u.ID, Payload: notification.VotingOpen{}, CreatedAt: t0.Add(time.Minute)}
	if err := repo.Create(ctx, &fresh); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if n, err := repo.DeleteRead(ctx, u.ID); err != nil || n != 3 {
		t.Errorf("DeleteRead = %d, %v; want 3", n, err)
	}
	list, err := repo.ListForUser(ctx, u.ID, 50)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(list) != 1 || list[0].ID != fresh.ID || list[0].IsRead {
		t.Errorf("remaining = %+v, want only the unread one", list)
	}

	if err := repo.Delete(ctx, fresh.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, fresh.ID); !errors.Is(err, circles_errors.ErrNotFound) {
		t.Errorf("second Delete: err = %v, want ErrNotFound", err)
	}
}
