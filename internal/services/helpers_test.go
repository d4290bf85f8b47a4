package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"circles/internal/domain/notification"
	"circles/internal/domain/user"
	"circles/internal/repository"
	"circles/pkg/database"

	"github.com/google/uuid"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type sentNotification struct {
	UserID  uuid.UUID
	Payload notification.Payload
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Emit(_ context.Context, userID uuid.UUID, payload notification.Payload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, Payload: payload})
}

func (n *recordingNotifier) to(userID uuid.UUID) []notification.Payload {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notification.Payload
	for _, s := range n.sent {
		if s.UserID == userID {
			out = append(out, s.Payload)
		}
	}
	return out
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type testEnv struct {
	conn        *repository.Conn
	notifier    *recordingNotifier
	users       *UserService
	connections *ConnectionService
	groups      *GroupService
	prompts     *PromptService
	chats       *ChatService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "circles.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	conn := repository.NewConn(db.Conn, db.Dialect)
	if err := repository.InitSchema(context.Background(), conn); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}

	userRepo := repository.NewUserRepository(conn)
	connRepo := repository.NewConnectionRepository(conn)
	groupRepo := repository.NewGroupRepository(conn)
	promptRepo := repository.NewPromptRepository(conn)
	chatRepo := repository.NewChatRepository(conn)

	notifier := &recordingNotifier{}
	env := &testEnv{
		conn:        conn,
		notifier:    notifier,
		connections: NewConnectionService(connRepo, userRepo, notifier),
		groups:      NewGroupService(groupRepo, userRepo, notifier),
		prompts:     NewPromptService(promptRepo, groupRepo, connRepo, notifier),
		chats:       NewChatService(chatRepo, userRepo),
	}
	env.users = NewUserService(userRepo, env.connections, env.groups, nil)

	now := func() time.Time { return t0 }
	env.users.now = now
	env.connections.now = now
	env.groups.now = now
	env.prompts.now = now
	env.chats.now = now
	return env
}

func (e *testEnv) signUp(t *testing.T, name string) user.User {
	t.Helper()
	u, err := e.users.EnsureUser(context.Background(), user.Identity{
		Subject:     "sub_" + name + "_" + uuid.NewString()[:8],
		DisplayName: name,
		Username:    name,
	})
	if err != nil {
		t.Fatalf("EnsureUser(%s): %v", name, err)
	}
	return u
}
