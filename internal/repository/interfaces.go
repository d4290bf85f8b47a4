package repository

import (
	"context"
	"database/sql"
	"time"

	"circles/internal/domain/chat"
	"circles/internal/domain/connection"
	"circles/internal/domain/group"
	"circles/internal/domain/notification"
	"circles/internal/domain/prompt"
	"circles/internal/domain/user"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByExternalID(ctx context.Context, externalID string) (user.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.User, error)
	Update(ctx context.Context, u user.User) error
	Search(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]user.User, error)

	// Tombstone releases the account's identity, drops its connections and
	// non-creator memberships, and marks the row deleted, in one transaction.
	Tombstone(ctx context.Context, id uuid.UUID, at time.Time) error
}

type ConnectionRepository interface {
	Create(ctx context.Context, c *connection.Connection) error
	GetByID(ctx context.Context, id uuid.UUID) (connection.Connection, error)
	GetByPair(ctx context.Context, a, b uuid.UUID) (connection.Connection, error)

	// TransitionFromPending moves a pending connection addressed to recipientID
	// to status. It reports false when no row matched.
	TransitionFromPending(ctx context.Context, id, recipientID uuid.UUID, status connection.Status, at time.Time) (bool, error)

	ListFriends(ctx context.Context, userID uuid.UUID) ([]user.User, error)
	ListIncoming(ctx context.Context, userID uuid.UUID) ([]connection.Request, error)
	DeleteAccepted(ctx context.Context, a, b uuid.UUID) (bool, error)
	CountFriends(ctx context.Context, userID uuid.UUID) (int, error)
}

type GroupRepository interface {
	CreateWithCreator(ctx context.Context, g *group.Group, creator group.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (group.Group, error)
	UpdateSettings(ctx context.Context, g group.Group) error
	Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)

	GetMember(ctx context.Context, groupID, userID uuid.UUID) (group.Member, error)
	AddMember(ctx context.Context, m group.Member) error
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID, at time.Time) error
	// SetAdmin flips is_admin only when it differs and reports whether it did.
	SetAdmin(ctx context.Context, groupID, userID uuid.UUID, isAdmin bool) (bool, error)

	ListMembers(ctx context.Context, groupID uuid.UUID) ([]group.MemberProfile, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]group.Group, error)
	ListPublic(ctx context.Context, limit int) ([]group.Group, error)
	ListCreatedBy(ctx context.Context, userID uuid.UUID) ([]group.Group, error)
	ListAllMemberIDs(ctx context.Context) ([]uuid.UUID, error)
}

type PromptRepository interface {
	Create(ctx context.Context, p *prompt.Prompt) error
	GetByID(ctx context.Context, id uuid.UUID) (prompt.Prompt, error)
	GetActive(ctx context.Context, now time.Time) (prompt.Prompt, error)
	ListPast(ctx context.Context, now time.Time, limit int) ([]prompt.Prompt, error)
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]prompt.Prompt, error)
	ListForDispatch(ctx context.Context, now, revealedSince time.Time) ([]prompt.Prompt, error)
	ClaimDispatch(ctx context.Context, promptID uuid.UUID, kind prompt.DispatchKind, at time.Time) (bool, error)

	UpsertResponse(ctx context.Context, r prompt.Response) (prompt.Response, error)
	GetResponse(ctx context.Context, id uuid.UUID) (prompt.Response, error)
	GetUserResponse(ctx context.Context, promptID, groupID, userID uuid.UUID) (prompt.ResponseWithAuthor, error)
	ListResponses(ctx context.Context, promptID, groupID uuid.UUID) ([]prompt.ResponseWithAuthor, error)
	CountResponses(ctx context.Context, promptID, groupID uuid.UUID) (int, error)
	ToggleVote(ctx context.Context, responseID, voterID uuid.UUID, at time.Time) (bool, error)
	ListUserFeed(ctx context.Context, userID uuid.UUID, limit int) ([]prompt.FeedEntry, error)
	UserResponseStats(ctx context.Context, userID uuid.UUID) (responses int, votes int, err error)
}

type ChatRepository interface {
	GetOrCreate(ctx context.Context, c chat.Chat) (chat.Chat, error)
	GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error)
	MarkRead(ctx context.Context, chatID, readerID uuid.UUID, at time.Time) error

	CreateMessage(ctx context.Context, m *chat.Message) error
	ListMessages(ctx context.Context, chatID uuid.UUID, limit int) ([]chat.Message, error)
	LatestMessage(ctx context.Context, chatID uuid.UUID) (chat.Message, error)
	CountUnread(ctx context.Context, chatID, viewerID uuid.UUID, watermark sql.NullTime) (int, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *notification.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (notification.Notification, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]notification.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
