package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DeletedDisplayName replaces the display name of a tombstoned account.
const DeletedDisplayName = "Deleted user"

// User represents the users table
type User struct {
	ID          uuid.UUID
	ExternalID  sql.NullString
	DisplayName string
	Handle      sql.NullString
	AvatarURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   sql.NullTime
}

func (u User) IsDeleted() bool {
	return u.DeletedAt.Valid
}

// Profile is the public projection of a user shown to other users.
type Profile struct {
	ID          uuid.UUID
	DisplayName string
	Handle      string
	AvatarURL   string
	IsDeleted   bool
}

func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Handle:      u.Handle.String,
		AvatarURL:   u.AvatarURL,
		IsDeleted:   u.IsDeleted(),
	}
}

// Identity is what the identity provider asserts about a signed-in caller.
type Identity struct {
	Subject     string
	DisplayName string
	Username    string
	AvatarURL   string
}

// ProfilePatch carries optional profile changes; nil fields are left alone.
type ProfilePatch struct {
	DisplayName *string
	Handle      *string
	AvatarURL   *string
}

// Stats summarizes a user's participation.
type Stats struct {
	ResponseCount      int
	TotalVotesReceived int
	FriendCount        int
}
