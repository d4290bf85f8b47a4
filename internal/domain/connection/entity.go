package connection

import (
	"time"

	"circles/internal/domain/user"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// IsTerminal reports whether the status can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Connection represents the connections table. At most one row exists per
// unordered pair of users.
type Connection struct {
	ID          uuid.UUID
	RequesterID uuid.UUID
	RecipientID uuid.UUID
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Other returns the participant that is not userID.
func (c Connection) Other(userID uuid.UUID) uuid.UUID {
	if c.RequesterID == userID {
		return c.RecipientID
	}
	return c.RequesterID
}

func (c Connection) Involves(userID uuid.UUID) bool {
	return c.RequesterID == userID || c.RecipientID == userID
}

// Relation is the connection state between two users as seen by one of them.
type Relation string

const (
	RelationSelf            Relation = "self"
	RelationNone            Relation = "none"
	RelationPendingSent     Relation = "pending_sent"
	RelationPendingReceived Relation = "pending_received"
	RelationAccepted        Relation = "accepted"
	RelationRejected        Relation = "rejected"
)

// RelationTo describes c from the point of view of viewerID.
func (c Connection) RelationTo(viewerID uuid.UUID) Relation {
	switch c.Status {
	case StatusAccepted:
		return RelationAccepted
	case StatusRejected:
		return RelationRejected
	case StatusPending:
		if c.RequesterID == viewerID {
			return RelationPendingSent
		}
		return RelationPendingReceived
	}
	return RelationNone
}

// StatusView is what Status() returns: the relation plus the row id when one exists.
type StatusView struct {
	Relation     Relation
	ConnectionID uuid.NullUUID
}

// Request is an incoming pending connection with the requester's profile.
type Request struct {
	Connection
	Requester user.Profile
}
