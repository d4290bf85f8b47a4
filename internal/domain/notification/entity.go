package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeFriendRequest         Type = "friend_request"
	TypeFriendRequestAccepted Type = "friend_request_accepted"
	TypeFriendRequestDeclined Type = "friend_request_declined"
	TypeMemberJoined          Type = "member_joined"
	TypeMemberRemoved         Type = "member_removed"
	TypeMemberPromoted        Type = "member_promoted"
	TypeMemberDemoted         Type = "member_demoted"
	TypeGroupDeleted          Type = "group_deleted"
	TypePromptOpen            Type = "prompt_open"
	TypePromptClosingSoon     Type = "prompt_24h"
	TypeVotingOpen            Type = "voting_open"
	TypeVoteReceived          Type = "vote_received"
)

// Notification represents the notifications table
type Notification struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Type          Type
	Payload       Payload
	SchemaVersion int
	IsRead        bool
	CreatedAt     time.Time
}
