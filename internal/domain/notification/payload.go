package notification

import (
	"encoding/json"
	"errors"
	"fmt"

	"circles/internal/domain/prompt"

	"github.com/google/uuid"
)

var (
	ErrUnknownType        = errors.New("unknown notification type")
	ErrUnsupportedVersion = errors.New("unsupported payload version")
)

// Payload is the closed set of notification bodies. Each variant maps to
// exactly one Type.
type Payload interface {
	Type() Type
	isPayload()
}

type FriendActor struct {
	FromUserID uuid.UUID `json:"fromUserId"`
	FromName   string    `json:"fromName"`
}

type FriendRequest FriendActor
type FriendRequestAccepted FriendActor
type FriendRequestDeclined FriendActor

type MemberJoined struct {
	GroupID    uuid.UUID `json:"groupId"`
	GroupName  string    `json:"groupName"`
	MemberID   uuid.UUID `json:"memberId"`
	MemberName string    `json:"memberName"`
}

type GroupAction struct {
	GroupID   uuid.UUID `json:"groupId"`
	GroupName string    `json:"groupName"`
	AdminName string    `json:"adminName"`
}

type MemberRemoved GroupAction
type MemberPromoted GroupAction
type MemberDemoted GroupAction

type GroupDeleted struct {
	GroupName string `json:"groupName"`
	AdminName string `json:"adminName"`
}

type PromptEvent struct {
	PromptID uuid.UUID `json:"promptId,omitzero"`
}

type PromptOpen PromptEvent
type PromptClosingSoon PromptEvent
type VotingOpen PromptEvent

type VoteReceived struct {
	ResponseID uuid.UUID `json:"responseId,omitzero"`
	VoterID    uuid.UUID `json:"voterId,omitzero"`
}

func (FriendRequest) Type() Type         { return TypeFriendRequest }
func (FriendRequestAccepted) Type() Type { return TypeFriendRequestAccepted }
func (FriendRequestDeclined) Type() Type { return TypeFriendRequestDeclined }
func (MemberJoined) Type() Type          { return TypeMemberJoined }
func (MemberRemoved) Type() Type         { return TypeMemberRemoved }
func (MemberPromoted) Type() Type        { return TypeMemberPromoted }
func (MemberDemoted) Type() Type         { return TypeMemberDemoted }
func (GroupDeleted) Type() Type          { return TypeGroupDeleted }
func (PromptOpen) Type() Type            { return TypePromptOpen }
func (PromptClosingSoon) Type() Type     { return TypePromptClosingSoon }
func (VotingOpen) Type() Type            { return TypeVotingOpen }
func (VoteReceived) Type() Type          { return TypeVoteReceived }

func (FriendRequest) isPayload()         {}
func (FriendRequestAccepted) isPayload() {}
func (FriendRequestDeclined) isPayload() {}
func (MemberJoined) isPayload()          {}
func (MemberRemoved) isPayload()         {}
func (MemberPromoted) isPayload()        {}
func (MemberDemoted) isPayload()         {}
func (GroupDeleted) isPayload()          {}
func (PromptOpen) isPayload()            {}
func (PromptClosingSoon) isPayload()     {}
func (VotingOpen) isPayload()            {}
func (VoteReceived) isPayload()          {}

// Version 2 of the prompt and vote payloads added the ids; version 1 bodies
// were empty objects and still decode.
var schemaVersions = map[Type]int{
	TypeFriendRequest:         1,
	TypeFriendRequestAccepted: 1,
	TypeFriendRequestDeclined: 1,
	TypeMemberJoined:          1,
	TypeMemberRemoved:         1,
	TypeMemberPromoted:        1,
	TypeMemberDemoted:         1,
	TypeGroupDeleted:          1,
	TypePromptOpen:            2,
	TypePromptClosingSoon:     2,
	TypeVotingOpen:            2,
	TypeVoteReceived:          2,
}

// SchemaVersion is the version written for new payloads of type t.
func SchemaVersion(t Type) int {
	return schemaVersions[t]
}

func (t Type) Valid() bool {
	_, ok := schemaVersions[t]
	return ok
}

// Encode serializes p and returns the schema version to store beside it.
func Encode(p Payload) ([]byte, int, error) {
	if p == nil {
		return nil, 0, fmt.Errorf("encode payload: nil")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, 0, fmt.Errorf("encode %s payload: %w", p.Type(), err)
	}
	return data, SchemaVersion(p.Type()), nil
}

// Decode restores the typed payload stored for t at the given version.
func Decode(t Type, version int, data []byte) (Payload, error) {
	current, ok := schemaVersions[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if version < 1 || version > current {
		return nil, fmt.Errorf("%w: %s v%d", ErrUnsupportedVersion, t, version)
	}

	switch t {
	case TypeFriendRequest:
		return decodeAs[FriendRequest](data)
	case TypeFriendRequestAccepted:
		return decodeAs[FriendRequestAccepted](data)
	case TypeFriendRequestDeclined:
		return decodeAs[FriendRequestDeclined](data)
	case TypeMemberJoined:
		return decodeAs[MemberJoined](data)
	case TypeMemberRemoved:
		return decodeAs[MemberRemoved](data)
	case TypeMemberPromoted:
		return decodeAs[MemberPromoted](data)
	case TypeMemberDemoted:
		return decodeAs[MemberDemoted](data)
	case TypeGroupDeleted:
		return decodeAs[GroupDeleted](data)
	case TypePromptOpen:
		return decodeAs[PromptOpen](data)
	case TypePromptClosingSoon:
		return decodeAs[PromptClosingSoon](data)
	case TypeVotingOpen:
		return decodeAs[VotingOpen](data)
	case TypeVoteReceived:
		return decodeAs[VoteReceived](data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

func decodeAs[T Payload](data []byte) (Payload, error) {
	var p T
	if len(data) > 0 {
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", p.Type(), err)
		}
	}
	return p, nil
}

// ForDispatch builds the payload announcing a scheduled prompt milestone.
func ForDispatch(kind prompt.DispatchKind, promptID uuid.UUID) (Payload, error) {
	switch kind {
	case prompt.DispatchOpen:
		return PromptOpen{PromptID: promptID}, nil
	case prompt.DispatchClosingSoon:
		return PromptClosingSoon{PromptID: promptID}, nil
	case prompt.DispatchVotingOpen:
		return VotingOpen{PromptID: promptID}, nil
	}
	return nil, fmt.Errorf("%w: dispatch %q", ErrUnknownType, kind)
}
