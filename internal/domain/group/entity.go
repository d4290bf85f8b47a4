package group

import (
	"strings"
	"time"

	"circles/internal/domain/user"
	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Size bounds every group must respect: MinSize <= minMembers <= maxMembers <= MaxSize.
const (
	MinSize = 2
	MaxSize = 6
)

// Group represents the social_groups table
type Group struct {
	ID          uuid.UUID
	Name        string
	Description string
	Visibility  Visibility
	MinMembers  int
	MaxMembers  int
	MemberCount int
	CreatorID   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (g Group) IsCreator(userID uuid.UUID) bool {
	return g.CreatorID == userID
}

func (g Group) IsFull() bool {
	return g.MemberCount >= g.MaxMembers
}

// Member represents the group_members table
type Member struct {
	GroupID  uuid.UUID
	UserID   uuid.UUID
	IsAdmin  bool
	JoinedAt time.Time
}

// IsAdmin reports whether m may administer g: the creator always can,
// otherwise the member's admin flag decides.
func IsAdmin(g Group, m Member) bool {
	return g.IsCreator(m.UserID) || (m.GroupID == g.ID && m.IsAdmin)
}

// MemberProfile is a membership joined with the member's public profile.
type MemberProfile struct {
	Member
	Profile   user.Profile
	IsCreator bool
}

// ValidateBounds checks the member-count bounds of a group.
func ValidateBounds(minMembers, maxMembers int) error {
	if minMembers < MinSize || maxMembers > MaxSize || minMembers > maxMembers {
		return circles_errors.ErrInvalidInput
	}
	return nil
}

type CreateInput struct {
	Name        string
	Description string
	Visibility  Visibility
	MinMembers  int
	MaxMembers  int
}

func (in CreateInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" || !in.Visibility.Valid() {
		return circles_errors.ErrInvalidInput
	}
	return ValidateBounds(in.MinMembers, in.MaxMembers)
}

// SettingsPatch carries optional settings changes; nil fields are left alone.
type SettingsPatch struct {
	Name        *string
	Description *string
	Visibility  *Visibility
	MinMembers  *int
	MaxMembers  *int
}

// Apply merges p into g and validates the result. The capacity check against
// the live member count happens in the store.
func (g Group) Apply(p SettingsPatch) (Group, error) {
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return g, circles_errors.ErrInvalidInput
		}
		g.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.Visibility != nil {
		if !p.Visibility.Valid() {
			return g, circles_errors.ErrInvalidInput
		}
		g.Visibility = *p.Visibility
	}
	if p.MinMembers != nil {
		g.MinMembers = *p.MinMembers
	}
	if p.MaxMembers != nil {
		g.MaxMembers = *p.MaxMembers
	}
	if err := ValidateBounds(g.MinMembers, g.MaxMembers); err != nil {
		return g, err
	}
	return g, nil
}
