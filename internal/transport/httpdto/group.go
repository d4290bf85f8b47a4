package httpdto

import (
	"circles/internal/domain/group"
)

// CreateGroupRequest is used for POST /v1/groups
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	MinMembers  int    `json:"minMembers" binding:"required"`
	MaxMembers  int    `json:"maxMembers" binding:"required"`
}

func (r CreateGroupRequest) Input() group.CreateInput {
	return group.CreateInput{
		Name:        r.Name,
		Description: r.Description,
		Visibility:  group.Visibility(r.Visibility),
		MinMembers:  r.MinMembers,
		MaxMembers:  r.MaxMembers,
	}
}

// UpdateGroupRequest is used for PATCH /v1/groups/:id
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Visibility  *string `json:"visibility,omitempty"`
	MinMembers  *int    `json:"minMembers,omitempty"`
	MaxMembers  *int    `json:"maxMembers,omitempty"`
}

func (r UpdateGroupRequest) Patch() group.SettingsPatch {
	p := group.SettingsPatch{
		Name:        r.Name,
		Description: r.Description,
		MinMembers:  r.MinMembers,
		MaxMembers:  r.MaxMembers,
	}
	if r.Visibility != nil {
		v := group.Visibility(*r.Visibility)
		p.Visibility = &v
	}
	return p
}

type GroupDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Visibility  string `json:"visibility"`
	MinMembers  int    `json:"minMembers"`
	MaxMembers  int    `json:"maxMembers"`
	MemberCount int    `json:"memberCount"`
	CreatorID   string `json:"creatorId"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type MemberDTO struct {
	User      ProfileDTO `json:"user"`
	IsAdmin   bool       `json:"isAdmin"`
	IsCreator bool       `json:"isCreator"`
	JoinedAt  string     `json:"joinedAt"`
}

func FromGroup(g group.Group) GroupDTO {
	return GroupDTO{
		ID:          g.ID.String(),
		Name:        g.Name,
		Description: g.Description,
		Visibility:  string(g.Visibility),
		MinMembers:  g.MinMembers,
		MaxMembers:  g.MaxMembers,
		MemberCount: g.MemberCount,
		CreatorID:   g.CreatorID.String(),
		CreatedAt:   formatTime(g.CreatedAt),
		UpdatedAt:   formatTime(g.UpdatedAt),
	}
}

func FromGroups(items []group.Group) []GroupDTO {
	out := make([]GroupDTO, 0, len(items))
	for _, g := range items {
		out = append(out, FromGroup(g))
	}
	return out
}

func FromMembers(items []group.MemberProfile) []MemberDTO {
	out := make([]MemberDTO, 0, len(items))
	for _, m := range items {
		out = append(out, MemberDTO{
			User:      FromProfile(m.Profile),
			IsAdmin:   m.IsAdmin || m.IsCreator,
			IsCreator: m.IsCreator,
			JoinedAt:  formatTime(m.JoinedAt),
		})
	}
	return out
}
