package httpdto

import (
	"time"

	"circles/internal/domain/user"
	"circles/internal/services"
	"circles/internal/storage"
)

// UpdateProfileRequest is used for PATCH /v1/me
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName,omitempty"`
	Handle      *string `json:"handle,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

func (r UpdateProfileRequest) Patch() user.ProfilePatch {
	return user.ProfilePatch{DisplayName: r.DisplayName, Handle: r.Handle, AvatarURL: r.AvatarURL}
}

// AvatarUploadRequest is used for POST /v1/me/avatar-upload
type AvatarUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type AvatarUploadResponse struct {
	UploadURL string            `json:"uploadUrl"`
	Headers   map[string]string `json:"headers"`
	PublicURL string            `json:"publicUrl"`
	ExpiresAt string            `json:"expiresAt"`
}

func FromAvatarUpload(u storage.AvatarUpload) AvatarUploadResponse {
	return AvatarUploadResponse{
		UploadURL: u.UploadURL,
		Headers:   u.Headers,
		PublicURL: u.PublicURL,
		ExpiresAt: formatTime(u.ExpiresAt),
	}
}

// ProfileDTO is the public view of a user
type ProfileDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Handle      string `json:"handle,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	IsDeleted   bool   `json:"isDeleted,omitempty"`
}

// MeDTO is the signed-in user's own account
type MeDTO struct {
	ProfileDTO
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type StatsDTO struct {
	ResponseCount      int `json:"responseCount"`
	TotalVotesReceived int `json:"totalVotesReceived"`
	FriendCount        int `json:"friendCount"`
}

type SearchResultDTO struct {
	ProfileDTO
	Relation     string `json:"relation"`
	ConnectionID string `json:"connectionId,omitempty"`
}

func FromProfile(p user.Profile) ProfileDTO {
	return ProfileDTO{
		ID:          p.ID.String(),
		DisplayName: p.DisplayName,
		Handle:      p.Handle,
		AvatarURL:   p.AvatarURL,
		IsDeleted:   p.IsDeleted,
	}
}

func FromProfiles(items []user.Profile) []ProfileDTO {
	out := make([]ProfileDTO, 0, len(items))
	for _, p := range items {
		out = append(out, FromProfile(p))
	}
	return out
}

func FromMe(u user.User) MeDTO {
	return MeDTO{
		ProfileDTO: FromProfile(u.Profile()),
		CreatedAt:  formatTime(u.CreatedAt),
		UpdatedAt:  formatTime(u.UpdatedAt),
	}
}

func FromStats(s user.Stats) StatsDTO {
	return StatsDTO{
		ResponseCount:      s.ResponseCount,
		TotalVotesReceived: s.TotalVotesReceived,
		FriendCount:        s.FriendCount,
	}
}

func FromSearchResults(items []services.SearchResult) []SearchResultDTO {
	out := make([]SearchResultDTO, 0, len(items))
	for _, r := range items {
		dto := SearchResultDTO{ProfileDTO: FromProfile(r.Profile), Relation: string(r.Relation)}
		if r.ConnectionID.Valid {
			dto.ConnectionID = r.ConnectionID.UUID.String()
		}
		out = append(out, dto)
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
