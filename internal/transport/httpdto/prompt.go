package httpdto

import (
	"time"

	"circles/internal/domain/prompt"
)

// CreatePromptRequest is used for POST /v1/prompts
type CreatePromptRequest struct {
	Content  string    `json:"content" binding:"required"`
	ActiveAt time.Time `json:"activeAt" binding:"required"`
	RevealAt time.Time `json:"revealAt" binding:"required"`
}

func (r CreatePromptRequest) Input() prompt.CreateInput {
	return prompt.CreateInput{Content: r.Content, ActiveAt: r.ActiveAt, RevealAt: r.RevealAt}
}

// SubmitResponseRequest is used for POST /v1/groups/:id/responses
type SubmitResponseRequest struct {
	Content string `json:"content" binding:"required"`
}

type PromptDTO struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	ActiveAt   string `json:"activeAt"`
	RevealAt   string `json:"revealAt"`
	Visibility string `json:"visibility"`
}

type ResponseDTO struct {
	ID        string      `json:"id"`
	PromptID  string      `json:"promptId"`
	GroupID   string      `json:"groupId"`
	UserID    string      `json:"userId"`
	Content   string      `json:"content"`
	VoteCount int         `json:"voteCount"`
	CreatedAt string      `json:"createdAt"`
	UpdatedAt string      `json:"updatedAt"`
	Author    *ProfileDTO `json:"author,omitempty"`
}

type ResponseListDTO struct {
	Prompt        PromptDTO     `json:"prompt"`
	Responses     []ResponseDTO `json:"responses"`
	ResponseCount int           `json:"responseCount"`
	IsRevealed    bool          `json:"isRevealed"`
	RevealAt      string        `json:"revealAt"`
}

type FeedEntryDTO struct {
	Response  ResponseDTO `json:"response"`
	Prompt    PromptDTO   `json:"prompt"`
	GroupName string      `json:"groupName"`
}

type VoteDTO struct {
	Voted bool `json:"voted"`
}

type CountDTO struct {
	Count int `json:"count"`
}

func FromPrompt(p prompt.Prompt, now time.Time) PromptDTO {
	return PromptDTO{
		ID:         p.ID.String(),
		Content:    p.Content,
		ActiveAt:   formatTime(p.ActiveAt),
		RevealAt:   formatTime(p.RevealAt),
		Visibility: string(prompt.VisibilityAt(p, now)),
	}
}

func FromPrompts(items []prompt.Prompt, now time.Time) []PromptDTO {
	out := make([]PromptDTO, 0, len(items))
	for _, p := range items {
		out = append(out, FromPrompt(p, now))
	}
	return out
}

func FromResponse(r prompt.Response) ResponseDTO {
	return ResponseDTO{
		ID:        r.ID.String(),
		PromptID:  r.PromptID.String(),
		GroupID:   r.GroupID.String(),
		UserID:    r.UserID.String(),
		Content:   r.Content,
		VoteCount: r.VoteCount,
		CreatedAt: formatTime(r.CreatedAt),
		UpdatedAt: formatTime(r.UpdatedAt),
	}
}

func FromResponseList(l prompt.ResponseList, now time.Time) ResponseListDTO {
	responses := make([]ResponseDTO, 0, len(l.Responses))
	for _, r := range l.Responses {
		dto := FromResponse(r.Response)
		author := FromProfile(r.Author)
		dto.Author = &author
		responses = append(responses, dto)
	}
	return ResponseListDTO{
		Prompt:        FromPrompt(l.Prompt, now),
		Responses:     responses,
		ResponseCount: l.ResponseCount,
		IsRevealed:    l.IsRevealed,
		RevealAt:      formatTime(l.RevealAt),
	}
}

func FromFeed(items []prompt.FeedEntry, now time.Time) []FeedEntryDTO {
	out := make([]FeedEntryDTO, 0, len(items))
	for _, e := range items {
		out = append(out, FeedEntryDTO{
			Response:  FromResponse(e.Response),
			Prompt:    FromPrompt(e.Prompt, now),
			GroupName: e.GroupName,
		})
	}
	return out
}
