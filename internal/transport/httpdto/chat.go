package httpdto

import (
	"circles/internal/domain/chat"
)

// OpenChatRequest is used for POST /v1/chats
type OpenChatRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// SendMessageRequest is used for POST /v1/chats/:id/messages
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type ChatDTO struct {
	ID           string      `json:"id"`
	ParticipantA string      `json:"participantA"`
	ParticipantB string      `json:"participantB"`
	CreatedAt    string      `json:"createdAt"`
	Other        *ProfileDTO `json:"other,omitempty"`
	LastMessage  *MessageDTO `json:"lastMessage,omitempty"`
	UnreadCount  int         `json:"unreadCount"`
}

type MessageDTO struct {
	ID        string `json:"id"`
	ChatID    string `json:"chatId"`
	SenderID  string `json:"senderId"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

func FromChat(c chat.Chat) ChatDTO {
	return ChatDTO{
		ID:           c.ID.String(),
		ParticipantA: c.ParticipantA.String(),
		ParticipantB: c.ParticipantB.String(),
		CreatedAt:    formatTime(c.CreatedAt),
	}
}

func FromSummary(s chat.Summary) ChatDTO {
	dto := FromChat(s.Chat)
	other := FromProfile(s.Other)
	dto.Other = &other
	if s.LastMessage != nil {
		m := FromMessage(*s.LastMessage)
		dto.LastMessage = &m
	}
	dto.UnreadCount = s.UnreadCount
	return dto
}

func FromSummaries(items []chat.Summary) []ChatDTO {
	out := make([]ChatDTO, 0, len(items))
	for _, s := range items {
		out = append(out, FromSummary(s))
	}
	return out
}

func FromMessage(m chat.Message) MessageDTO {
	return MessageDTO{
		ID:        m.ID.String(),
		ChatID:    m.ChatID.String(),
		SenderID:  m.SenderID.String(),
		Content:   m.Content,
		CreatedAt: formatTime(m.CreatedAt),
	}
}

func FromMessages(items []chat.Message) []MessageDTO {
	out := make([]MessageDTO, 0, len(items))
	for _, m := range items {
		out = append(out, FromMessage(m))
	}
	return out
}
