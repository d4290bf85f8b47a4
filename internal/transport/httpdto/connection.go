package httpdto

import (
	"circles/internal/domain/connection"
)

// SendRequestRequest is used for POST /v1/connections
type SendRequestRequest struct {
	RecipientID string `json:"recipientId" binding:"required"`
}

// RespondRequest is used for POST /v1/connections/:id/respond
type RespondRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

type ConnectionDTO struct {
	ID          string `json:"id"`
	RequesterID string `json:"requesterId"`
	RecipientID string `json:"recipientId"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type ConnectionStatusDTO struct {
	Status       string `json:"status"`
	ConnectionID string `json:"connectionId,omitempty"`
}

type ConnectionRequestDTO struct {
	ConnectionDTO
	Requester ProfileDTO `json:"requester"`
}

func FromConnection(c connection.Connection) ConnectionDTO {
	return ConnectionDTO{
		ID:          c.ID.String(),
		RequesterID: c.RequesterID.String(),
		RecipientID: c.RecipientID.String(),
		Status:      string(c.Status),
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
}

func FromStatusView(v connection.StatusView) ConnectionStatusDTO {
	dto := ConnectionStatusDTO{Status: string(v.Relation)}
	if v.ConnectionID.Valid {
		dto.ConnectionID = v.ConnectionID.UUID.String()
	}
	return dto
}

func FromRequests(items []connection.Request) []ConnectionRequestDTO {
	out := make([]ConnectionRequestDTO, 0, len(items))
	for _, r := range items {
		out = append(out, ConnectionRequestDTO{
			ConnectionDTO: FromConnection(r.Connection),
			Requester:     FromProfile(r.Requester),
		})
	}
	return out
}
