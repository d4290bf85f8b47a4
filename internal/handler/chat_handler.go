package handler

import (
	"time"

	"circles/internal/services"
	"circles/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	service *services.ChatService
	now     func() time.Time
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service, now: time.Now}
}

func (h *ChatHandler) Open(c *gin.Context) {
	var req httpdto.OpenChatRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	otherID, ok := bodyUUID(c, req.UserID)
	if !ok {
		return
	}

	ch, err := h.service.GetOrCreate(c.Request.Context(), userID, otherID)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromChat(ch))
}

func (h *ChatHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	summaries, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromSummaries(summaries))
}

func (h *ChatHandler) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	chatID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	summary, err := h.service.Get(c.Request.Context(), chatID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromSummary(summary))
}

func (h *ChatHandler) Messages(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	chatID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	messages, err := h.service.Messages(c.Request.Context(), chatID, userID, queryLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromMessages(messages))
}

func (h *ChatHandler) Send(c *gin.Context) {
	var req httpdto.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	chatID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	m, err := h.service.Send(c.Request.Context(), chatID, userID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respondCreated(c, httpdto.FromMessage(m))
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	chatID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), chatID, userID, h.now()); err != nil {
		fail(c, err)
		return
	}
	respondOK[any](c, nil)
}
