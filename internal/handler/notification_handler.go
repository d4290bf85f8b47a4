package handler

import (
	"circles/internal/services"
	"circles/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), userID, queryLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromNotifications(items))
}

// UnreadCount backs the client's badge poll.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.UnreadCountDTO{Count: count})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.service.MarkAllRead(c.Request.Context(), userID); err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.UnreadCountDTO{Count: 0})
}

func (h *NotificationHandler) ClearRead(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	deleted, err := h.service.ClearRead(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.ClearedDTO{Deleted: deleted})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		fail(c, err)
		return
	}
	respondOK[any](c, nil)
}
