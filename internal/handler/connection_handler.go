package handler

import (
	"circles/internal/services"
	"circles/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type ConnectionHandler struct {
	service *services.ConnectionService
}

func NewConnectionHandler(service *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{service: service}
}

func (h *ConnectionHandler) SendRequest(c *gin.Context) {
	var req httpdto.SendRequestRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	recipientID, ok := bodyUUID(c, req.RecipientID)
	if !ok {
		return
	}

	conn, err := h.service.SendRequest(c.Request.Context(), userID, recipientID)
	if err != nil {
		fail(c, err)
		return
	}
	respondCreated(c, httpdto.FromConnection(conn))
}

func (h *ConnectionHandler) Respond(c *gin.Context) {
	var req httpdto.RespondRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	conn, err := h.service.Respond(c.Request.Context(), id, *req.Accept, userID)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromConnection(conn))
}

func (h *ConnectionHandler) Status(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	otherID, ok := paramUUID(c, "userId")
	if !ok {
		return
	}
	view, err := h.service.Status(c.Request.Context(), userID, otherID)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromStatusView(view))
}

func (h *ConnectionHandler) Requests(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	requests, err := h.service.IncomingRequests(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromRequests(requests))
}

func (h *ConnectionHandler) Friends(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	friends, err := h.service.Friends(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromProfiles(friends))
}

func (h *ConnectionHandler) RemoveFriend(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	friendID, ok := paramUUID(c, "userId")
	if !ok {
		return
	}
	if err := h.service.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
		fail(c, err)
		return
	}
	respondOK[any](c, nil)
}
