package handler

import (
	"context"

	"circles/internal/services"
	"circles/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GroupHandler struct {
	service *services.GroupService
}

func NewGroupHandler(service *services.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

func (h *GroupHandler) Create(c *gin.Context) {
	var req httpdto.CreateGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	g, err := h.service.Create(c.Request.Context(), userID, req.Input())
	if err != nil {
		fail(c, err)
		return
	}
	respondCreated(c, httpdto.FromGroup(g))
}

// List returns the caller's groups.
func (h *GroupHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	groups, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromGroups(groups))
}

func (h *GroupHandler) Explore(c *gin.Context) {
	groups, err := h.service.ListPublic(c.Request.Context(), queryLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromGroups(groups))
}

func (h *GroupHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	g, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromGroup(g))
}

func (h *GroupHandler) Update(c *gin.Context) {
	var req httpdto.UpdateGroupRequest
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

	g, err := h.service.UpdateSettings(c.Request.Context(), userID, id, req.Patch())
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromGroup(g))
}

func (h *GroupHandler) Delete(c *gin.Context) {
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

func (h *GroupHandler) Join(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	g, err := h.service.Join(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromGroup(g))
}

func (h *GroupHandler) Leave(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Leave(c.Request.Context(), userID, id); err != nil {
		fail(c, err)
		return
	}
	respondOK[any](c, nil)
}

func (h *GroupHandler) Members(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	members, err := h.service.Members(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromMembers(members))
}

func (h *GroupHandler) Promote(c *gin.Context) {
	h.memberAction(c, h.service.Promote)
}

func (h *GroupHandler) Demote(c *gin.Context) {
	h.memberAction(c, h.service.Demote)
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	h.memberAction(c, h.service.Remove)
}

type memberActionFunc func(ctx context.Context, actingUserID, groupID, targetUserID uuid.UUID) error

// memberAction runs an admin action against /groups/:id/members/:userId.
func (h *GroupHandler) memberAction(c *gin.Context, action memberActionFunc) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	groupID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	targetID, ok := paramUUID(c, "userId")
	if !ok {
		return
	}
	if err := action(c.Request.Context(), userID, groupID, targetID); err != nil {
		fail(c, err)
		return
	}
	respondOK[any](c, nil)
}
