package handler

import (
	"errors"
	"net/http"
	"time"

	"circles/internal/services"
	"circles/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *services.UserService
	prompts *services.PromptService
	now     func() time.Time
}

func NewUserHandler(service *services.UserService, prompts *services.PromptService) *UserHandler {
	return &UserHandler{service: service, prompts: prompts, now: time.Now}
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	me, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromMe(me))
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req httpdto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	updated, err := h.service.UpdateProfile(c.Request.Context(), userID, req.Patch())
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromMe(updated))
}

func (h *UserHandler) AvatarUpload(c *gin.Context) {
	var req httpdto.AvatarUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	upload, err := h.service.AvatarUploadURL(c.Request.Context(), userID, req.ContentType)
	if errors.Is(err, services.ErrAvatarUploadsDisabled) {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UPLOADS_DISABLED"))
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromAvatarUpload(upload))
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		fail(c, err)
		return
	}
	respondOK[any](c, nil)
}

func (h *UserHandler) Search(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	results, err := h.service.Search(c.Request.Context(), userID, c.Query("q"), queryLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromSearchResults(results))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	u, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromProfile(u.Profile()))
}

func (h *UserHandler) Stats(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	stats, err := h.prompts.UserStats(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromStats(stats))
}

func (h *UserHandler) Feed(c *gin.Context) {
	viewerID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	now := h.now()
	feed, err := h.prompts.UserFeed(c.Request.Context(), viewerID, id, queryLimit(c), now)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromFeed(feed, now))
}
