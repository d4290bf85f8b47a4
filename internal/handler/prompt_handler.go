package handler

import (
	"time"

	"circles/internal/services"
	"circles/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type PromptHandler struct {
	service *services.PromptService
	now     func() time.Time
}

func NewPromptHandler(service *services.PromptService) *PromptHandler {
	return &PromptHandler{service: service, now: time.Now}
}

func (h *PromptHandler) Active(c *gin.Context) {
	now := h.now()
	p, err := h.service.ActivePrompt(c.Request.Context(), now)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromPrompt(p, now))
}

func (h *PromptHandler) Past(c *gin.Context) {
	now := h.now()
	prompts, err := h.service.PastPrompts(c.Request.Context(), now, queryLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromPrompts(prompts, now))
}

func (h *PromptHandler) Upcoming(c *gin.Context) {
	now := h.now()
	prompts, err := h.service.UpcomingPrompts(c.Request.Context(), now, queryLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromPrompts(prompts, now))
}

func (h *PromptHandler) Create(c *gin.Context) {
	var req httpdto.CreatePromptRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.service.CreatePrompt(c.Request.Context(), req.Input())
	if err != nil {
		fail(c, err)
		return
	}
	respondCreated(c, httpdto.FromPrompt(p, h.now()))
}

func (h *PromptHandler) SubmitResponse(c *gin.Context) {
	var req httpdto.SubmitResponseRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	groupID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	r, err := h.service.SubmitResponse(c.Request.Context(), userID, groupID, req.Content, h.now())
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromResponse(r))
}

func (h *PromptHandler) ListResponses(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	groupID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	now := h.now()
	list, err := h.service.ListResponses(c.Request.Context(), groupID, userID, now)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.FromResponseList(list, now))
}

func (h *PromptHandler) ResponseCount(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	groupID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	count, err := h.service.ResponseCount(c.Request.Context(), groupID, userID, h.now())
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.CountDTO{Count: count})
}

func (h *PromptHandler) Vote(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	responseID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	voted, err := h.service.Vote(c.Request.Context(), responseID, userID, h.now())
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, httpdto.VoteDTO{Voted: voted})
}
