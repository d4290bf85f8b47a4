package handler

import (
	"net/http"
	"strconv"

	"circles/internal/services"
	"circles/internal/transport/httpdto"
	circles_errors "circles/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// fail hands err to the error middleware, which picks the status and code.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		fail(c, circles_errors.ErrUnauthenticated)
	}
	return id, ok
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		fail(c, circles_errors.ErrInvalidInput)
		return uuid.Nil, false
	}
	return id, true
}

func bodyUUID(c *gin.Context, value string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		fail(c, circles_errors.ErrInvalidInput)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return false
	}
	return true
}

func queryLimit(c *gin.Context) int {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return limit
}

func respondOK[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(data))
}

func respondCreated[T any](c *gin.Context, data T) {
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(data))
}
