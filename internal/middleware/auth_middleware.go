package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"circles/internal/domain/user"
	"circles/internal/services"
	"circles/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// CallerResolver turns a bearer token into the signed-in account.
type CallerResolver interface {
	Resolve(ctx context.Context, token string) (user.User, error)
}

func AuthMiddleware(resolver CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		caller, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			status, code := httpdto.StatusFor(err)
			if status == http.StatusInternalServerError {
				c.JSON(status, httpdto.NewErrorResponse("internal error", code))
			} else {
				c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthenticated", "UNAUTHENTICATED"))
			}
			c.Abort()
			return
		}

		ctx := services.WithUserID(c.Request.Context(), caller.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AdminKeyMiddleware guards operator endpoints with a shared key. An empty
// key disables them.
func AdminKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		given := c.GetHeader("X-Admin-Key")
		if key == "" || subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("forbidden", "FORBIDDEN"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
