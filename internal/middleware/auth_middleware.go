package middleware

import (
	"net/http"
	"strings"

	"chatwave/internal/auth"
	"chatwave/internal/transport/httpdto"
	"chatwave/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and installs the principal into
// the request context. The user id also lands in the logging context, so
// request logs carry identity without touching the principal.
func AuthMiddleware(tokens *auth.TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := tokens.ParseAccessToken(extractBearer(c))
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		ctx := auth.WithPrincipal(c.Request.Context(), principal)
		ctx = logger.WithUserID(ctx, principal.UserID.String())
		c.Request = c.Request.WithContext(ctx)
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
