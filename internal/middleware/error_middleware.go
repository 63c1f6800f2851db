package middleware

import (
	"errors"
	"net/http"

	"chatwave/internal/transport/httpdto"
	chatwave_errors "chatwave/pkg/errors"
	"chatwave/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler converts errors attached during handling into the response
// envelope. Sentinel errors map to their status; anything else becomes an
// internal error with the detail kept out of the response body.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}
		if c.Writer.Written() {
			return
		}

		status, code := errorStatus(last.Err)
		if status == http.StatusInternalServerError {
			l.WithContext(c.Request.Context()).Error("unhandled request error", zap.Error(last.Err))
			c.JSON(status, httpdto.NewErrorResponse("internal error", code))
			return
		}
		c.JSON(status, httpdto.NewErrorResponse(last.Err.Error(), code))
	}
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, chatwave_errors.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, chatwave_errors.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, chatwave_errors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, chatwave_errors.ErrConflict), errors.Is(err, chatwave_errors.ErrAlreadyExists):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, chatwave_errors.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_REQUEST"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
