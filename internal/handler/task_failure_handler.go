package handler

import (
	"net/http"
	"strconv"

	"chatwave/internal/auth"
	"chatwave/internal/domain/chatuser"
	"chatwave/internal/services"
	"chatwave/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type TaskFailureHandler struct {
	service *services.TaskFailureService
}

func NewTaskFailureHandler(service *services.TaskFailureService) *TaskFailureHandler {
	return &TaskFailureHandler{service: service}
}

// List is an operator surface; admins only.
func (h *TaskFailureHandler) List(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	if principal.Role != chatuser.RoleAdmin {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("forbidden", "FORBIDDEN"))
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid limit", "INVALID_REQUEST"))
			return
		}
		limit = parsed
	}

	failures, err := h.service.FindAll(c.Request.Context(), limit)
	if err != nil {
		status, code := statusFor(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"failures": failures}))
}
