package handler

import (
	"net/http"

	"chatwave/internal/domain/chatuser"
	"chatwave/internal/services"
	"chatwave/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	switch chatuser.Role(req.Role) {
	case chatuser.RoleAdmin, chatuser.RoleChannelManager, chatuser.RoleUser:
	default:
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid role", "INVALID_REQUEST"))
		return
	}

	updated, err := h.service.ChangeRole(c.Request.Context(), userID, chatuser.Role(req.Role))
	if err != nil {
		status, code := statusFor(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(updated))
}
