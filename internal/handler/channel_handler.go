package handler

import (
	"net/http"

	"chatwave/internal/services"
	"chatwave/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChannelHandler struct {
	service *services.ChannelService
}

func NewChannelHandler(service *services.ChannelService) *ChannelHandler {
	return &ChannelHandler{service: service}
}

func (h *ChannelHandler) CreatePublic(c *gin.Context) {
	var req httpdto.CreatePublicChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	ch, err := h.service.CreatePublic(c.Request.Context(), req.Name)
	if err != nil {
		status, code := statusFor(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(ch))
}

func (h *ChannelHandler) CreatePrivate(c *gin.Context) {
	var req httpdto.CreatePrivateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	participantIDs := make([]uuid.UUID, 0, len(req.ParticipantIDs))
	for _, raw := range req.ParticipantIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid participant id", "INVALID_REQUEST"))
			return
		}
		participantIDs = append(participantIDs, id)
	}

	ch, err := h.service.CreatePrivate(c.Request.Context(), participantIDs)
	if err != nil {
		status, code := statusFor(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(ch))
}
