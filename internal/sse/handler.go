package sse

import (
	"fmt"
	"net/http"

	"chatwave/internal/auth"
	"chatwave/internal/transport/httpdto"
	"chatwave/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler bridges an HTTP request onto a push connection and streams frames
// until the client disconnects or the connection is torn down.
type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/sse", h.Stream)
}

func (h *Handler) Stream(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var lastEventID *uuid.UUID
	raw := c.GetHeader("Last-Event-ID")
	if raw == "" {
		raw = c.Query("lastEventId")
	}
	if raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid last event id", "INVALID_REQUEST"))
			return
		}
		lastEventID = &id
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("streaming unsupported", "STREAMING_UNSUPPORTED"))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	conn := h.service.Connect(c.Request.Context(), principal.UserID, lastEventID)
	clientGone := c.Request.Context().Done()

	for {
		select {
		case frame := <-conn.Frames():
			if err := writeFrame(c.Writer, frame); err != nil {
				h.log.WithContext(c.Request.Context()).Warn("sse write failed",
					zap.String("connection_id", conn.ID.String()),
					zap.Error(err),
				)
				conn.Fail(err)
				return
			}
			flusher.Flush()
		case <-conn.Done():
			return
		case <-clientGone:
			conn.Complete()
			return
		}
	}
}

func writeFrame(w http.ResponseWriter, f Frame) error {
	if f.ID != uuid.Nil {
		if _, err := fmt.Fprintf(w, "id: %s\n", f.ID); err != nil {
			return err
		}
	}
	if f.Event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", f.Event); err != nil {
			return err
		}
	}
	if len(f.Data) > 0 {
		if _, err := fmt.Fprintf(w, "data: %s\n", f.Data); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "\n")
	return err
}
