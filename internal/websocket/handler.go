package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"chatwave/internal/auth"
	"chatwave/internal/transport/httpdto"
	"chatwave/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// controlFrame is the inbound subscribe/unsubscribe protocol.
type controlFrame struct {
	Action string `json:"action"`
	Stream string `json:"stream"`
}

type Handler struct {
	tokens     *auth.TokenParser
	hub        *Hub
	authorizer *StreamAuthorizer
	log        *logger.Logger
}

func NewHandler(tokens *auth.TokenParser, hub *Hub, authorizer *StreamAuthorizer, log *logger.Logger) *Handler {
	return &Handler{tokens: tokens, hub: hub, authorizer: authorizer, log: log}
}

func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	principal, err := h.tokens.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, principal.UserID)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var frame controlFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		switch frame.Action {
		case "subscribe":
			ok, err := h.authorizer.CanSubscribe(c.Request.Context(), principal.UserID, frame.Stream)
			if err != nil {
				h.log.WithContext(c.Request.Context()).Warn("stream authorization failed",
					zap.String("stream", frame.Stream),
					zap.Error(err),
				)
				continue
			}
			if ok {
				h.hub.Subscribe(client, frame.Stream)
			}
		case "unsubscribe":
			h.hub.Unsubscribe(client, frame.Stream)
		}
	}

	h.hub.Unregister(client)
}
