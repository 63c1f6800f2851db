package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatwave/config"
	"chatwave/internal/handler"
	"chatwave/internal/middleware"
	"chatwave/internal/redis"
	"chatwave/internal/sse"
	"chatwave/internal/transport/httpdto"
	"chatwave/internal/websocket"
	"chatwave/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

// Handlers bundles every route surface the server mounts.
type Handlers struct {
	Notifications *handler.NotificationHandler
	Messages      *handler.MessageHandler
	Users         *handler.UserHandler
	Channels      *handler.ChannelHandler
	Contents      *handler.ContentHandler
	TaskFailures  *handler.TaskFailureHandler
	Stream        *sse.Handler
	Websocket     *websocket.Handler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authMW gin.HandlerFunc, limiter *redis.RateLimiter, db *sql.DB) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})
	s.engine.GET("/health", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	s.engine.GET("/ws", handlers.Websocket.Connect)

	api := s.engine.Group("/api", authMW)
	{
		api.GET("/sse", handlers.Stream.Stream)

		api.GET("/notifications", handlers.Notifications.List)
		api.DELETE("/notifications/:id", handlers.Notifications.Delete)

		api.POST("/channels", handlers.Channels.CreatePublic)
		api.POST("/channels/private", handlers.Channels.CreatePrivate)
		api.POST("/channels/:id/messages", middleware.MessageRateLimitMiddleware(limiter), handlers.Messages.Send)

		api.PATCH("/users/:id/role", handlers.Users.ChangeRole)

		api.POST("/binary-contents", handlers.Contents.Upload)
		api.GET("/binary-contents/:id", handlers.Contents.Get)
		api.GET("/binary-contents/:id/download", handlers.Contents.Download)

		api.GET("/task-failures", handlers.TaskFailures.List)
	}
}

// Start serves until SIGINT or SIGTERM, then drains with a five second
// shutdown window. onShutdown runs after the HTTP listener has stopped
// accepting work and before the process exits.
func (s *Server) Start(onShutdown func(ctx context.Context)) error {
	go func() {
		s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("Error in starting the server: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	s.logger.Infof("Quitting signal received.. shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	if onShutdown != nil {
		onShutdown(ctx)
	}
	return err
}
