package main

import (
	"context"
	"log"
	"time"

	"chatwave/config"
	"chatwave/internal/async"
	"chatwave/internal/auth"
	"chatwave/internal/events"
	"chatwave/internal/handler"
	"chatwave/internal/listeners"
	"chatwave/internal/middleware"
	chatredis "chatwave/internal/redis"
	"chatwave/internal/relay"
	"chatwave/internal/repository"
	"chatwave/internal/server"
	"chatwave/internal/services"
	"chatwave/internal/sse"
	"chatwave/internal/storage"
	"chatwave/internal/websocket"
	"chatwave/pkg/database"
	"chatwave/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(l)
	defer l.Logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := repository.InitSchema(ctx, db); err != nil {
		log.Fatalf("schema migration failed: %v", err)
	}

	redisClient := chatredis.NewClient(chatredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	// Worker pools: uploads carry the blob work, events carry after-commit
	// handler dispatch.
	uploadPool := async.NewPool("uploads", cfg.UploadPoolWorkers, cfg.UploadPoolQueue, l)
	eventPool := async.NewPool("events", cfg.EventPoolWorkers, cfg.EventPoolQueue, l)

	bus := events.NewBus(eventPool, l)

	notificationRepo := repository.NewNotificationRepository(db)
	taskFailureRepo := repository.NewTaskFailureRepository(db)
	readStatusRepo := repository.NewReadStatusRepository(db)
	contentRepo := repository.NewBinaryContentRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	userRepo := repository.NewUserRepository(db)

	cache := chatredis.NewCache(redisClient)
	redisPublisher := chatredis.NewPublisher(redisClient)
	redisSubscriber := chatredis.NewSubscriber(redisClient)
	limiter := chatredis.NewRateLimiter(redisClient, chatredis.DefaultRateLimitConfig())

	notificationService := services.NewNotificationService(db, notificationRepo, bus, cache, l)
	taskFailureService := services.NewTaskFailureService(taskFailureRepo, bus, l)
	messageService := services.NewMessageService(db, messageRepo, channelRepo, userRepo, bus, l)
	userService := services.NewUserService(db, userRepo, bus, l)
	channelService := services.NewChannelService(db, channelRepo, bus, l)

	s3Client, err := storage.NewClient(ctx, storage.S3Config{
		Region:     cfg.S3Region,
		Bucket:     cfg.S3Bucket,
		AccessKey:  cfg.S3AccessKey,
		SecretKey:  cfg.S3SecretKey,
		Endpoint:   cfg.S3Endpoint,
		PresignTTL: 15 * time.Minute,
	})
	if err != nil {
		log.Fatalf("s3 client init failed: %v", err)
	}
	uploader := storage.NewUploader(s3Client, contentRepo, uploadPool, taskFailureService, bus, l)
	contentService := services.NewContentService(contentRepo, uploader, s3Client, l)

	pushService := sse.NewService(cfg.SSEQueueCapacity, time.Duration(cfg.SSETimeoutMs)*time.Millisecond, l)
	go pushService.RunKeepAlive(ctx, time.Duration(cfg.SSEKeepAliveMinutes)*time.Minute)

	relayPublisher := relay.NewPublisher(cfg.KafkaBrokers, l)
	defer relayPublisher.Close()

	listeners.RegisterRelay(bus, relayPublisher)
	listeners.RegisterPush(bus, pushService)
	listeners.RegisterCacheEvict(bus, cache, l)
	listeners.RegisterChannelStream(bus, redisPublisher, l)

	consumer := relay.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, taskFailureService, l)
	listeners.NewNotificationListener(notificationService, readStatusRepo, l).Register(consumer)
	consumer.Start(ctx)

	hub := websocket.NewHub()
	go hub.Run(ctx)
	bridge := websocket.NewRedisBridge(redisSubscriber, hub)
	go func() {
		if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
			l.Errorf("redis bridge stopped: %s", err)
		}
	}()

	tokens := auth.NewTokenParser(cfg.JWTSecret)
	authorizer := websocket.NewStreamAuthorizer(channelRepo, readStatusRepo)

	handlers := &server.Handlers{
		Notifications: handler.NewNotificationHandler(notificationService),
		Messages:      handler.NewMessageHandler(messageService),
		Users:         handler.NewUserHandler(userService),
		Channels:      handler.NewChannelHandler(channelService),
		Contents:      handler.NewContentHandler(contentService),
		TaskFailures:  handler.NewTaskFailureHandler(taskFailureService),
		Stream:        sse.NewHandler(pushService, l),
		Websocket:     websocket.NewHandler(tokens, hub, authorizer, l),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, middleware.AuthMiddleware(tokens), limiter, db)

	if err := srv.Start(func(shutdownCtx context.Context) {
		cancel()
		consumer.Stop()
		uploadPool.Close()
		eventPool.Close()
	}); err != nil {
		l.Errorf("server shutdown error: %s", err)
	}
}
