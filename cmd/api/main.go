package main

import (
	"context"
	"log"

	"circles/config"
	"circles/internal/handler"
	"circles/internal/redis"
	"circles/internal/repository"
	"circles/internal/scheduler"
	"circles/internal/server"
	"circles/internal/services"
	"circles/internal/storage"
	"circles/pkg/database"
	"circles/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	ctx := context.Background()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	conn := repository.NewConn(db.Conn, db.Dialect)
	if err := repository.InitSchema(ctx, conn); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	userRepo := repository.NewUserRepository(conn)
	connectionRepo := repository.NewConnectionRepository(conn)
	groupRepo := repository.NewGroupRepository(conn)
	promptRepo := repository.NewPromptRepository(conn)
	chatRepo := repository.NewChatRepository(conn)
	notificationRepo := repository.NewNotificationRepository(conn)

	notificationOpts := services.NotificationOptions{Logger: l, EmitTimeout: cfg.EmitTimeout}
	if cfg.RedisEnabled {
		client := redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		if err := redis.Ping(ctx, client); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		notificationOpts.Cache = redis.NewCacheStore(client, redis.CacheConfig{BadgeTTL: cfg.BadgeCacheTTL})
		notificationOpts.Publisher = redis.NewPublisher(client)
		notificationOpts.Subscriber = redis.NewSubscriber(client)
		l.Infof("Redis badge cache enabled at %s:%s", cfg.RedisHost, cfg.RedisPort)
	}

	var avatars services.AvatarPresigner
	if cfg.S3Bucket != "" {
		s3Client, err := storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKeyID,
			SecretKey:  cfg.S3SecretAccessKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBaseURL,
			PresignTTL: cfg.AvatarURLExpiry,
		})
		if err != nil {
			log.Fatalf("Failed to configure S3: %v", err)
		}
		avatars = s3Client
	} else {
		l.Warnf("S3_BUCKET is not set, avatar uploads are disabled")
	}

	notifications := services.NewNotificationService(notificationRepo, notificationOpts)
	connections := services.NewConnectionService(connectionRepo, userRepo, notifications)
	groups := services.NewGroupService(groupRepo, userRepo, notifications)
	prompts := services.NewPromptService(promptRepo, groupRepo, connectionRepo, notifications)
	chats := services.NewChatService(chatRepo, userRepo)
	users := services.NewUserService(userRepo, connections, groups, avatars)
	identity := services.NewIdentityService(users, cfg.IdentitySecret, cfg.IdentityIssuer)

	dispatcher := scheduler.NewPromptDispatcher(promptRepo, groupRepo, notifications, cfg.SchedulerInterval, l)
	dispatcher.Start()
	defer dispatcher.Stop()

	srv := server.New(cfg, l, db)
	srv.SetupRoutes(&server.Handlers{
		User:         handler.NewUserHandler(users, prompts),
		Connection:   handler.NewConnectionHandler(connections),
		Group:        handler.NewGroupHandler(groups),
		Prompt:       handler.NewPromptHandler(prompts),
		Chat:         handler.NewChatHandler(chats),
		Notification: handler.NewNotificationHandler(notifications),
	}, identity)

	if err := srv.Start(); err != nil {
		l.Errorf("Server exited with error: %v", err)
	}
}
