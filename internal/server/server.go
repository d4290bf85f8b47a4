package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"circles/config"
	"circles/internal/handler"
	"circles/internal/middleware"
	"circles/internal/transport/httpdto"
	"circles/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
	health     HealthChecker
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Handlers struct {
	User         *handler.UserHandler
	Connection   *handler.ConnectionHandler
	Group        *handler.GroupHandler
	Prompt       *handler.PromptHandler
	Chat         *handler.ChatHandler
	Notification *handler.NotificationHandler
}

func New(cfg *config.Config, l *logger.Logger, health HealthChecker) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine: engine,
		config: cfg,
		logger: l,
		health: health,
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.AppPort),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler is the engine wrapped in the CORS policy.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   s.config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-Id", "X-Admin-Key"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
	}).Handler(s.engine)
}

func (s *Server) SetupRoutes(handlers *Handlers, resolver middleware.CallerResolver) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if s.health != nil {
			if err := s.health.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
				return
			}
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	admin := s.engine.Group("/v1", middleware.AdminKeyMiddleware(s.config.AdminAPIKey))
	{
		admin.POST("/prompts", handlers.Prompt.Create)
	}

	v1 := s.engine.Group("/v1", middleware.AuthMiddleware(resolver))

	me := v1.Group("/me")
	{
		me.GET("", handlers.User.Me)
		me.PATCH("", handlers.User.UpdateProfile)
		me.DELETE("", handlers.User.DeleteAccount)
		me.POST("/avatar-upload", handlers.User.AvatarUpload)
	}

	users := v1.Group("/users")
	{
		users.GET("/search", handlers.User.Search)
		users.GET("/:id", handlers.User.Get)
		users.GET("/:id/stats", handlers.User.Stats)
		users.GET("/:id/feed", handlers.User.Feed)
		users.GET("/:id/friends", handlers.Connection.Friends)
	}

	connections := v1.Group("/connections")
	{
		connections.POST("", handlers.Connection.SendRequest)
		connections.POST("/:id/respond", handlers.Connection.Respond)
		connections.GET("/status/:userId", handlers.Connection.Status)
		connections.GET("/requests", handlers.Connection.Requests)
	}
	v1.DELETE("/friends/:userId", handlers.Connection.RemoveFriend)

	groups := v1.Group("/groups")
	{
		groups.POST("", handlers.Group.Create)
		groups.GET("", handlers.Group.List)
		groups.GET("/explore", handlers.Group.Explore)
		groups.GET("/:id", handlers.Group.Get)
		groups.PATCH("/:id", handlers.Group.Update)
		groups.DELETE("/:id", handlers.Group.Delete)
		groups.POST("/:id/join", handlers.Group.Join)
		groups.POST("/:id/leave", handlers.Group.Leave)
		groups.GET("/:id/members", handlers.Group.Members)
		groups.POST("/:id/members/:userId/promote", handlers.Group.Promote)
		groups.POST("/:id/members/:userId/demote", handlers.Group.Demote)
		groups.DELETE("/:id/members/:userId", handlers.Group.RemoveMember)

		groups.POST("/:id/responses", handlers.Prompt.SubmitResponse)
		groups.GET("/:id/responses", handlers.Prompt.ListResponses)
		groups.GET("/:id/responses/count", handlers.Prompt.ResponseCount)
	}

	prompts := v1.Group("/prompts")
	{
		prompts.GET("/active", handlers.Prompt.Active)
		prompts.GET("/past", handlers.Prompt.Past)
		prompts.GET("/upcoming", handlers.Prompt.Upcoming)
	}
	v1.POST("/responses/:id/vote", handlers.Prompt.Vote)

	chats := v1.Group("/chats")
	{
		chats.POST("", handlers.Chat.Open)
		chats.GET("", handlers.Chat.List)
		chats.GET("/:id", handlers.Chat.Get)
		chats.GET("/:id/messages", handlers.Chat.Messages)
		chats.POST("/:id/messages", handlers.Chat.Send)
		chats.POST("/:id/read", handlers.Chat.MarkRead)
	}

	notifications := v1.Group("/notifications")
	{
		notifications.GET("", handlers.Notification.List)
		notifications.GET("/unread-count", handlers.Notification.UnreadCount)
		notifications.POST("/read-all", handlers.Notification.MarkAllRead)
		notifications.DELETE("/read", handlers.Notification.ClearRead)
		notifications.DELETE("/:id", handlers.Notification.Delete)
	}
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down within %s", timeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
