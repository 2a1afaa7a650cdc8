package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vibelink/vibelink/internal/config"
	"github.com/vibelink/vibelink/internal/handlers"
	"github.com/vibelink/vibelink/internal/middleware"
	"github.com/vibelink/vibelink/internal/repository"
	"github.com/vibelink/vibelink/internal/services"
	"github.com/vibelink/vibelink/internal/stores"
	"github.com/vibelink/vibelink/internal/workers"
	"github.com/vibelink/vibelink/pkg/cache"
	"github.com/vibelink/vibelink/pkg/logger"
	"github.com/vibelink/vibelink/pkg/queue"
	"github.com/vibelink/vibelink/pkg/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger()
	logger.Info("Starting vibelink API server...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	messageProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.MessageEvents)
	defer messageProducer.Close()

	activityProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.ActivityEvents)
	defer activityProducer.Close()

	events := queue.NewEventRouter(messageProducer, activityProducer)

	messageConsumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.MessageEvents, "notify-worker-group")
	defer messageConsumer.Close()

	bucket, err := storage.NewBucketStore(cfg.Storage.RootDir, cfg.Storage.PublicBaseURL, cfg.Storage.MaxUploadBytes)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize bucket storage")
	}

	profileRepo := repository.NewProfileRepository(db.DB, redisClient, cfg.Redis.ProfileTTL)
	postRepo := repository.NewPostRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)
	messageRepo := repository.NewMessageRepository(db.DB)

	backends := stores.Backends{
		Profiles:        profileRepo,
		ProfileCounters: profileRepo,
		Posts:           postRepo,
		PostCounters:    postRepo,
		Likes:           likeRepo,
		Follows:         followRepo,
		Comments:        commentRepo,
		Messages:        messageRepo,
		Bucket:          bucket,
		Events:          events,
	}
	sessions := stores.NewSessionManager(backends, logger)
	defer sessions.Close()

	authService := services.NewAuthService(db.DB, profileRepo, logger)

	notifyWorker := workers.NewNotifyWorker(messageConsumer, sessions, logger)
	go func() {
		if err := notifyWorker.Start(ctx); err != nil {
			logger.WithError(err).Error("Notify worker stopped with error")
		}
	}()

	authHandler := handlers.NewAuthHandler(authService, &cfg.JWT)
	profileHandler := handlers.NewProfileHandler(sessions, bucket)
	feedHandler := handlers.NewFeedHandler(sessions, &cfg.Feed)
	socialHandler := handlers.NewSocialHandler(sessions)
	chatHandler := handlers.NewChatHandler(sessions)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	// Public URLs for uploaded objects.
	router.Static("/storage", bucket.RootDir())

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		protected := api.Group("")
		protected.Use(middleware.NewJWTAuth(&middleware.JWTConfig{Secret: cfg.JWT.Secret}))
		{
			protected.GET("/users/:id", profileHandler.GetProfile)
			protected.GET("/users/search", socialHandler.SearchUsers)
			protected.PUT("/users/profile", profileHandler.UpdateProfile)
			protected.POST("/users/profile/avatar", profileHandler.UploadAvatar)
			protected.POST("/uploads", profileHandler.UploadMedia)

			protected.GET("/explore", socialHandler.Explore)
			protected.GET("/feed", feedHandler.GetFeed)
			protected.POST("/posts", feedHandler.CreatePost)
			protected.GET("/posts/:id", feedHandler.GetPost)
			protected.POST("/posts/:id/like", feedHandler.ToggleLike)
			protected.GET("/posts/:id/likes", feedHandler.GetLikeStatus)
			protected.GET("/posts/:id/comments", feedHandler.GetComments)
			protected.POST("/posts/:id/comments", feedHandler.AddComment)

			protected.GET("/follows", socialHandler.GetFollows)
			protected.POST("/users/:id/follow", socialHandler.Follow)
			protected.DELETE("/users/:id/follow", socialHandler.Unfollow)

			protected.GET("/messages/:peer", chatHandler.GetThread)
			protected.POST("/messages/:peer", chatHandler.SendMessage)
			protected.GET("/inbox", chatHandler.GetInbox)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	if err := notifyWorker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop notify worker")
	}

	logger.Info("Server exited")
}

func init() {
	dirs := []string{"configs", "storage"}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Failed to create directory %s: %v", dir, err)
		}
	}

	configPath := "configs/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			log.Printf("Failed to create default config: %v", err)
		}
	}
}

func createDefaultConfig(path string) error {
	defaultConfig := `server:
  port: ":8080"
  mode: "debug"
  read_timeout: 30s
  write_timeout: 30s

database:
  host: "localhost"
  port: 5432
  user: "vibelink"
  password: "vibelink"
  dbname: "vibelink"
  sslmode: "disable"
  max_open_conns: 100
  max_idle_conns: 10

redis:
  host: "localhost"
  port: 6379
  password: ""
  db: 0
  pool_size: 100
  min_idle_conns: 10
  profile_ttl: 5m

kafka:
  brokers:
    - "localhost:9092"
  topics:
    message_events: "message-events"
    activity_events: "activity-events"

jwt:
  secret: "your-secret-key-change-in-production"
  expire_time: 24h

storage:
  root_dir: "storage"
  public_base_url: "http://localhost:8080/storage"
  max_upload_bytes: 52428800  # 50MB

feed:
  interest_ranking: false`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
