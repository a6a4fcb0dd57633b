package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"filedrive.dev/api/internal"
	"filedrive.dev/api/internal/auth"
	"filedrive.dev/api/internal/cache"
	"filedrive.dev/api/internal/config"
	"filedrive.dev/api/internal/database"
	"filedrive.dev/api/internal/files"
	"filedrive.dev/api/internal/middleware"
	"filedrive.dev/api/internal/queue"
	"filedrive.dev/api/internal/users"
)

// Version tag is populated during build
var Version = "Development"
var logger = logrus.New()

func init() {
	// Enviroment variables
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded: %s", err)
	}

	enviroment := os.Getenv("ENVIROMENT")
	isProduction := strings.EqualFold(enviroment, "Production")

	logger = &logrus.Logger{
		Out: os.Stderr,
		Formatter: &logrus.TextFormatter{
			DisableTimestamp: isProduction,
			FullTimestamp:    true,
			TimestampFormat:  time.DateTime,
		},
		Hooks:        logger.Hooks,
		Level:        logrus.InfoLevel,
		ExitFunc:     os.Exit,
		ReportCaller: false,
	}
	if isProduction {
		logger.Info("Enviroment 'Production'")
	} else {
		logger.Info("Enviroment 'Development'")
	}
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Document store
	db, err := database.Connect(ctx, cfg.MongoURI(), cfg.DBDatabase)
	if err != nil {
		logger.Fatalf("Database connection error: %s", err)
	}
	defer db.Close(ctx)
	logger.Infof("Connected to %s database", cfg.DBDatabase)

	// Session store, shared with the job queue producer
	sessions := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	defer sessions.Close()
	if err := sessions.Ping(ctx); err != nil {
		logger.Warnf("Redis not reachable yet: %s", err)
	}
	producer := queue.NewRedis(sessions.Client())

	authService := auth.NewService(db.Users(), sessions, cfg.SessionTTL)
	userService := users.NewService(db.Users(), producer, logger)
	userService.MinPasswordScore = cfg.MinPasswordScore
	fileService := files.NewService(db.Files(), producer, cfg.FolderPath, logger)

	handler := &internal.Handler{
		Logger:   logger,
		Auth:     authService,
		Users:    userService,
		Files:    fileService,
		Sessions: sessions,
		Meta:     db,
	}

	// Initialize HTTP server and routes
	logger.Info("Registering middleware...")
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.SetTrustedProxies([]string{"127.0.0.1"})
	router.Use(gin.Recovery())
	router.Use(middleware.LogHandler(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.RateLimiter(cfg.RateLimit))
	router.Use(handler.InitCors())
	middleware.PrometheusInit()

	// Register routes
	logger.Info("Registering api routes...")
	router.GET("/status", handler.Status)
	router.GET("/stats", handler.Stats)
	// Auth
	router.GET("/connect", handler.Connect)
	router.GET("/disconnect", handler.Disconnect)
	// Users
	router.POST("/users", handler.CreateUser)
	router.GET("/users/me", handler.GetMe)
	// Files
	router.POST("/files", middleware.Protected(authService, handler.UploadFile))
	router.GET("/files", middleware.Protected(authService, handler.ListFiles))
	router.GET("/files/:id", middleware.Protected(authService, handler.GetFile))
	// Operations
	router.GET("/metrics", middleware.MetricsHandler())

	listenAddr := fmt.Sprintf("%s:%s", cfg.ListenAddr, cfg.Port)
	logger.Infof("Files API (%s) is online '%s'", Version, listenAddr)

	// Listen and serve
	err = router.Run(listenAddr)
	if err != nil {
		logger.Fatalf("Server fatal error: %s", err)
	}
	logger.Info("Server shutdown successfully")
}
