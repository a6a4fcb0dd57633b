package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"filedrive.dev/api/internal"
	"filedrive.dev/api/internal/cache"
	"filedrive.dev/api/internal/config"
	"filedrive.dev/api/internal/database"
	"filedrive.dev/api/internal/queue"
	"filedrive.dev/api/internal/worker"
)

var logger = logrus.New()

func init() {
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded: %s", err)
	}

	isProduction := strings.EqualFold(os.Getenv("ENVIROMENT"), "Production")
	logger = &logrus.Logger{
		Out: os.Stderr,
		Formatter: &logrus.TextFormatter{
			DisableTimestamp: isProduction,
			FullTimestamp:    true,
			TimestampFormat:  time.DateTime,
		},
		Hooks:    logger.Hooks,
		Level:    logrus.InfoLevel,
		ExitFunc: os.Exit,
	}
}

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Info("Shutting down worker...")
		cancel()
	}()

	db, err := database.Connect(ctx, cfg.MongoURI(), cfg.DBDatabase)
	if err != nil {
		logger.Fatalf("Database connection error: %s", err)
	}
	defer db.Close(context.Background())

	redisStore := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	defer redisStore.Close()
	consumer := queue.NewRedis(redisStore.Client())

	w := worker.New(db.Files(), db.Users(), logger)
	if cfg.EmailAddress != "" {
		w.Mailer = internal.SendWelcomeEmail
	}

	runner := worker.NewRunner(consumer, w, logger, cfg.WorkerConcurrency)
	logger.Infof("Worker online, draining '%s' and '%s'", queue.FileQueue, queue.UserQueue)
	runner.Run(ctx)
	logger.Info("Worker shutdown successfully")
}
