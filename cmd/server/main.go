package main

import (
	"log/slog"
	"os"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/coursehub/coursehub-backend/internal/api"
	"github.com/coursehub/coursehub-backend/internal/config"
	"github.com/coursehub/coursehub-backend/internal/mailbox"
	"github.com/coursehub/coursehub-backend/internal/relay"
	"github.com/coursehub/coursehub-backend/internal/repository"
	"github.com/coursehub/coursehub-backend/internal/server"
	"github.com/coursehub/coursehub-backend/internal/service"
	"github.com/coursehub/coursehub-backend/internal/storage"
	"github.com/coursehub/coursehub-backend/internal/transcoder"
	_ "github.com/coursehub/coursehub-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := repository.NewPostgresPool(cfg.PostgresDSN)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	rmq, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		slog.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rmq.Close()

	store, err := storage.New(
		cfg.MinIOEndpoint,
		cfg.MinIOAccessKey,
		cfg.MinIOSecretKey,
		cfg.UploadBucket,
		cfg.FinalBucket,
		cfg.MinIOUseSSL,
	)
	if err != nil {
		slog.Error("failed to connect to minio", "error", err)
		os.Exit(1)
	}

	trigger, err := transcoder.NewQueueTrigger(
		rmq,
		cfg.TranscodeQueue,
		cfg.UploadBucket,
		cfg.FinalBucket,
		cfg.TranscodeWebhook,
	)
	if err != nil {
		slog.Error("failed to set up transcode queue", "error", err)
		os.Exit(1)
	}
	defer trigger.Close()

	videoRepo := repository.NewVideoRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	coachRepo := repository.NewCoachRepository(pool)

	registry := relay.NewRegistry()
	mbox := mailbox.NewStore(rdb)
	dispatcher := relay.NewDispatcher(registry, mbox)
	relayHandler := relay.NewHandler(registry, mbox)

	jobCounter := transcoder.NewRedisJobCounter(rdb)

	a := &api.API{
		Users:  service.NewUserService(userRepo),
		Videos: service.NewVideoService(videoRepo, courseRepo, store),
		Transcoder: service.NewTranscoderService(
			videoRepo,
			trigger,
			jobCounter,
			dispatcher,
			store,
			cfg.NotifyOnProcessing,
		),
		Courses:    courseRepo,
		Categories: categoryRepo,
		Coaches:    coachRepo,
		Relay:      relayHandler,
		JWTSecret:  []byte(cfg.JWTSecret),
	}

	s := server.NewServer(cfg, a, rdb)
	if err := s.Start(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
