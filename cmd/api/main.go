package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/orbicityhub/cityhub-api/internal/config"
	"github.com/orbicityhub/cityhub-api/internal/database"
	"github.com/orbicityhub/cityhub-api/internal/events"
	"github.com/orbicityhub/cityhub-api/internal/handler"
	"github.com/orbicityhub/cityhub-api/internal/middleware"
	"github.com/orbicityhub/cityhub-api/internal/models"
	"github.com/orbicityhub/cityhub-api/internal/repository"
	"github.com/orbicityhub/cityhub-api/internal/router"
	"github.com/orbicityhub/cityhub-api/internal/service"
	"github.com/orbicityhub/cityhub-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.ActivityLog{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}
	publisher := events.NewPublisher(natsConn, cfg.EventNamespace, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	activityRepo := repository.NewActivityLogRepository(db)
	activityService := service.NewActivityLogService(activityRepo, redisClient, cfg.FilterCacheTTL, publisher, validate, logger)

	activityHandler := handler.NewActivityLogHandler(activityService, logger)
	accessHandler := handler.NewAccessHandler(logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ActivityLogHandler: activityHandler,
		AccessHandler:      accessHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	})

	sweeper := worker.NewRetentionSweeper(cfg.SweepInterval, activityService, logger)
	sweeper.Start()
	defer sweeper.Stop()

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
