package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/Adnan2001Bin/task-management-application/internal/auth"
	"github.com/Adnan2001Bin/task-management-application/internal/config"
	"github.com/Adnan2001Bin/task-management-application/internal/database"
	"github.com/Adnan2001Bin/task-management-application/internal/email"
	httpServer "github.com/Adnan2001Bin/task-management-application/internal/http"
	"github.com/Adnan2001Bin/task-management-application/internal/logging"
	"github.com/Adnan2001Bin/task-management-application/internal/ratelimit"
	"github.com/Adnan2001Bin/task-management-application/internal/user"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()

	// Database connection is acquired here and closed on shutdown; it is
	// passed into repositories explicitly rather than held as a global.
	mongoDB, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := mongoDB.Close(context.Background()); err != nil {
			logger.Warn("failed to close database connection", "error", err.Error())
		}
	}()

	if err := mongoDB.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	userRepo := user.NewMongoRepository(mongoDB)
	rateLimiter := ratelimit.NewLimiter(redisClient)

	pasetoService, err := auth.NewPasetoService(cfg.Auth.PasetoKey)
	if err != nil {
		return fmt.Errorf("failed to initialize PASETO service: %w", err)
	}

	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.SenderEmail,
		cfg.Email.AppName,
		cfg.Auth.VerificationCodeTTL,
	)

	authService := auth.NewService(
		userRepo,
		pasetoService,
		emailService,
		logger,
		cfg.Auth.VerificationCodeTTL,
		cfg.Auth.SessionTokenDuration,
	)

	authHandler := auth.NewHandler(authService, rateLimiter, logger)
	authMiddleware := auth.NewMiddleware(pasetoService)

	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, logger)

	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
