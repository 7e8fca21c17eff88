package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/angelmondragon/placeshare-backend/api/routes"
	"github.com/angelmondragon/placeshare-backend/internal/approval"
	"github.com/angelmondragon/placeshare-backend/internal/auth"
	"github.com/angelmondragon/placeshare-backend/internal/notifications"
	"github.com/angelmondragon/placeshare-backend/internal/places"
	"github.com/angelmondragon/placeshare-backend/internal/users"
	"github.com/angelmondragon/placeshare-backend/pkg/config"
	"github.com/angelmondragon/placeshare-backend/pkg/db"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
	"github.com/angelmondragon/placeshare-backend/pkg/metrics"
	"github.com/angelmondragon/placeshare-backend/pkg/migrate"
	"github.com/angelmondragon/placeshare-backend/pkg/redis"
	"github.com/angelmondragon/placeshare-backend/pkg/storage"
	"github.com/angelmondragon/placeshare-backend/pkg/storage/cloudinary"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	infra := routes.Infra{DB: dbClient}
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		infra.Redis = redisClient
		infra.RateLimiter = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured, auth rate limiting disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	infra.HTTPMetrics = metrics.NewHTTPMetrics(registry)
	infra.Gatherer = registry
	domainMetrics := metrics.NewDomainMetrics(registry)

	var media storage.MediaStore = storage.Disabled{}
	if cfg.Cloudinary.URL != "" {
		cld, err := cloudinary.New(cfg.Cloudinary, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap cloudinary", err)
			os.Exit(1)
		}
		media = cld
	} else {
		logg.Warn(context.Background(), "cloudinary not configured, photo uploads disabled")
	}

	notifier, err := notifications.NewNotifier(cfg.Mail, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		Logger:         logg,
		UserRepo:       userRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Notifier:       notifier,
		Metrics:        domainMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	placesService, err := places.NewService(places.ServiceParams{
		Logger: logg,
		DB:     dbClient,
		Repo:   places.NewRepository(dbClient.DB()),
		AuthorCounter: func(tx *gorm.DB) places.AuthorCounter {
			return users.NewRepository(tx)
		},
		Media:       media,
		Metrics:     domainMetrics,
		PhotoFolder: cfg.Cloudinary.PlacesFolder,
		MaxPhotos:   cfg.Cloudinary.MaxPhotos,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create places service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.ServiceParams{
		Logger:       logg,
		Repo:         userRepo,
		Media:        media,
		AvatarFolder: cfg.Cloudinary.AvatarFolder,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	approvalService, err := approval.NewService(approval.ServiceParams{
		Logger: logg,
		DB:     dbClient,
		Users:  userRepo,
		PlacesFactory: func(tx *gorm.DB) approval.PlaceCleaner {
			return places.NewRepository(tx)
		},
		Media:   media,
		Metrics: domainMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create approval service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, infra, routes.Services{
			Auth:     authService,
			Places:   placesService,
			Users:    usersService,
			Approval: approvalService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
