package main

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sdko-org/media-vault/internal/auth"
	"github.com/sdko-org/media-vault/internal/cache"
	"github.com/sdko-org/media-vault/internal/config"
	"github.com/sdko-org/media-vault/internal/database"
	"github.com/sdko-org/media-vault/internal/handlers"
	"github.com/sdko-org/media-vault/internal/httpserver"
	"github.com/sdko-org/media-vault/internal/ledger"
	"github.com/sdko-org/media-vault/internal/media"
	"github.com/sdko-org/media-vault/internal/storage"
	"github.com/sirupsen/logrus"
)

func main() {
	godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	db, err := database.NewPostgresDB(logger, database.PostgresConfig{
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		DBName:   cfg.PostgresDatabase,
		SSLMode:  cfg.PostgresSSLMode,
	})
	if err != nil {
		logger.WithError(err).Fatal("Database initialization failed")
	}

	s3Storage := storage.NewS3Storage(cfg)
	analyticsCache := cache.New(logger, cfg.RedisURL)
	defer analyticsCache.Close()

	assets := media.NewPostgresAssetStore(db)
	views := ledger.NewPostgresLedger(db)
	admins := auth.NewPostgresAdminStore(db)
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	svc := media.NewService(logger, []byte(cfg.StreamSecret), cfg.BaseURL, cfg.StreamTTL, assets, views)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	purger := ledger.NewRetentionPurger(logger, db, cfg.ViewLogRetention)
	go purger.Start(ctx)

	handler := handlers.NewHandler(logger, cfg, svc, tokens, admins, s3Storage, analyticsCache)

	r := mux.NewRouter()
	r.Use(handlers.LoggingMiddleware(logger))
	handlers.RegisterRoutes(r, handler,
		handlers.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow),
		handlers.NewRateLimiter(cfg.UploadRateLimit, cfg.UploadRateWindow),
		handlers.NewRateLimiter(cfg.ViewRateLimit, cfg.ViewRateWindow),
	)

	if err := httpserver.Run(logger, cfg.ListenAddr, r); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
}
