package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keralahub/culturalhub/internal/api"
	"github.com/keralahub/culturalhub/internal/core/service"
	"github.com/keralahub/culturalhub/internal/infrastructure/db/postgres"
	redisdb "github.com/keralahub/culturalhub/internal/infrastructure/db/redis"
	"github.com/keralahub/culturalhub/internal/infrastructure/payments"
	"github.com/keralahub/culturalhub/internal/infrastructure/queue"
	"github.com/keralahub/culturalhub/internal/infrastructure/storage"
	"github.com/keralahub/culturalhub/internal/pkg/config"
	"github.com/keralahub/culturalhub/internal/session"
	"github.com/keralahub/culturalhub/pkg/logger"
)

// @title        Kerala Cultural Hub API
// @version      1.0
// @description  Cultural events, artists, content and ticketing for Kerala.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "culturalhub-api",
		Pretty:  cfg.Env == "development",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Infrastructure ---
	db, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer rdb.Close()

	objects, err := storage.New(ctx, storage.Config{
		Endpoint:      cfg.S3.Endpoint,
		Region:        cfg.S3.Region,
		Bucket:        cfg.S3.Bucket,
		AccessKey:     cfg.S3.AccessKey,
		SecretKey:     cfg.S3.SecretKey,
		PublicBaseURL: cfg.S3.PublicBaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("object storage init failed")
	}

	provider := payments.NewProvider(payments.Config{
		BaseURL:       cfg.Payments.BaseURL,
		SecretKey:     cfg.Payments.SecretKey,
		WebhookSecret: cfg.Payments.WebhookSecret,
	})

	// --- Repositories ---
	users := postgres.NewUserRepository(db)
	profiles := postgres.NewProfileRepository(db)
	events := postgres.NewEventRepository(db)
	orders := postgres.NewOrderRepository(db)
	artists := postgres.NewArtistRepository(db)
	content := postgres.NewContentRepository(db)

	sessions := redisdb.NewSessionStore(rdb)
	demos := redisdb.NewDemoStore(rdb)
	dedup := redisdb.NewDedupChecker(rdb)

	// --- Services ---
	broadcaster := session.NewBroadcaster()
	authService := service.NewAuthService(users, profiles, sessions, broadcaster,
		cfg.JWTSecret, cfg.SessionTTL, cfg.OAuthBaseURL, log)
	profileService := service.NewProfileService(profiles, objects, log)
	eventService := service.NewEventService(events, artists, log)
	artistService := service.NewArtistService(artists)
	contentService := service.NewContentService(content)
	paymentService := service.NewPaymentService(events, orders, provider, dedup, log)

	registry := session.NewRegistry(authService, authService, profileService, log)
	registry.Listen(broadcaster)

	dispatcher := queue.NewDispatcher(cfg.PaymentWorkers, paymentService, log)
	dispatcher.Start(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		DB:              db,
		Redis:           rdb,
		JWTSecret:       cfg.JWTSecret,
		Log:             log,
		Registry:        registry,
		Auth:            authService,
		Demos:           demos,
		Profiles:        profileService,
		Events:          eventService,
		Artists:         artistService,
		Content:         contentService,
		Payments:        paymentService,
		WebhookVerifier: provider,
		PaymentQueue:    dispatcher,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("starting culturalhub-api")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	cancel() // stops the payment workers
	log.Info().Msg("stopped")
}
