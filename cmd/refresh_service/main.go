package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"refresh_service/internal/config"
	"refresh_service/internal/http-server/handlers/health"
	"refresh_service/internal/http-server/handlers/refresh"
	"refresh_service/internal/lib/jwt"
	sl "refresh_service/internal/lib/logger"
	"refresh_service/internal/lib/trigger"
	authMiddlware "refresh_service/internal/middleware/auth"
	"refresh_service/internal/rabbitmq"
	"refresh_service/internal/scraper"
	"refresh_service/internal/scraper/rendered"
	"refresh_service/internal/scraper/structured"
	"refresh_service/internal/storage"
	"refresh_service/internal/storage/firestore"
	"refresh_service/internal/storage/postgres"
	"refresh_service/internal/storage/redis"
	"refresh_service/internal/updater"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type productStore interface {
	updater.ProductStore
	Close()
}

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting refresh service",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage.Backend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// * Инициализация хранилища продуктов
	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		log.Error("failed to open product store", sl.Err(err))
		os.Exit(1)
	}
	defer store.Close()

	// * Инициализация RabbitMQ (опционально)
	var publisher updater.Publisher
	var rabbitMQClient *rabbitmq.Client
	if cfg.RabbitMQ.URL != "" {
		rabbitMQClient, err = rabbitmq.New(cfg.RabbitMQ.URL)
		if err != nil {
			log.Error("failed to connect rabbitMQ", sl.Err(err))
			os.Exit(1)
		}
		defer rabbitMQClient.Close()

		if err := rabbitMQClient.DeclareQueues(cfg.RabbitMQ.EventsQueue, cfg.RabbitMQ.TriggerQueue); err != nil {
			log.Error("failed to declare queues", sl.Err(err))
			os.Exit(1)
		}

		publisher = rabbitmq.NewProducer(rabbitMQClient.Channel, cfg.RabbitMQ.EventsQueue)
	}

	// * Инициализация скрейперов
	structuredFetcher := structured.New(log, structured.Options{
		UserAgent: cfg.Scraper.UserAgent,
		Timeout:   cfg.Scraper.Timeout,
	})
	renderedFetcher := rendered.New(log, rendered.Options{
		UserAgent:    cfg.Scraper.UserAgent,
		SettleDelay:  cfg.Scraper.SettleDelay,
		FieldTimeout: cfg.Scraper.FieldTimeout,
		ExecPath:     cfg.Scraper.ChromePath,
	})
	hybrid := scraper.New(log, structuredFetcher, renderedFetcher)

	upd := updater.New(log, store, hybrid, publisher)

	if rabbitMQClient != nil && cfg.RabbitMQ.TriggerQueue != "" {
		consumer := rabbitmq.NewConsumer(rabbitMQClient.Channel, log, cfg.RabbitMQ.TriggerQueue)
		if err := trigger.New(log, upd).Run(ctx, consumer); err != nil {
			log.Error("failed to consume trigger queue", sl.Err(err))
			os.Exit(1)
		}
	}

	var tokenParser authMiddlware.TokenParser
	if cfg.JWTSecret != "" {
		tokenParser = jwt.New(cfg.JWTSecret)
	}

	router := setupRouter(log, cfg.HTTPServer, upd, tokenParser)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("http server starting", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown", sl.Err(err))
	}
}

func openStore(ctx context.Context, cfg config.Storage) (productStore, error) {
	switch cfg.Backend {
	case storage.BackendFirestore:
		return firestore.New(ctx, cfg.Firestore.CredentialsFile, cfg.Firestore.ProjectID)
	case storage.BackendPostgres:
		return postgres.New(ctx, cfg.Postgres)
	case storage.BackendRedis:
		return redis.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.Db)
	}

	return nil, fmt.Errorf("%w: %q", storage.ErrUnknownBackend, cfg.Backend)
}

func setupRouter(
	log *slog.Logger,
	cfg config.HTTPServer,
	starter refresh.Starter,
	tokenParser authMiddlware.TokenParser,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/health", health.New())

	r.With(authMiddlware.New(tokenParser)).
		Post("/update-products", refresh.New(log, starter))

	return r
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
