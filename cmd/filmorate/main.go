package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"filmorate-service/internal/api"
	"filmorate-service/internal/service"
	"filmorate-service/internal/store"
)

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envFlag(key string, def bool) bool {
	v := strings.ToLower(os.Getenv(key))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("FILMORATE_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// connectToDB инициализирует соединение с базой данных.
func connectToDB(dbURL string, logger *slog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.Info("Successfully connected to PostgreSQL database")
	return db, nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel()}))

	validate, err := service.NewValidator()
	if err != nil {
		logger.Error("Failed to initialize validator", slog.String("error", err.Error()))
		os.Exit(1)
	}

	httpPort := envOrDefault("FILMORATE_HTTP_PORT", "8080")
	userCfg := service.UserServiceConfig{
		SymmetricFriendship: envFlag("FILMORATE_SYMMETRIC_FRIENDSHIP", false),
		UniqueEmail:         envFlag("FILMORATE_UNIQUE_EMAIL", true),
	}

	var (
		filmStore store.FilmStore
		userStore store.UserStore
		refStore  store.ReferenceStore
	)

	// Без FILMORATE_DATABASE_URL сервис поднимается на хранилищах в памяти.
	if dbURL := os.Getenv("FILMORATE_DATABASE_URL"); dbURL != "" {
		db, err := connectToDB(dbURL, logger)
		if err != nil {
			logger.Error("Failed to initialize database connection", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			logger.Info("Closing PostgreSQL database connection...")
			if err := db.Close(); err != nil {
				logger.Error("Failed to close PostgreSQL connection", slog.String("error", err.Error()))
			}
		}()

		if filmStore, err = store.NewPostgresFilmStore(db, logger); err != nil {
			logger.Error("Failed to initialize film store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if userStore, err = store.NewPostgresUserStore(db, logger); err != nil {
			logger.Error("Failed to initialize user store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if refStore, err = store.NewPostgresReferenceStore(db, logger); err != nil {
			logger.Error("Failed to initialize reference store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("PostgreSQL stores initialized")
	} else {
		logger.Warn("FILMORATE_DATABASE_URL not set, using in-memory stores")
		filmStore = store.NewInMemoryFilmStore()
		userStore = store.NewInMemoryUserStore()
		refStore = store.NewInMemoryReferenceStore()
	}

	refService := service.NewReferenceService(refStore, logger)
	filmService := service.NewFilmService(filmStore, userStore, refService, validate, logger)
	userService := service.NewUserService(userStore, validate, logger, userCfg)

	router := api.NewRouter(
		api.NewFilmHandler(filmService, logger),
		api.NewUserHandler(userService, logger),
		api.NewReferenceHandler(refService, logger),
		logger,
	)

	httpSrv := &http.Server{
		Addr:         ":" + httpPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Filmorate HTTP server starting", slog.String("port", httpPort))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server ListenAndServe() failed", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Filmorate service shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}
}
