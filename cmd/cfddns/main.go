package main

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/poyrazK/cfddns/internal/adapters/api"
	"github.com/poyrazK/cfddns/internal/adapters/repository"
	"github.com/poyrazK/cfddns/internal/adapters/snapshot"
	"github.com/poyrazK/cfddns/internal/config"
	"github.com/poyrazK/cfddns/internal/core/ports"
	"github.com/poyrazK/cfddns/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	repo, closeRepo, err := buildRepository(cfg)
	if err != nil {
		log.Fatalf("Unable to initialize store: %v", err)
	}
	defer closeRepo()

	var publisher ports.SnapshotPublisher
	if cfg.RedisAddr != "" {
		publisher = snapshot.NewRedisPublisher(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SnapshotKey, cfg.SnapshotChannel)
		logger.Info("snapshot publishing enabled", "addr", cfg.RedisAddr)
	}

	svc := services.NewConfigService(repo, publisher, logger)

	apiHandler := api.NewAPIHandler(svc)
	mux := http.NewServeMux()
	apiHandler.RegisterRoutes(mux)
	handler := api.LoggingMiddleware(logger)(mux)

	fmt.Printf("Configuration API listening on %s...\n", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, handler); err != nil {
		log.Fatalf("HTTP Server failed: %v", err)
	}
}

func buildRepository(cfg *config.Config) (ports.ConfigRepository, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(); err != nil {
			fmt.Printf("Warning: Could not ping database: %v\n", err)
		}
		return repository.NewPostgresRepository(db), func() { db.Close() }, nil
	default:
		return repository.NewMemoryRepository(), func() {}, nil
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
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
