package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tournament-bracket/brackets"
	"github.com/Dosada05/tournament-bracket/config"
	"github.com/Dosada05/tournament-bracket/handlers"
	"github.com/Dosada05/tournament-bracket/middleware"
	"github.com/Dosada05/tournament-bracket/repositories"
	api "github.com/Dosada05/tournament-bracket/routes"
	"github.com/Dosada05/tournament-bracket/services"
	"github.com/Dosada05/tournament-bracket/storage"
)

const shutdownTimeout = 15 * time.Second

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("upstream", cfg.UpstreamURL))

	if err := run(cfg, logger); err != nil {
		logger.Error("application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Внешний API сетки
	repo, err := repositories.NewHTTPBracketRepository(cfg.UpstreamURL, nil, cfg.UpstreamTimeout)
	if err != nil {
		return fmt.Errorf("failed to create upstream client: %w", err)
	}

	tickets, err := services.NewTicketIssuer(cfg.ConfirmSecret, cfg.ConfirmTTL)
	if err != nil {
		return err
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)

	celebrators := services.MultiCelebrator{services.NewHubCelebrator(wsHub)}

	// Архив финальной сетки в Cloudflare R2 (опционально)
	uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}, logger)
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		logger.Info("Cloudflare R2 archive disabled")
	case err != nil:
		return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
	default:
		celebrators = append(celebrators, services.NewArchiveCelebrator(uploader, logger))
		logger.Info("Cloudflare R2 archive enabled")
	}

	builder := brackets.NewBuilder(cfg.Spacing, cfg.RenderContext(), logger)
	loader := services.NewSnapshotLoader(repo, builder, logger)
	views := services.NewViewRegistry(loader, repo, tickets, celebrators, wsHub, logger)

	limiter := middleware.NewRateLimiter(cfg.RateLimitEvery, cfg.RateLimitBurst, 3*time.Minute)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		logger,
		cfg.AllowedOrigins,
		limiter,
		handlers.NewBracketHandler(views, logger),
		handlers.NewWebSocketHandler(wsHub, cfg.AllowedOrigins, logger),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 40 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("WebSocket Hub started")
		return wsHub.Run(gCtx)
	})

	g.Go(func() error {
		return limiter.Cleanup(gCtx)
	})

	g.Go(func() error {
		return views.Cleanup(gCtx)
	})

	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Ожидание сигнала завершения
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
		return nil
	})

	return g.Wait()
}
