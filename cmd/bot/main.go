package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/Freeeeeet/autoschool_bot/internal/app"
	"github.com/Freeeeeet/autoschool_bot/internal/config"
	"github.com/Freeeeeet/autoschool_bot/internal/controller"
	"github.com/Freeeeeet/autoschool_bot/internal/controller/state"
	"github.com/Freeeeeet/autoschool_bot/internal/httpapi"
	"github.com/Freeeeeet/autoschool_bot/internal/repository"
	"github.com/Freeeeeet/autoschool_bot/internal/repository/sqlite"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Autoschool bot stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("👋 Autoschool bot stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting autoschool bot",
		zap.String("environment", cfg.Environment),
		zap.String("store", cfg.StoreDriver),
		zap.String("timezone", cfg.Schedule.Timezone),
	)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := service.Options{
		Location:         cfg.Location(),
		Grid:             cfg.Schedule.Grid,
		AllowedDurations: cfg.Schedule.AllowedDurations,
	}

	// Фоновое автозавершение прошедших занятий
	background := app.NewScheduler(store, cfg.Schedule.AutoCompleteInterval, logger)
	background.Start(ctx)
	defer background.Stop()

	registry := state.NewRegistry()
	defer func() {
		logger.Info("Closing schedule views", zap.Int("count", registry.Len()))
		registry.CloseAll()
	}()

	g, gctx := errgroup.WithContext(ctx)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewServer(store, opts, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		logger.Info("HTTP API listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.TelegramToken == "" {
		logger.Warn("⚠️  TELEGRAM_TOKEN is empty, bot is disabled")
	} else {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}
		botController := controller.NewBotController(b, store, registry, opts, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			// Меню команд не критично
			logger.Warn("Failed to register bot commands menu", zap.Error(err))
		}
		g.Go(func() error {
			return botController.Start(gctx)
		})
	}

	return g.Wait()
}

// openStore открывает хранилище и применяет миграции
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		migrator, err := app.NewSQLiteMigrator(store.DB(), logger)
		if err == nil {
			err = migrator.Run(ctx)
		}
		if err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		logger.Info("✅ SQLite store ready", zap.String("path", cfg.SQLitePath))
		return store, func() { _ = store.Close() }, nil

	default:
		pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		migrator, err := app.NewPostgresMigrator(pool, logger)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		closePool := func() {
			_ = migrator.Close()
			pool.Close()
		}
		if err := migrator.Run(ctx); err != nil {
			closePool()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		logger.Info("✅ PostgreSQL store ready")
		return repository.NewStore(pool), closePool, nil
	}
}
