package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/tareas-api/internal/auth"
	"github.com/BuzzLyutic/tareas-api/internal/config"
	"github.com/BuzzLyutic/tareas-api/internal/handler"
	"github.com/BuzzLyutic/tareas-api/internal/repo"
	"github.com/BuzzLyutic/tareas-api/internal/service"
	"github.com/BuzzLyutic/tareas-api/internal/store"
	"github.com/BuzzLyutic/tareas-api/internal/worker"
	"github.com/BuzzLyutic/tareas-api/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Подключаем логгер
	log, err := logger.New(logger.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding})
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.RunMigrations {
		if err := store.Migrate(cfg.Database.URL, log); err != nil {
			log.Error("Failed to migrate the Database", zap.Error(err))
			return err
		}
	}

	// Подключаем БД
	pool, err := store.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Error("Failed to connect to Database", zap.Error(err)) // дальнейшая работа теряет смысл
		return err
	}
	defer pool.Close() // Запланированное закрытие соединения

	taskRepo := repo.NewTaskRepo(pool)
	taskService := service.NewTaskService(taskRepo)
	taskHandler := handler.NewTaskHandler(taskService, log)
	resolver := auth.NewJWT(cfg.JWT.Secret, cfg.JWT.Issuer)

	if cfg.Idempotency.TTL > 0 && cfg.Idempotency.SweepInterval > 0 {
		janitor := worker.NewJanitor(taskRepo, log, cfg.Idempotency.TTL, cfg.Idempotency.SweepInterval)
		janitor.Start(ctx)
		defer janitor.Stop()
	}

	srv := http.Server{ // Создаем сервер
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(taskHandler, resolver, log, cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() { // Запуск сервера и обработка ошибок
		log.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server failed", zap.Error(err))
			return err
		}
		return nil
	case <-quit:
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
		return err
	}
	log.Info("Server stopped successfully!")
	return nil
}
