// cmd/activities-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mergington-activities/internal/api"
	"mergington-activities/internal/catalog"
	awsclient "mergington-activities/internal/common/aws"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/notify"
	"mergington-activities/internal/registry"
	"mergington-activities/web"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting activities server...", zap.String("config", cfg.String()))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel exporter unavailable, request metrics disabled", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init Redis with retry (only for the redis seed source) ---
	var rdb *database.RedisClient
	if cfg.Seed.Source == config.SeedSourceRedis {
		rdb, err = connectRedis(ctx, cfg.Database.Redis, 5, time.Second, zapLog)
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")
	}

	// --- Seed catalog ---
	source, err := catalog.NewSource(cfg.Seed, rdb)
	if err != nil {
		zapLog.Fatal("invalid seed source", zap.Error(err))
	}
	doc, err := source.Load(ctx)
	if err != nil {
		zapLog.Fatal("catalog load failed", zap.String("source", source.Name()), zap.Error(err))
	}

	reg, err := registry.New(doc.Entries(), registry.Options{EnforceCapacity: cfg.Registry.EnforceCapacity}, log)
	if err != nil {
		zapLog.Fatal("registry seed rejected", zap.String("source", source.Name()), zap.Error(err))
	}

	notifier := buildNotifier(ctx, cfg, log, zapLog)

	static, err := staticAssets(cfg.Server.StaticDir)
	if err != nil {
		zapLog.Fatal("static assets unavailable", zap.Error(err))
	}

	apiServer := api.NewServer(&api.Config{
		IndexPath:      cfg.Server.IndexPath,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		Version:        cfg.App.Version,
	}, api.Dependencies{
		Registry:      reg,
		Notifier:      notifier,
		Observability: obs,
		Static:        static,
		Logger:        log,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      apiServer,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
		ErrorLog:     logger.NewStdLog(zapLog),
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// --- Graceful Shutdown ---
	select {
	case <-ctx.Done():
		zapLog.Info("Shutdown signal received, draining requests...")
	case err := <-serverErr:
		if err != nil {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}

	apiServer.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Activities server stopped gracefully")
}

// connectRedis builds one client and retries only the Ping, closing the
// client when every attempt fails.
func connectRedis(ctx context.Context, cfg config.RedisConfig, attempts int, delay time.Duration, log *zap.Logger) (*database.RedisClient, error) {
	rdb, err := database.NewRedis(cfg)
	if err != nil {
		return nil, err
	}

	err = retryWithBackoff(func() error {
		return rdb.Ping(ctx)
	}, attempts, delay, log, "Redis connection")
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func buildNotifier(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) notify.Notifier {
	email := cfg.Notifications.Email
	if !email.Enabled {
		return notify.NopNotifier{}
	}

	client, err := awsclient.NewSESClient(ctx, email.AWSRegion)
	if err != nil {
		zapLog.Error("SES client unavailable, notifications disabled", zap.Error(err))
		return notify.NopNotifier{}
	}

	zapLog.Info("Email notifications enabled", zap.String("from", email.FromEmail), zap.String("region", email.AWSRegion))
	return notify.NewSESNotifier(&notify.Config{
		FromEmail: email.FromEmail,
		Timeout:   config.GetDuration(email.Timeout),
	}, client, log)
}

func staticAssets(dir string) (fs.FS, error) {
	if dir == "" {
		return web.StaticFS()
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("static dir: %w", err)
	}
	return os.DirFS(dir), nil
}
