// cmd/assistant/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	awsclients "migration-assistant/internal/common/aws"
	"migration-assistant/internal/common/config"
	"migration-assistant/internal/common/database"
	"migration-assistant/internal/common/logger"
	"migration-assistant/internal/common/observability"

	"migration-assistant/internal/api"
	"migration-assistant/internal/assistant"
	"migration-assistant/internal/backend"
	"migration-assistant/internal/classifier"
	"migration-assistant/internal/dispatcher"
	"migration-assistant/internal/session"
	"migration-assistant/internal/synthesizer"
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
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting migration assistant...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Session.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init AWS backend clients ---
	qbClient, err := awsclients.NewQBusinessClient(ctx, cfg.Backends.AWSRegion)
	if err != nil {
		zapLog.Fatal("q business client failed", zap.Error(err))
	}

	kbClient, err := awsclients.NewBedrockAgentRuntimeClient(ctx, cfg.Backends.AWSRegion)
	if err != nil {
		zapLog.Fatal("bedrock agent runtime client failed", zap.Error(err))
	}
	zapLog.Info("AWS backend clients initialized")

	// --- Assemble the pipeline ---
	structured := backend.NewStructuredAdapter(qbClient, cfg.Backends.Structured, log)
	semantic := backend.NewSemanticAdapter(kbClient, cfg.Backends.Semantic, log)

	disp := dispatcher.New([]backend.Adapter{structured, semantic}, cfg.Backends, log)
	cls := classifier.New(cfg.Routing)
	syn := synthesizer.New(log)
	store := session.NewStore(redis.Client, cfg.Session, log)

	pipeline := assistant.New(cls, disp, syn, store, obs, cfg.Server, log)

	server, err := api.NewServer(pipeline, log, redis.Ping)
	if err != nil {
		zapLog.Fatal("http server setup failed", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: server.Routes(),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Migration assistant stopped gracefully")
}
