package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"contactrelay/internal/api"
	"contactrelay/internal/config"
	"contactrelay/internal/httpserver"
	"contactrelay/internal/mailer"
	"contactrelay/internal/service/relay"
	"contactrelay/pkg/logger"
	redisclient "contactrelay/pkg/redis"
	"contactrelay/pkg/util"

	"go.uber.org/zap"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	log, err := logger.NewLoggerWithLevel(cfg.Log.Level)
	if err != nil {
		log = logger.NewLogger()
		log.Warn("Invalid log level, falling back to info", zap.String("level", cfg.Log.Level), zap.Error(err))
	}
	defer log.Sync()

	log.Info("Starting contact relay...",
		zap.String("port", cfg.Server.Port),
		zap.String("mail_host", cfg.Mail.Host),
		zap.String("cors_origin", cfg.CORS.AllowedOrigin),
		zap.Bool("strict_validation", cfg.Relay.StrictValidation),
	)

	// 2. Optional Redis; duplicate suppression only when relay.deduplicate is set
	var deduper relay.Deduper
	rdb := redisclient.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}
	if cfg.Relay.Deduplicate && rdb != nil {
		deduper = util.NewDeduperWithLogger(rdb, cfg.Relay.DedupTTL, log)
		log.Info("Duplicate suppression enabled", zap.String("redis_addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Relay.DedupTTL))
	}

	// 3. Transport, service, handler
	transport := mailer.NewSMTPTransport(cfg.Mail, log)
	relayService := relay.NewService(transport, cfg.Mail, deduper, log)
	mailHandler := api.NewMailHandler(relayService, cfg.Relay.StrictValidation, log)

	// 4. Router
	router, err := httpserver.NewRouter(cfg, mailHandler, rdb, log)
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	// 5. Serve until SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := router.Serve(ctx, cfg.Server.Port, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("contact relay shutdown complete")
}
