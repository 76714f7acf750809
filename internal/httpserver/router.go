package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"contactrelay/internal/api"
	"contactrelay/internal/config"
	redisclient "contactrelay/pkg/redis"
)

type Router struct {
	Engine *gin.Engine
}

// NewRouter builds the relay engine. rdb may be nil when Redis is not
// configured.
func NewRouter(cfg *config.Config, mailHandler *api.MailHandler, rdb *redis.Client, logger *zap.Logger) (*Router, error) {
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	origin, trimmed, err := config.NormalizeOrigin(cfg.CORS.AllowedOrigin)
	if err != nil {
		return nil, err
	}
	if trimmed {
		logger.Warn("CORS origin contained more than scheme and host, path dropped",
			zap.String("configured", cfg.CORS.AllowedOrigin),
			zap.String("effective", origin),
		)
	}

	r := gin.New()
	r.Use(
		ginzap.Ginzap(logger, time.RFC3339, true),
		ginzap.RecoveryWithZap(logger, true),
		TraceMiddleware(),
		MetricsMiddleware(),
		cors.New(cors.Config{
			AllowOrigins: []string{origin},
			AllowMethods: []string{http.MethodPost},
			AllowHeaders: []string{"Content-Type"},
		}),
	)

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		if rdb != nil {
			if err := redisclient.Ping(c.Request.Context(), rdb); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis_not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Both spellings are registered so clients posting without the trailing
	// slash are not redirected.
	r.POST("/send-email/", mailHandler.SendEmail)
	r.POST("/send-email", mailHandler.SendEmail)

	return &Router{Engine: r}, nil
}

// Serve runs the HTTP server until ctx is done, then shuts down gracefully.
func (r *Router) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}
