package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"artifact-hub-service/internal/adapters/primary/http/handlers"
	"artifact-hub-service/internal/adapters/primary/http/middleware"
	"artifact-hub-service/internal/adapters/secondary/platforms"
	"artifact-hub-service/internal/adapters/secondary/rabbitmq"
	"artifact-hub-service/internal/bootstrap"
	"artifact-hub-service/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	bootstrap.InitLogger(cfg.Logger)

	pool, err := bootstrap.OpenDatabase(context.Background(), cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer pool.Close()

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// The publisher dials lazily, so the API starts even while the broker is down.
	publisher := rabbitmq.NewPublisher(cfg.Broker.URL())
	defer publisher.Close()

	svcs := bootstrap.NewServices(pool, publisher, cfg)
	catalog := platforms.NewProvider(platforms.Config{
		HuggingFaceURL: cfg.Platform.HuggingFaceURL,
		GitHubURL:      cfg.Platform.GitHubURL,
		PatraURL:       cfg.Platform.PatraURL,
		PatraTimeout:   cfg.Platform.PatraTimeout,
		GitBinary:      cfg.Platform.GitBinary,
	})

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(svcs.Artifact, svcs.Metadata, catalog)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), middleware.Metrics(), gin.Recovery())

	api := router.Group("/api/v1/artifact-hub")
	h.RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server forced shutdown: %v", err)
		return
	}

	log.Info("server stopped")
}
