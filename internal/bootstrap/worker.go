package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"artifact-hub-service/internal/adapters/secondary/platforms"
	"artifact-hub-service/internal/adapters/secondary/rabbitmq"
	"artifact-hub-service/internal/adapters/secondary/storage"
	"artifact-hub-service/internal/adapters/secondary/webhook"
	"artifact-hub-service/internal/config"
	"artifact-hub-service/internal/core/ports/output"
)

// WorkerDeps are handed to the builder of a worker's message handler.
type WorkerDeps struct {
	Services  Services
	Platforms *platforms.Provider
	Archiver  ports.Archiver
	Notifier  ports.Notifier
	Paths     storage.Paths
}

// RunWorker wires a queue consumer for route and runs it with a metrics
// server until SIGINT/SIGTERM or a fatal error. The returned code is the
// process exit status.
func RunWorker(name string, route rabbitmq.Route, build func(WorkerDeps) rabbitmq.Handler) int {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("load config")
		return 1
	}
	InitLogger(cfg.Logger)
	logger := log.WithFields(log.Fields{"worker": name, "queue": route.Queue})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := OpenDatabase(ctx, cfg.Database)
	if err != nil {
		logger.WithError(err).Error("open database")
		return 1
	}
	defer pool.Close()

	conn, err := rabbitmq.Connect(ctx, rabbitmq.ConnectConfig{
		URL:         cfg.Broker.URL(),
		Attempts:    cfg.Broker.ConnectAttempts,
		Delay:       cfg.Broker.ConnectDelay,
		ConnectName: name,
	})
	if err != nil {
		logger.WithError(err).WithField("fatal_kind", string(rabbitmq.FaultBroker)).Error("broker unavailable")
		return (&rabbitmq.FatalError{Kind: rabbitmq.FaultBroker, Err: err}).ExitCode()
	}
	defer conn.Close()

	publisher := rabbitmq.NewPublisher(cfg.Broker.URL())
	defer publisher.Close()

	handler := build(WorkerDeps{
		Services: NewServices(pool, publisher, cfg),
		Platforms: platforms.NewProvider(platforms.Config{
			HuggingFaceURL: cfg.Platform.HuggingFaceURL,
			GitHubURL:      cfg.Platform.GitHubURL,
			PatraURL:       cfg.Platform.PatraURL,
			PatraTimeout:   cfg.Platform.PatraTimeout,
			GitBinary:      cfg.Platform.GitBinary,
		}),
		Archiver: storage.NewZipArchiver(),
		Notifier: webhook.NewNotifier(cfg.Webhook.Timeout),
		Paths:    Paths(cfg.Storage),
	})

	consumer := rabbitmq.NewConsumer(conn, cfg.Broker.Prefetch, fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]))
	metricsSrv := &http.Server{Addr: cfg.Metrics.Addr(), Handler: metricsMux()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Run(gctx, route, handler)
	})
	g.Go(func() error {
		logger.Infof("metrics server listening on %s", metricsSrv.Addr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	code := ExitCode(err)
	if code != 0 {
		entry := logger.WithError(err)
		var fatal *rabbitmq.FatalError
		if errors.As(err, &fatal) {
			entry = entry.WithField("fatal_kind", string(fatal.Kind))
		}
		entry.Error("worker terminated")
		return code
	}
	logger.Info("worker stopped")
	return 0
}

// ExitCode maps the error that ended a worker to its exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var fatal *rabbitmq.FatalError
	if errors.As(err, &fatal) {
		return fatal.ExitCode()
	}
	return 1
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
