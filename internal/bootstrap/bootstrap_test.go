package bootstrap

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"artifact-hub-service/internal/adapters/secondary/rabbitmq"
	"artifact-hub-service/internal/config"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"clean shutdown", nil, 0},
		{"consistency fault", &rabbitmq.FatalError{Kind: rabbitmq.FaultConsistency, Err: errors.New("ingestion vanished")}, 2},
		{"broker fault", fmt.Errorf("consumer: %w", &rabbitmq.FatalError{Kind: rabbitmq.FaultBroker, Err: errors.New("closed")}), 3},
		{"repository fault", &rabbitmq.FatalError{Kind: rabbitmq.FaultRepository, Err: errors.New("connection refused")}, 3},
		{"other", errors.New("metrics server: bind"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestInitLogger(t *testing.T) {
	defer log.SetFormatter(&log.TextFormatter{})
	defer log.SetLevel(log.InfoLevel)

	InitLogger(config.LoggerConfig{Level: "debug", Format: "json"})
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	InitLogger(config.LoggerConfig{Level: "loud", Format: "text"})
	assert.Equal(t, log.InfoLevel, log.GetLevel())
	assert.IsType(t, &log.TextFormatter{}, log.StandardLogger().Formatter)
}

func TestMetricsMux(t *testing.T) {
	w := httptest.NewRecorder()
	metricsMux().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestPaths(t *testing.T) {
	p := Paths(config.StorageConfig{SharedDataDir: "/srv/shared"})
	assert.Equal(t, "/srv/shared/cache", p.CacheDir)
	assert.Equal(t, "/srv/shared/ingest", p.IngestDir())
}
