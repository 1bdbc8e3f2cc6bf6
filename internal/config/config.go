package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"

	"artifact-hub-service/internal/retry"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Broker   BrokerConfig
	Storage  StorageConfig
	Retry    RetryConfig
	Platform PlatformConfig
	Metrics  MetricsConfig
	Webhook  WebhookConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type LoggerConfig struct {
	Level  string
	Format string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User), url.QueryEscape(d.Password), d.Host, d.Port, d.Name, d.SSLMode)
}

type BrokerConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	VHost           string
	ConnectAttempts int
	ConnectDelay    time.Duration
	Prefetch        int
}

func (b BrokerConfig) URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(b.User, b.Password),
		Host:   fmt.Sprintf("%s:%d", b.Host, b.Port),
		Path:   "/" + b.VHost,
	}
	if b.VHost == "/" || b.VHost == "" {
		u.Path = "/"
	}
	return u.String()
}

type StorageConfig struct {
	SharedDataDir     string
	ArtifactsCacheDir string
}

type RetryConfig struct {
	RepoAttempts   int
	RepoDelay      time.Duration
	BrokerAttempts int
	BrokerDelay    time.Duration
	BrokerBase     float64
	BrokerMaxDelay time.Duration
	BrokerJitter   bool
}

// RepositoryPolicy retries repository calls at a fixed interval. Attempts
// counts the first call.
func (r RetryConfig) RepositoryPolicy() retry.Policy {
	return retry.Policy{
		Retries: retry.NTimes(retriesFor(r.RepoAttempts)),
		Backoff: retry.FixedBackoff{Interval: r.RepoDelay},
	}
}

func (r RetryConfig) BrokerPolicy() retry.Policy {
	jitter := retry.NoJitter
	if r.BrokerJitter {
		jitter = retry.FullJitter
	}
	return retry.Policy{
		Retries: retry.NTimes(retriesFor(r.BrokerAttempts)),
		Backoff: retry.ExponentialBackoff{
			Initial: r.BrokerDelay,
			Base:    r.BrokerBase,
			Max:     r.BrokerMaxDelay,
			Jitter:  jitter,
		},
	}
}

func retriesFor(attempts int) int {
	if attempts <= 1 {
		return 0
	}
	return attempts - 1
}

type PlatformConfig struct {
	HuggingFaceURL string
	GitHubURL      string
	PatraURL       string
	PatraTimeout   time.Duration
	GitBinary      string
}

type MetricsConfig struct {
	Host string
	Port int
}

func (m MetricsConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

type WebhookConfig struct {
	Timeout time.Duration
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "artifact_hub")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("BROKER_HOST", "localhost")
	v.SetDefault("BROKER_PORT", 5672)
	v.SetDefault("BROKER_USER", "guest")
	v.SetDefault("BROKER_PASSWORD", "guest")
	v.SetDefault("BROKER_VHOST", "/")
	v.SetDefault("BROKER_CONNECT_ATTEMPTS", 25)
	v.SetDefault("BROKER_CONNECT_DELAY", "2s")
	v.SetDefault("BROKER_PREFETCH", 1)

	v.SetDefault("SHARED_DATA_DIR", "/data/shared")
	v.SetDefault("ARTIFACTS_CACHE_DIR", "")

	v.SetDefault("REPO_RETRY_ATTEMPTS", 3)
	v.SetDefault("REPO_RETRY_DELAY", "50ms")
	v.SetDefault("BROKER_RETRY_ATTEMPTS", 3)
	v.SetDefault("BROKER_RETRY_DELAY", "50ms")
	v.SetDefault("BROKER_RETRY_BASE", 2.0)
	v.SetDefault("BROKER_RETRY_MAX_DELAY", "500ms")
	v.SetDefault("BROKER_RETRY_JITTER", true)

	v.SetDefault("HUGGINGFACE_URL", "https://huggingface.co")
	v.SetDefault("GITHUB_URL", "https://github.com")
	v.SetDefault("PATRA_URL", "https://patraserver.pods.icicleai.tapis.io")
	v.SetDefault("PATRA_TIMEOUT", "30s")
	v.SetDefault("GIT_BINARY", "git")

	v.SetDefault("METRICS_HOST", "0.0.0.0")
	v.SetDefault("METRICS_PORT", 9090)
	v.SetDefault("WEBHOOK_TIMEOUT", "10s")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: duration(v, "DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Broker: BrokerConfig{
			Host:            v.GetString("BROKER_HOST"),
			Port:            v.GetInt("BROKER_PORT"),
			User:            v.GetString("BROKER_USER"),
			Password:        v.GetString("BROKER_PASSWORD"),
			VHost:           v.GetString("BROKER_VHOST"),
			ConnectAttempts: v.GetInt("BROKER_CONNECT_ATTEMPTS"),
			ConnectDelay:    duration(v, "BROKER_CONNECT_DELAY", 2*time.Second),
			Prefetch:        v.GetInt("BROKER_PREFETCH"),
		},
		Storage: StorageConfig{
			SharedDataDir:     v.GetString("SHARED_DATA_DIR"),
			ArtifactsCacheDir: v.GetString("ARTIFACTS_CACHE_DIR"),
		},
		Retry: RetryConfig{
			RepoAttempts:   v.GetInt("REPO_RETRY_ATTEMPTS"),
			RepoDelay:      duration(v, "REPO_RETRY_DELAY", 50*time.Millisecond),
			BrokerAttempts: v.GetInt("BROKER_RETRY_ATTEMPTS"),
			BrokerDelay:    duration(v, "BROKER_RETRY_DELAY", 50*time.Millisecond),
			BrokerBase:     v.GetFloat64("BROKER_RETRY_BASE"),
			BrokerMaxDelay: duration(v, "BROKER_RETRY_MAX_DELAY", 500*time.Millisecond),
			BrokerJitter:   v.GetBool("BROKER_RETRY_JITTER"),
		},
		Platform: PlatformConfig{
			HuggingFaceURL: v.GetString("HUGGINGFACE_URL"),
			GitHubURL:      v.GetString("GITHUB_URL"),
			PatraURL:       v.GetString("PATRA_URL"),
			PatraTimeout:   duration(v, "PATRA_TIMEOUT", 30*time.Second),
			GitBinary:      v.GetString("GIT_BINARY"),
		},
		Metrics: MetricsConfig{
			Host: v.GetString("METRICS_HOST"),
			Port: v.GetInt("METRICS_PORT"),
		},
		Webhook: WebhookConfig{
			Timeout: duration(v, "WEBHOOK_TIMEOUT", 10*time.Second),
		},
	}

	if cfg.Storage.SharedDataDir == "" {
		return nil, fmt.Errorf("SHARED_DATA_DIR must be set")
	}
	if cfg.Broker.Prefetch < 1 {
		return nil, fmt.Errorf("BROKER_PREFETCH must be at least 1, got %d", cfg.Broker.Prefetch)
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
