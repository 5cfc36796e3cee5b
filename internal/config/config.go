package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Queue     QueueConfig
	Cache     CacheConfig
	API       APIConfig
	Worker    WorkerConfig
	Telemetry TelemetryConfig
	LogLevel  slog.Level
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// QueueConfig holds queue configuration (Redis)
type QueueConfig struct {
	RedisURL  string
	QueueName string
}

// CacheConfig holds the customer lookup cache configuration
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// APIConfig holds API server configuration
type APIConfig struct {
	Port int
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	Concurrency   int
	MaxRetryCount int
	MetricsPort   int
}

// TelemetryConfig holds tracing configuration
type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	Insecure     bool
	SampleRatio  float64
}

var defaults = map[string]any{
	"STORAGE_DRIVER":              StorageDriverPostgres,
	"DB_HOST":                     "localhost",
	"DB_PORT":                     "5432",
	"DB_USER":                     "customer_registry",
	"DB_PASSWORD":                 "customer_registry",
	"DB_NAME":                     "customer_registry",
	"DB_SSLMODE":                  "disable",
	"API_PORT":                    "8080",
	"REDIS_URL":                   "redis://localhost:6379/0",
	"QUEUE_NAME":                  "customer_imports",
	"CACHE_ENABLED":               "false",
	"CACHE_TTL":                   "5m",
	"WORKER_CONCURRENCY":          "5",
	"MAX_RETRY_COUNT":             "3",
	"WORKER_METRICS_PORT":         "9091",
	"LOG_LEVEL":                   "info",
	"OTEL_ENABLED":                "false",
	"OTEL_SERVICE_NAME":           "customer-registry",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4317",
	"OTEL_EXPORTER_OTLP_INSECURE": "true",
	"OTEL_TRACES_SAMPLER_ARG":     "1.0",
}

// Load reads configuration from environment variables, merged over an
// optional config.yaml found in the working directory or ./configs
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	p := parser{v: v}

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("STORAGE_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     p.int("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Queue: QueueConfig{
			RedisURL:  v.GetString("REDIS_URL"),
			QueueName: v.GetString("QUEUE_NAME"),
		},
		Cache: CacheConfig{
			Enabled: p.bool("CACHE_ENABLED"),
			TTL:     p.duration("CACHE_TTL"),
		},
		API: APIConfig{
			Port: p.int("API_PORT"),
		},
		Worker: WorkerConfig{
			Concurrency:   p.int("WORKER_CONCURRENCY"),
			MaxRetryCount: p.int("MAX_RETRY_COUNT"),
			MetricsPort:   p.int("WORKER_METRICS_PORT"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      p.bool("OTEL_ENABLED"),
			ServiceName:  v.GetString("OTEL_SERVICE_NAME"),
			OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Insecure:     p.bool("OTEL_EXPORTER_OTLP_INSECURE"),
			SampleRatio:  p.float("OTEL_TRACES_SAMPLER_ARG"),
		},
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid LOG_LEVEL: %w", err))
	}

	switch cfg.Database.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		p.errs = append(p.errs, fmt.Errorf("invalid STORAGE_DRIVER %q (must be %q or %q)",
			cfg.Database.Driver, StorageDriverPostgres, StorageDriverMemory))
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parser reads typed values and collects every malformed key
type parser struct {
	v    *viper.Viper
	errs []error
}

func (p *parser) int(key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(p.v.GetString(key)))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return n
}

func (p *parser) bool(key string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(p.v.GetString(key)))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return b
}

func (p *parser) float(key string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(p.v.GetString(key)), 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return f
}

func (p *parser) duration(key string) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(p.v.GetString(key)))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return d
}
