// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Retrieval, Index, Queries, Output, Postgres, Kafka, Redis, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Index source formats understood by the index store.
const (
	IndexFormatJSON   = "json"
	IndexFormatSQLite = "sqlite"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Index     IndexConfig     `yaml:"index"`
	Queries   QueryConfig     `yaml:"queries"`
	Output    OutputConfig    `yaml:"output"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Retry     RetryConfig     `yaml:"retry"`
}

// ServerConfig holds HTTP server settings for the searcher.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// RetrievalConfig selects the term-weighting policy and the batch fan-out.
type RetrievalConfig struct {
	Weighting string `yaml:"weighting"`
	Workers   int    `yaml:"workers"`
}

// IndexConfig points at the precomputed inverted index.
type IndexConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// QueryConfig controls how raw query text is turned into terms.
type QueryConfig struct {
	Path            string `yaml:"path"`
	Stem            bool   `yaml:"stem"`
	RemoveStopwords bool   `yaml:"removeStopwords"`
}

// OutputConfig controls where batch results go.
type OutputConfig struct {
	Path     string `yaml:"path"`
	RunID    string `yaml:"runId"`
	Postgres bool   `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled bool        `yaml:"enabled"`
	Brokers []string    `yaml:"brokers"`
	Topics  KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	RetrievalEvents string `yaml:"retrievalEvents"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// RetryConfig is the backoff used when talking to external stores.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"maxAttempts"`
	InitialDelay time.Duration `yaml:"initialDelay"`
	MaxDelay     time.Duration `yaml:"maxDelay"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Validate reports the first configuration value no component could run with.
// The weighting identifier itself is checked by the retrieval engine.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Retrieval.Weighting) == "" {
		return fmt.Errorf("retrieval.weighting must be set")
	}
	if c.Retrieval.Workers <= 0 {
		return fmt.Errorf("retrieval.workers must be positive, got %d", c.Retrieval.Workers)
	}
	switch c.Index.Format {
	case IndexFormatJSON, IndexFormatSQLite:
	default:
		return fmt.Errorf("index.format %q is not one of %s, %s", c.Index.Format, IndexFormatJSON, IndexFormatSQLite)
	}
	if c.Redis.Enabled && c.Redis.CacheTTL <= 0 {
		return fmt.Errorf("redis.cacheTTL must be positive when caching is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers must be set when kafka is enabled")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Retrieval: RetrievalConfig{
			Weighting: "tfidf",
			Workers:   4,
		},
		Index: IndexConfig{
			Path:   "data/index.json",
			Format: IndexFormatJSON,
		},
		Queries: QueryConfig{
			Path: "data/queries.txt",
		},
		Output: OutputConfig{
			Path: "results.txt",
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "vsmretrieval",
			User:            "vsmretrieval",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topics: KafkaTopics{
				RetrievalEvents: "retrieval-events",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     5 * time.Second,
		},
	}
}

// applyEnvOverrides reads VSM_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VSM_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("VSM_WEIGHTING"); v != "" {
		cfg.Retrieval.Weighting = v
	}
	if v := os.Getenv("VSM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retrieval.Workers = n
		}
	}
	if v := os.Getenv("VSM_INDEX_PATH"); v != "" {
		cfg.Index.Path = v
	}
	if v := os.Getenv("VSM_INDEX_FORMAT"); v != "" {
		cfg.Index.Format = v
	}
	if v := os.Getenv("VSM_QUERIES_PATH"); v != "" {
		cfg.Queries.Path = v
	}
	if v := os.Getenv("VSM_OUTPUT_PATH"); v != "" {
		cfg.Output.Path = v
	}
	if v := os.Getenv("VSM_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("VSM_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("VSM_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("VSM_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("VSM_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("VSM_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("VSM_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("VSM_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("VSM_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("VSM_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
