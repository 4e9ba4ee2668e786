package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Index    IndexConfig
	Reindex  ReindexConfig
	Consumer ConsumerConfig
	HTTP     HTTPConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	Timeout  time.Duration
	SSL      SSLConfig
}

type SSLConfig struct {
	Mode     string
	RootCert string
	Cert     string
	Key      string
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	SyncStateKey string
}

type IndexConfig struct {
	URL      string
	Name     string
	Timeout  time.Duration
	MaxTries int
}

type ReindexConfig struct {
	PageSize int
	Interval time.Duration
}

// ConsumerConfig configures the Redis Streams consumer for content change
// events. Disabled by default; the full reindex path works without it.
type ConsumerConfig struct {
	RedisURL     string
	GroupName    string
	ConsumerName string
	StreamKey    string
	BatchSize    int64
	BlockTimeout time.Duration
	Enabled      bool
}

type HTTPConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
}

func Load() (*Config, error) {
	dbConfig := &DatabaseConfig{
		Host:     getEnvRequired("DB_HOST"),
		Port:     getEnvRequired("DB_PORT"),
		Name:     getEnvRequired("DB_NAME"),
		User:     getEnvRequired("CONTENT_SEARCH_DB_USER"),
		Password: getEnvRequired("CONTENT_SEARCH_DB_PASSWORD"),
		Timeout:  DBTimeout,
		SSL: SSLConfig{
			Mode:     getEnvOrDefault("DB_SSL_MODE", "prefer"),
			RootCert: getEnvOrDefault("DB_SSL_ROOT_CERT", ""),
			Cert:     getEnvOrDefault("DB_SSL_CERT", ""),
			Key:      getEnvOrDefault("DB_SSL_KEY", ""),
		},
	}

	if err := dbConfig.ValidateSSLConfig(); err != nil {
		slog.Error("Invalid SSL configuration", "error", err)
		return nil, fmt.Errorf("SSL configuration error: %w", err)
	}

	cfg := &Config{
		Database: *dbConfig,
		Redis: RedisConfig{
			Addr:         getEnvRequired("REDIS_ADDR"),
			Password:     getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:           intEnv("REDIS_DB", 0),
			SyncStateKey: getEnvOrDefault("SYNC_STATE_KEY", "content-search:sync"),
		},
		Index: IndexConfig{
			URL:      getEnvRequired("INDEX_URL"),
			Name:     getEnvOrDefault("INDEX_NAME", "content"),
			Timeout:  IndexTimeout,
			MaxTries: IndexMaxTries,
		},
		Reindex: ReindexConfig{
			PageSize: ReindexPageSize,
			Interval: ReindexInterval,
		},
		Consumer: ConsumerConfig{
			RedisURL:     getEnvOrDefault("REDIS_STREAMS_URL", "redis://localhost:6379"),
			GroupName:    getEnvOrDefault("CONSUMER_GROUP", "content-search-group"),
			ConsumerName: getEnvOrDefault("CONSUMER_NAME", "content-search-1"),
			StreamKey:    getEnvOrDefault("CONSUMER_STREAM_KEY", "cms:events:posts"),
			BatchSize:    int64(intEnv("CONSUMER_BATCH_SIZE", 10)),
			BlockTimeout: 5 * time.Second,
			Enabled:      boolEnv("CONSUMER_ENABLED", false),
		},
		HTTP: HTTPConfig{
			Addr:              HTTPAddr,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	slog.Info("Configuration loaded",
		"db_host", cfg.Database.Host,
		"db_sslmode", cfg.Database.SSL.Mode,
		"index_url", cfg.Index.URL,
		"index_name", cfg.Index.Name,
	)

	return cfg, nil
}

func (c *DatabaseConfig) GetDatabaseURL() string {
	baseURL := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		c.User, c.Password, c.Host, c.Port, c.Name,
	)

	params := fmt.Sprintf("?sslmode=%s", c.SSL.Mode)

	if c.SSL.RootCert != "" {
		params += fmt.Sprintf("&sslrootcert=%s", c.SSL.RootCert)
	}
	if c.SSL.Cert != "" {
		params += fmt.Sprintf("&sslcert=%s", c.SSL.Cert)
	}
	if c.SSL.Key != "" {
		params += fmt.Sprintf("&sslkey=%s", c.SSL.Key)
	}

	return baseURL + params
}

func (c *DatabaseConfig) ValidateSSLConfig() error {
	switch c.SSL.Mode {
	case "disable":
		return fmt.Errorf("SSL disable mode is not allowed")
	case "allow", "prefer":
		return nil
	case "require":
		return nil
	case "verify-ca", "verify-full":
		if c.SSL.RootCert == "" {
			return fmt.Errorf("SSL root certificate required for mode %s", c.SSL.Mode)
		}
		return nil
	default:
		return fmt.Errorf("invalid SSL mode: %s", c.SSL.Mode)
	}
}

func getEnvRequired(key string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return value
}

func getEnvOrDefault(key, defaultValue string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
