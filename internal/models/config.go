package models

import "time"

// Config represents the application configuration
type Config struct {
	Env         string
	ServiceName string
	Database    DatabaseConfig
	Server      ServerConfig
	Cache       CacheConfig
	Events      EventsConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // "sqlite3" or "postgres"
	Path            string
	Url             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// ServerConfig holds HTTP transport settings
type ServerConfig struct {
	Addr            string
	MetricsAddr     string
	JwtSecret       string
	CorsOrigins     []string
	ShutdownTimeout time.Duration
}

// CacheConfig holds the summary cache settings. An empty RedisAddr disables it.
type CacheConfig struct {
	RedisAddr  string
	SummaryTTL time.Duration
}

// EventsConfig holds ledger event publishing settings. No brokers disables it.
type EventsConfig struct {
	KafkaBrokers []string
	KafkaTopic   string
}
