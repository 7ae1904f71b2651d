package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds configuration for the feed services
type Config struct {
	// Service name
	ServiceName string

	// gRPC server port (health service)
	GRPCPort int

	// HTTP server port (health endpoint)
	HTTPPort int

	// Log level: debug, info, warn, error
	LogLevel string

	// Kafka brokers (comma-separated)
	KafkaBrokers string

	// Topic the feed publishes executions to
	FeedTopic string

	// Tick cadence in milliseconds (one row per tick)
	CadenceMs int

	// Maximum rows to generate; 0 means unbounded
	MaxRows int64

	// Path to the sqlite feed journal
	JournalPath string
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig(serviceName string) *Config {
	return &Config{
		ServiceName:  serviceName,
		GRPCPort:     getEnvAsInt("PORT_GRPC", 50051),
		HTTPPort:     getEnvAsInt("PORT_HTTP", 8080),
		LogLevel:     getEnvAsString("LOG_LEVEL", "info"),
		KafkaBrokers: getEnvAsString("KAFKA_BROKERS", "127.0.0.1:9092"),
		FeedTopic:    getEnvAsString("FEED_TOPIC", "executions.feed"),
		CadenceMs:    getEnvAsInt("FEED_CADENCE_MS", 1000),
		MaxRows:      getEnvAsInt64("FEED_MAX_ROWS", 0),
		JournalPath:  getEnvAsString("JOURNAL_PATH", "data/feed.db"),
	}
}

// Cadence returns the tick period
func (c *Config) Cadence() time.Duration {
	return time.Duration(c.CadenceMs) * time.Millisecond
}

// GRPCAddr returns the gRPC server address
func (c *Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

// HTTPAddr returns the HTTP server address
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnvAsString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
