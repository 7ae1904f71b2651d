package msg

import (
	"os"
	"strings"
)

// Config holds Kafka configuration
type Config struct {
	Brokers  []string
	ClientID string
}

// Topic names
const (
	TopicExecutionsFeed = "executions.feed"
)

// LoadConfig loads Kafka configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Brokers:  ParseBrokers(getEnvAsString("KAFKA_BROKERS", "127.0.0.1:9092")),
		ClientID: getEnvAsString("KAFKA_CLIENT_ID", "execfeed"),
	}
}

// ParseBrokers splits a comma-separated broker list, trimming whitespace
// and dropping empty entries.
func ParseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if b := strings.TrimSpace(p); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func getEnvAsString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
