package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything both binaries read from the environment so main
// stays lean. Defaults favor a local, dependency-free run: in-memory stores
// and the in-process queue.
type Config struct {
	Addr     string
	LogLevel string
	AppEnv   string

	// Basic auth for /api/v1. Both empty disables auth (local development).
	BasicAuthUser string
	BasicAuthPass string

	// DatabaseURL empty selects the in-memory stores.
	DatabaseURL string

	// QueueDriver is one of memory, redis, kafka.
	QueueDriver   string
	RedisURL      string
	QueueKey      string
	DeadLetterKey string
	KafkaBrokers  []string
	KafkaTopic    string
	KafkaDLQTopic string
	KafkaGroup    string

	WorkerCount    int
	ReceiveTimeout time.Duration
	SweepInterval  time.Duration
	StaleAfter     time.Duration
}

// FromEnv builds the configuration from environment variables with defaults.
func FromEnv() Config {
	return Config{
		Addr:     getenv("ENROLLD_ADDR", ":8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		AppEnv:   getenv("APP_ENV", "production"),

		BasicAuthUser: os.Getenv("BASIC_AUTH_USER"),
		BasicAuthPass: os.Getenv("BASIC_AUTH_PASS"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		QueueDriver:   getenv("QUEUE_DRIVER", "memory"),
		RedisURL:      getenv("REDIS_URL", "redis://localhost:6379/0"),
		QueueKey:      getenv("ENROLLMENTS_QUEUE", "enrollments_queue"),
		DeadLetterKey: getenv("ENROLLMENTS_DLQ", "enrollments_dlq"),
		KafkaBrokers:  splitList(getenv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:    getenv("KAFKA_TOPIC", "enrollments"),
		KafkaDLQTopic: getenv("KAFKA_DLQ_TOPIC", "enrollments.dlq"),
		KafkaGroup:    getenv("KAFKA_GROUP", "enrolld-workers"),

		WorkerCount:    getint("WORKER_COUNT", 2),
		ReceiveTimeout: getduration("RECEIVE_TIMEOUT", 5*time.Second),
		SweepInterval:  getduration("SWEEP_INTERVAL", time.Minute),
		StaleAfter:     getduration("STALE_AFTER", 5*time.Minute),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
