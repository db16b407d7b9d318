package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"enrolld/internal/agegroup"
	"enrolld/internal/enrollment"
	"enrolld/internal/platform/config"
	"enrolld/internal/platform/postgres"
	platformredis "enrolld/internal/platform/redis"
	"enrolld/internal/queue"
	"enrolld/internal/user"
)

// Stores bundles the persistence layer handed to services. DB is nil when
// running on the in-memory implementations.
type Stores struct {
	AgeGroups   agegroup.Store
	Enrollments enrollment.Store
	Users       user.Store
	DB          *sql.DB
}

// BuildStores selects Postgres-backed stores when DATABASE_URL is set and
// in-memory stores otherwise. The caller owns closing Stores.DB.
func BuildStores(ctx context.Context, cfg config.Config) (Stores, error) {
	if cfg.DatabaseURL == "" {
		return Stores{
			AgeGroups:   agegroup.NewInMemoryStore(),
			Enrollments: enrollment.NewInMemoryStore(),
			Users:       user.NewInMemoryStore(),
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return Stores{}, err
	}
	return Stores{
		AgeGroups:   agegroup.NewPostgresStore(db),
		Enrollments: enrollment.NewPostgresStore(db),
		Users:       user.NewPostgresStore(db),
		DB:          db,
	}, nil
}

// BuildQueue constructs the queue named by QUEUE_DRIVER. The returned
// cleanup func releases broker connections and is safe to call once.
func BuildQueue(ctx context.Context, cfg config.Config, logger *slog.Logger) (queue.Queue, func(), error) {
	switch cfg.QueueDriver {
	case "memory":
		return queue.NewMemory(1024), func() {}, nil

	case "redis":
		client, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis queue: %w", err)
		}
		logger.InfoContext(ctx, "queue connected", "driver", "redis", "key", cfg.QueueKey)
		return queue.NewRedis(client.Client, cfg.QueueKey, cfg.DeadLetterKey), func() { client.Close() }, nil

	case "kafka":
		q, err := queue.NewKafka(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaDLQTopic, cfg.KafkaGroup)
		if err != nil {
			return nil, nil, fmt.Errorf("kafka queue: %w", err)
		}
		logger.InfoContext(ctx, "queue connected", "driver", "kafka", "topic", cfg.KafkaTopic)
		return q, q.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown queue driver %q", cfg.QueueDriver)
	}
}
