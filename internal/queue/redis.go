package queue

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"order-manager/internal/metrics"
)

// RedisConfig defines connection parameters for the Redis broker.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	UseTLS   bool
	Queue    string
	Metrics  *metrics.Metrics
}

// RedisBroker is a Redis-list backed Broker. Producers LPUSH job envelopes;
// the worker blocks on BRPOP. The list gives at-least-once hand-off: a job
// popped by a worker that dies mid-send is lost to the list but the send loop
// never fails a job, so in practice redelivery only happens on enqueue retry.
type RedisBroker struct {
	client  *redis.Client
	queue   string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRedis returns a Redis broker based on provided configuration.
func NewRedis(cfg RedisConfig, logger *slog.Logger) *RedisBroker {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	queueName := cfg.Queue
	if queueName == "" {
		queueName = "whatsapp-notifications"
	}

	return &RedisBroker{
		client:  redis.NewClient(opts),
		queue:   queueName,
		logger:  logger.With("component", "queue"),
		metrics: cfg.Metrics,
	}
}

// Ping verifies Redis connectivity.
func (b *RedisBroker) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Enqueue pushes a job onto the queue. A broker failure here must surface to
// the caller; the corresponding row is already committed, so the order
// survives but its notification is lost.
func (b *RedisBroker) Enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := b.client.LPush(ctx, b.queue, data).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", job.Kind, err)
	}
	if b.metrics != nil {
		b.metrics.JobsEnqueued.WithLabelValues(string(job.Kind)).Inc()
	}
	b.logger.Debug("job enqueued", "kind", job.Kind)
	return nil
}

// Consume blocks until a job is available or ctx is cancelled.
func (b *RedisBroker) Consume(ctx context.Context) (*Job, error) {
	res, err := b.client.BRPop(ctx, 5*time.Second, b.queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue: %w", err)
	}
	// BRPop returns [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("dequeue: unexpected reply length %d", len(res))
	}

	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

// Close releases Redis resources.
func (b *RedisBroker) Close() error {
	return b.client.Close()
}
