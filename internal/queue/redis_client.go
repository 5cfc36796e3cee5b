package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Raymond9734/customer-registry/internal/models"
)

// MaxConcurrency caps the number of jobs a consumer processes at once
const MaxConcurrency = 5

// redisClient implements Client using a Redis list
type redisClient struct {
	client    *redis.Client
	queueName string
	popWait   time.Duration
	logger    *slog.Logger
}

// NewRedisClient creates a queue client on top of an existing Redis connection
func NewRedisClient(client *redis.Client, queueName string, logger *slog.Logger) Client {
	logger.Info("queue client ready",
		slog.String("addr", client.Options().Addr),
		slog.String("queue", queueName),
	)

	return &redisClient{
		client:    client,
		queueName: queueName,
		popWait:   1 * time.Second,
		logger:    logger,
	}
}

// Publish sends an import job to the queue
func (c *redisClient) Publish(ctx context.Context, job *models.ImportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	// LPUSH + BRPOP gives FIFO order
	if err := c.client.LPush(ctx, c.queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to push job to queue: %w", err)
	}

	c.logger.Debug("job published to queue",
		slog.String("batch_id", job.BatchID),
		slog.Int("attempt", job.Attempt),
	)

	return nil
}

// Consume receives jobs from the queue and processes them with the handler.
// concurrency is clamped to [1, MaxConcurrency]. It returns once ctx is done
// and every in-flight job has finished.
func (c *redisClient) Consume(ctx context.Context, handler JobHandler, concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > MaxConcurrency {
		concurrency = MaxConcurrency
	}

	c.logger.Info("starting queue consumer",
		slog.String("queue", c.queueName),
		slog.Int("concurrency", concurrency),
	)

	semaphore := make(chan struct{}, concurrency)
	drain := func() {
		for i := 0; i < concurrency; i++ {
			semaphore <- struct{}{}
		}
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopped by context, waiting for in-flight jobs to complete")
			drain()
			c.logger.Info("all in-flight jobs completed")
			return ctx.Err()

		default:
			result, err := c.client.BRPop(ctx, c.popWait, c.queueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					c.logger.Info("consumer stopped by context")
					drain()
					return err
				}
				c.logger.Error("failed to pop from queue", slog.String("error", err.Error()))
				// avoid a tight loop on persistent errors
				select {
				case <-ctx.Done():
				case <-time.After(c.popWait):
				}
				continue
			}

			// BRPOP returns [queueName, value]
			if len(result) < 2 {
				c.logger.Error("unexpected BRPOP result format")
				continue
			}

			var job models.ImportJob
			if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
				c.logger.Error("failed to unmarshal job",
					slog.String("error", err.Error()),
					slog.String("data", result[1]),
				)
				continue
			}

			c.logger.Debug("job received from queue",
				slog.String("batch_id", job.BatchID),
			)

			semaphore <- struct{}{}

			go func(job models.ImportJob) {
				defer func() { <-semaphore }()

				// the job is already popped; retries are the handler's concern
				if err := handler(ctx, &job); err != nil {
					c.logger.Error("handler failed to process job",
						slog.String("batch_id", job.BatchID),
						slog.String("error", err.Error()),
					)
				}
			}(job)
		}
	}
}

// Close closes the Redis connection
func (c *redisClient) Close() error {
	c.logger.Info("closing Redis connection")
	return c.client.Close()
}

// Health checks if Redis is healthy
func (c *redisClient) Health(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// QueueLength returns the number of jobs in the queue
func (c *redisClient) QueueLength(ctx context.Context) (int64, error) {
	length, err := c.client.LLen(ctx, c.queueName).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return length, nil
}
