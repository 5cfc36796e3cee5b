package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/Raymond9734/customer-registry/internal/models"
	"github.com/Raymond9734/customer-registry/internal/telemetry"
)

const customerCacheKeyPrefix = "customer:id:"

// cachedCustomerRepository keeps FindByID results in Redis. Phone number and
// user name probes always go to the wrapped repository so uniqueness checks
// never see stale data. A FindByID racing a write can store the row it read
// before the write invalidated the key; such an entry lives at most ttl.
type cachedCustomerRepository struct {
	CustomerRepository

	client  *redis.Client
	ttl     time.Duration
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// NewCachedCustomerRepository wraps inner with a Redis read-through cache
func NewCachedCustomerRepository(
	inner CustomerRepository,
	client *redis.Client,
	ttl time.Duration,
	metrics *telemetry.Metrics,
	logger *slog.Logger,
) CustomerRepository {
	return &cachedCustomerRepository{
		CustomerRepository: inner,
		client:             client,
		ttl:                ttl,
		metrics:            metrics,
		logger:             logger,
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("%s%d", customerCacheKeyPrefix, id)
}

// FindByID serves from Redis when possible and falls back to the wrapped
// repository on a miss or a Redis failure
func (r *cachedCustomerRepository) FindByID(ctx context.Context, id int64) (mo.Option[*models.Customer], error) {
	data, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	switch {
	case err == nil:
		var customer models.Customer
		if jsonErr := json.Unmarshal(data, &customer); jsonErr == nil {
			r.metrics.ObserveCache("hit")
			return mo.Some(&customer), nil
		}
		r.logger.Warn("discarding undecodable cache entry", slog.Int64("customer_id", id))
		r.metrics.ObserveCache("error")
	case errors.Is(err, redis.Nil):
		r.metrics.ObserveCache("miss")
	default:
		r.logger.Warn("customer cache read failed",
			slog.Int64("customer_id", id),
			slog.String("error", err.Error()),
		)
		r.metrics.ObserveCache("error")
	}

	result, err := r.CustomerRepository.FindByID(ctx, id)
	if err != nil {
		return result, err
	}

	if customer, ok := result.Get(); ok {
		r.store(ctx, customer)
	}

	return result, nil
}

func (r *cachedCustomerRepository) Save(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	saved, err := r.CustomerRepository.Save(ctx, customer)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, customer.ID, saved.ID)
	return saved, nil
}

func (r *cachedCustomerRepository) SaveAll(ctx context.Context, customers []*models.Customer) ([]*models.Customer, error) {
	saved, err := r.CustomerRepository.SaveAll(ctx, customers)
	if err != nil {
		return nil, err
	}

	ids := lo.Map(saved, func(c *models.Customer, _ int) int64 { return c.ID })
	r.invalidate(ctx, ids...)
	return saved, nil
}

func (r *cachedCustomerRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := r.CustomerRepository.DeleteByID(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *cachedCustomerRepository) store(ctx context.Context, customer *models.Customer) {
	data, err := json.Marshal(customer)
	if err != nil {
		return
	}

	if err := r.client.Set(ctx, cacheKey(customer.ID), data, r.ttl).Err(); err != nil {
		r.logger.Warn("customer cache write failed",
			slog.Int64("customer_id", customer.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (r *cachedCustomerRepository) invalidate(ctx context.Context, ids ...int64) {
	ids = lo.Uniq(lo.Filter(ids, func(id int64, _ int) bool { return id != 0 }))
	keys := lo.Map(ids, func(id int64, _ int) string { return cacheKey(id) })
	if len(keys) == 0 {
		return
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("customer cache invalidation failed",
			slog.Any("keys", keys),
			slog.String("error", err.Error()),
		)
	}
}
