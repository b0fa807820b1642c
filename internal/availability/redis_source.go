package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	redisKeyPrefix  = "availability:"
	DefaultCacheTTL = 5 * time.Minute
)

// RedisCachedSource puts a shared Redis cache in front of another Source so
// several instances do not hit the database for the same month. Cache
// failures are logged and the inner source is used instead.
type RedisCachedSource struct {
	inner  Source
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisCachedSource(inner Source, client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCachedSource{inner: inner, client: client, ttl: ttl, logger: logger}
}

func redisKey(serviceID string, year int, month time.Month) string {
	if serviceID == "" {
		serviceID = "*"
	}
	return fmt.Sprintf("%s%s:%04d-%02d", redisKeyPrefix, serviceID, year, int(month))
}

func (s *RedisCachedSource) GetAvailability(ctx context.Context, serviceID string, year int, month time.Month) ([]models.AvailabilityRecord, error) {
	key := redisKey(serviceID, year, month)

	data, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var records []models.AvailabilityRecord
		if err := json.Unmarshal(data, &records); err == nil {
			return records, nil
		}
		s.logger.Warn("corrupt availability cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("availability cache read failed", zap.String("key", key), zap.Error(err))
	}

	records, err := s.inner.GetAvailability(ctx, serviceID, year, month)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(records); err == nil {
		if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.logger.Warn("availability cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return records, nil
}

// Invalidate removes the cached month. The venue-wide month is removed too.
func (s *RedisCachedSource) Invalidate(ctx context.Context, serviceID string, year int, month time.Month) error {
	keys := []string{redisKey(serviceID, year, month)}
	if serviceID != "" {
		keys = append(keys, redisKey("", year, month))
	}
	return s.client.Del(ctx, keys...).Err()
}
