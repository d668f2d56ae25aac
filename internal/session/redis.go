package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/invoice-generator/internal/invoice"
)

const redisKeyPrefix = "invoice:session:"

// RedisStore keeps session documents as JSON in Redis, letting several
// instances serve the same browser.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a Redis backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

// Load reads the session document and slides its expiry.
func (s *RedisStore) Load(ctx context.Context, id string) (*invoice.Document, bool, error) {
	if s == nil || s.client == nil {
		return nil, false, errors.New("session: redis store not configured")
	}
	key := redisKey(id)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("session: load %s: %w", id, err)
	}
	var doc invoice.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("session: decode %s: %w", id, err)
	}
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return nil, false, fmt.Errorf("session: touch %s: %w", id, err)
	}
	return &doc, true, nil
}

// Save serialises doc and stores it with the configured TTL.
func (s *RedisStore) Save(ctx context.Context, id string, doc *invoice.Document) error {
	if s == nil || s.client == nil {
		return errors.New("session: redis store not configured")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", id, err)
	}
	if err := s.client.Set(ctx, redisKey(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: save %s: %w", id, err)
	}
	return nil
}

// Delete removes the session document.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.client == nil {
		return errors.New("session: redis store not configured")
	}
	return s.client.Del(ctx, redisKey(id)).Err()
}

// Ping checks connectivity to Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return errors.New("session: redis store not configured")
	}
	return s.client.Ping(ctx).Err()
}
