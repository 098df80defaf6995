package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 30 * 24 * time.Hour // 30 jours

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Key est aussi le nom du canal pub/sub du panier
func Key(cartID string) string {
	return "cart:" + cartID
}

func (s *RedisStore) Get(ctx context.Context, cartID string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, Key(cartID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart %s: %w", cartID, err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, cartID string, data []byte) error {
	if err := s.rdb.Set(ctx, Key(cartID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("write cart %s: %w", cartID, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, cartID string) error {
	if err := s.rdb.Del(ctx, Key(cartID)).Err(); err != nil {
		return fmt.Errorf("clear cart %s: %w", cartID, err)
	}
	return nil
}

func (s *RedisStore) Publish(ctx context.Context, cartID, event string) error {
	return s.rdb.Publish(ctx, Key(cartID), event).Err()
}

// Subscribe ouvre l'abonnement utilisé par la synchro websocket
func (s *RedisStore) Subscribe(ctx context.Context, cartID string) *redis.PubSub {
	return s.rdb.Subscribe(ctx, Key(cartID))
}
