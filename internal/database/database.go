package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisOptions reprend les réglages de pool utilisés en production
func RedisOptions(addr, password string) *redis.Options {
	return &redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	}
}

// ConnectRedis ouvre le client et vérifie la connexion par un PING
func ConnectRedis(ctx context.Context, addr, password string, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(RedisOptions(addr, password))

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	if log != nil {
		log.Info("✅ Connecté à Redis", zap.String("addr", addr))
	}
	return client, nil
}
