package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/config"
	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/infra/coingecko"
	"github.com/redis/go-redis/v9"
)

const detailKeyPrefix = "coingecko:detail:"

// RedisAdapter — кэш ответов CoinGecko в Redis
type RedisAdapter struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisAdapter — подключается к Redis и проверяет соединение
func NewRedisAdapter(ctx context.Context, cfg config.RedisConfig) (*RedisAdapter, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return New(client, cfg.TTL), client, nil
}

// New — адаптер поверх готового клиента
func New(client redis.Cmdable, ttl time.Duration) *RedisAdapter {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisAdapter{client: client, ttl: ttl}
}

func detailKey(id string) string {
	return detailKeyPrefix + id
}

// GetDetail — (nil, false, nil), если ключа нет
func (a *RedisAdapter) GetDetail(ctx context.Context, id string) (*coingecko.CoinDetail, bool, error) {
	data, err := a.client.Get(ctx, detailKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get detail from redis: %w", err)
	}

	var d coingecko.CoinDetail
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal detail: %w", err)
	}
	return &d, true, nil
}

func (a *RedisAdapter) SetDetail(ctx context.Context, id string, d *coingecko.CoinDetail) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal detail: %w", err)
	}
	if err := a.client.Set(ctx, detailKey(id), data, a.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set detail in redis: %w", err)
	}
	return nil
}
