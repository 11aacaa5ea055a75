package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"idverify/pkg/platform/sentinel"
)

const settingsKey = "idverify:policy:settings"

// RedisStore shares one settings document across instances. Recommended for
// distributed deployments where a local file would drift between replicas.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context) (Settings, error) {
	data, err := s.client.Get(ctx, settingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Settings{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Settings{}, fmt.Errorf("load settings from redis: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse stored settings: %w", err)
	}
	return settings, nil
}

func (s *RedisStore) Save(ctx context.Context, settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	// No TTL: policy settings live until replaced.
	if err := s.client.Set(ctx, settingsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("save settings to redis: %w", err)
	}
	return nil
}
