package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"privatechef/internal/config"
	"privatechef/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	pageStatePrefix = "page_state:"
	inflightPrefix  = "inflight:"
)

type RedisStateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisStateRepository(client *redis.Client, ttl time.Duration) *RedisStateRepository {
	return &RedisStateRepository{
		client: client,
		ttl:    ttl,
	}
}

func inflightKey(sessionID string, tool models.Tool) string {
	return fmt.Sprintf("%s%s:%s", inflightPrefix, sessionID, tool)
}

func (r *RedisStateRepository) GetState(ctx context.Context, sessionID string) (*models.PageState, error) {
	if r.client == nil {
		return nil, errors.New("redis client is nil")
	}
	val, err := r.client.Get(ctx, pageStatePrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page state from redis: %w", err)
	}

	var state models.PageState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal page state: %w", err)
	}
	return &state, nil
}

func (r *RedisStateRepository) SetState(ctx context.Context, state *models.PageState) error {
	if r.client == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal page state: %w", err)
	}
	if err := r.client.Set(ctx, pageStatePrefix+state.SessionID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set page state in redis: %w", err)
	}
	return nil
}

// Flags hold the owner's token; only the owner may extend or delete them.
var (
	extendInflightScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

	releaseInflightScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)
)

func (r *RedisStateRepository) AcquireInflight(ctx context.Context, sessionID string, tool models.Tool, token string, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return false, errors.New("redis client is nil")
	}
	ok, err := r.client.SetNX(ctx, inflightKey(sessionID, tool), token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set inflight flag: %w", err)
	}
	return ok, nil
}

func (r *RedisStateRepository) ExtendInflight(ctx context.Context, sessionID string, tool models.Tool, token string, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return false, errors.New("redis client is nil")
	}
	n, err := extendInflightScript.Run(ctx, r.client, []string{inflightKey(sessionID, tool)}, token, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to extend inflight flag: %w", err)
	}
	return n == 1, nil
}

func (r *RedisStateRepository) ReleaseInflight(ctx context.Context, sessionID string, tool models.Tool, token string) error {
	if r.client == nil {
		return errors.New("redis client is nil")
	}
	if err := releaseInflightScript.Run(ctx, r.client, []string{inflightKey(sessionID, tool)}, token).Err(); err != nil {
		return fmt.Errorf("failed to clear inflight flag: %w", err)
	}
	return nil
}

func (r *RedisStateRepository) IsInflight(ctx context.Context, sessionID string, tool models.Tool) (bool, error) {
	if r.client == nil {
		return false, errors.New("redis client is nil")
	}
	n, err := r.client.Exists(ctx, inflightKey(sessionID, tool)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read inflight flag: %w", err)
	}
	return n > 0, nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
