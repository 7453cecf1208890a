package coord

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisCoordinator backs the Coordinator interface with Redis, making the
// ephemeral state visible to every orchestrator instance immediately.
type RedisCoordinator struct {
	client *redis.Client
}

// NewRedis connects to Redis using a URL like redis://host:6379/0 and
// verifies the connection with a ping.
func NewRedis(ctx context.Context, url string) (*RedisCoordinator, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisCoordinator{client: client}, nil
}

func (r *RedisCoordinator) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoKey
	}
	return val, err
}

func (r *RedisCoordinator) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisCoordinator) SetNX(ctx context.Context, key, value string) (bool, error) {
	return r.client.SetNX(ctx, key, value, 0).Result()
}

func (r *RedisCoordinator) Incr(ctx context.Context, key string) (int64, error) {
	return r.client.Incr(ctx, key).Result()
}

func (r *RedisCoordinator) SAdd(ctx context.Context, key string, member string) error {
	return r.client.SAdd(ctx, key, member).Err()
}

func (r *RedisCoordinator) SMembers(ctx context.Context, key string) (map[string]struct{}, error) {
	members, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	return set, nil
}

// Close releases the underlying client.
func (r *RedisCoordinator) Close() error {
	return r.client.Close()
}
