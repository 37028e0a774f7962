package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/makkenzo/niches-hunter-api/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyNamespace      = "nh"
	idempotencyPrefix = "idempotency"
	rateLimitPrefix   = "rate_limit"
)

// incrWithTTLScript increments KEYS[1] and applies the ARGV[1] millisecond TTL
// whenever the key has none.
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if tonumber(ARGV[1]) > 0 and redis.call('PTTL', KEYS[1]) == -1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`

func NewRedisClient(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := client.Ping(pingCtx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("Successfully connected to Redis")
	return client, nil
}

type cmdable interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store exposes namespaced counters and idempotency markers on top of a redis client.
type Store struct {
	cmd cmdable
}

func NewStore(client *redis.Client) *Store {
	return &Store{cmd: client}
}

// IncrWithTTL increments key and sets its TTL in the same server-side step.
func (s *Store) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return s.cmd.Eval(ctx, incrWithTTLScript, []string{key}, ttl.Milliseconds()).Int64()
}

func (s *Store) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	return s.cmd.SetNX(ctx, key, value, ttl).Result()
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.cmd.Del(ctx, keys...).Err()
}

func (s *Store) IdempotencyKey(scope, id string) string {
	return buildKey(idempotencyPrefix, scope, id)
}

func (s *Store) RateLimitKey(scope string) string {
	return buildKey(rateLimitPrefix, scope)
}

func buildKey(parts ...string) string {
	return keyNamespace + ":" + strings.Join(parts, ":")
}
