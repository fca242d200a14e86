package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fintrackhq/fintrack/internal/domain/transaction"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis caches summaries across processes. Errors degrade to a miss
// and are logged at debug level only.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewRedis(cfg RedisConfig, ttl time.Duration, log *slog.Logger) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Redis{rdb: rdb, ttl: ttl, log: log}
}

func summaryKey(userID string) string {
	return "summary:" + userID
}

func (c *Redis) Get(ctx context.Context, userID string) (transaction.Summary, bool) {
	raw, err := c.rdb.Get(ctx, summaryKey(userID)).Bytes()

	if err != nil {
		if err != redis.Nil {
			c.log.Debug("summary cache get failed", "err", err)
		}
		return transaction.Summary{}, false
	}

	var s transaction.Summary

	if err := json.Unmarshal(raw, &s); err != nil {
		c.log.Debug("summary cache decode failed", "err", err)
		return transaction.Summary{}, false
	}

	return s, true
}

func (c *Redis) Set(ctx context.Context, userID string, s transaction.Summary) {
	raw, err := json.Marshal(s)

	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, summaryKey(userID), raw, c.ttl).Err(); err != nil {
		c.log.Debug("summary cache set failed", "err", err)
	}
}

func (c *Redis) Invalidate(ctx context.Context, userID string) {
	if err := c.rdb.Del(ctx, summaryKey(userID)).Err(); err != nil {
		c.log.Debug("summary cache invalidate failed", "err", err)
	}
}

// Ping checks connectivity for the readiness probe.
func (c *Redis) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}
