package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"commute-route-service/internal/domain"
)

// RedisConfig describes the redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to redis and pings it once.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("redis address is empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisRouteCache keeps routes as JSON strings under route:state:{user_id}.
type RedisRouteCache struct {
	client redis.Cmdable
	closer func() error
	ttl    time.Duration
	loc    *time.Location
}

// NewRedisRouteCache wraps client. Times are read back as wall clock in loc.
func NewRedisRouteCache(client *redis.Client, loc *time.Location) *RedisRouteCache {
	if loc == nil {
		loc = time.UTC
	}
	return &RedisRouteCache{client: client, closer: client.Close, ttl: TTL, loc: loc}
}

// Set overwrites the user's route and resets its TTL.
func (c *RedisRouteCache) Set(ctx context.Context, userID string, r domain.ResolvedRoute) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("route cache: empty user id")
	}
	value, err := json.Marshal(toDTO(r))
	if err != nil {
		return fmt.Errorf("encode route: %w", err)
	}
	if err := c.client.Set(ctx, Key(userID), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", Key(userID), err)
	}
	return nil
}

// Get returns the user's route, or found=false when the key is absent or expired.
func (c *RedisRouteCache) Get(ctx context.Context, userID string) (domain.ResolvedRoute, bool, error) {
	raw, err := c.client.Get(ctx, Key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ResolvedRoute{}, false, nil
	}
	if err != nil {
		return domain.ResolvedRoute{}, false, fmt.Errorf("redis get %s: %w", Key(userID), err)
	}

	var dto routeDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return domain.ResolvedRoute{}, false, fmt.Errorf("decode route %s: %w", Key(userID), err)
	}
	r, err := fromDTO(dto, c.loc)
	if err != nil {
		return domain.ResolvedRoute{}, false, fmt.Errorf("decode route %s: %w", Key(userID), err)
	}
	return r, true, nil
}

// Ping checks the redis connection.
func (c *RedisRouteCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (c *RedisRouteCache) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer()
}
