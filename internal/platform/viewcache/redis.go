package viewcache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis cachea las vistas en redis, una key por usuario.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, prefix: "views:pets:"}
}

func (c *Redis) Get(ctx context.Context, userID string) ([]byte, bool) {
	payload, err := c.client.Get(ctx, c.prefix+userID).Bytes()
	if err != nil {
		// redis caído o key ausente: tratamos todo como cache miss,
		// la vista se recomputa desde el storage autoritativo
		return nil, false
	}
	return payload, true
}

func (c *Redis) Set(ctx context.Context, userID string, payload []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+userID, payload, ttl).Err()
}

func (c *Redis) Invalidate(ctx context.Context, userID string) error {
	err := c.client.Del(ctx, c.prefix+userID).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

var _ Cache = (*Redis)(nil)
