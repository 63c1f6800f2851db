package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	notificationsKeyPrefix = "cache:notifications:"
	channelsKeyPrefix      = "cache:channels:"

	defaultCacheTTL = 10 * time.Minute
)

// Cache stores per-user list views that fan-out invalidates. Values are
// JSON blobs; a miss is (false, nil), never an error.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: defaultCacheTTL}
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, val interface{}) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// DeleteByPrefix scans out and removes every key under prefix. Used when an
// invalidation fans out wider than a known key set.
func (c *Cache) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return c.Delete(ctx, keys...)
}

func NotificationsKey(receiverID uuid.UUID) string {
	return fmt.Sprintf("%s%s", notificationsKeyPrefix, receiverID)
}

func ChannelsKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s%s", channelsKeyPrefix, userID)
}

func ChannelsKeyPrefix() string { return channelsKeyPrefix }
