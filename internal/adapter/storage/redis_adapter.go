package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory-api/internal/core/domain"
)

const (
	itemKeyPrefix = "inventory:item:"
	// generations outlive any entry, so a stale reader always sees a bump
	generationTTL = 24 * time.Hour
)

// setIfCurrent writes the entry only while the generation still matches the
// one observed on the cache miss.
var setIfCurrent = redis.NewScript(`
if (redis.call('GET', KEYS[2]) or '0') == ARGV[1] then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
	return 1
end
return 0
`)

type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdapter(client *redis.Client, ttl time.Duration) *RedisAdapter {
	return &RedisAdapter{client: client, ttl: ttl}
}

func itemKey(id int64) string {
	return itemKeyPrefix + strconv.FormatInt(id, 10)
}

func generationKey(id int64) string {
	return itemKey(id) + ":gen"
}

func (r *RedisAdapter) TTL() time.Duration {
	return r.ttl
}

func (r *RedisAdapter) GetItem(ctx context.Context, id int64) (*domain.InventoryItem, int64, error) {
	vals, err := r.client.MGet(ctx, itemKey(id), generationKey(id)).Result()
	if err != nil {
		return nil, 0, err
	}

	var gen int64
	if s, ok := vals[1].(string); ok {
		if gen, err = strconv.ParseInt(s, 10, 64); err != nil {
			return nil, 0, fmt.Errorf("parse generation: %w", err)
		}
	}

	s, ok := vals[0].(string)
	if !ok {
		return nil, gen, nil
	}
	var item domain.InventoryItem
	if err := json.Unmarshal([]byte(s), &item); err != nil {
		return nil, 0, err
	}
	return &item, gen, nil
}

func (r *RedisAdapter) SetItem(ctx context.Context, item domain.InventoryItem, gen int64) error {
	b, err := json.Marshal(item)
	if err != nil {
		return err
	}
	keys := []string{itemKey(item.ID), generationKey(item.ID)}
	return setIfCurrent.Run(ctx, r.client, keys, strconv.FormatInt(gen, 10), b, r.ttl.Milliseconds()).Err()
}

func (r *RedisAdapter) DeleteItem(ctx context.Context, id int64) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, itemKey(id))
		pipe.Incr(ctx, generationKey(id))
		pipe.Expire(ctx, generationKey(id), generationTTL)
		return nil
	})
	return err
}
