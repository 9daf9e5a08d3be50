package cache

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/types"
)

const redisKeyPrefix = "plateful:"

// Redis is the shared EntryCache for multi-process deployments. It keeps the
// same TTL and invalidation contract as the memory cache; Redis expiry
// enforces the freshness windows.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Cache failures are deliberately non-fatal: a miss is always a valid
// answer, so errors are logged and swallowed.

func (r *Redis) GetHistory(ctx context.Context, key HistoryKey) (*types.HistoryPage, bool) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key.String()).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[Cache] redis get failed: %v", err)
		}
		return nil, false
	}
	var page types.HistoryPage
	if err := json.Unmarshal(data, &page); err != nil {
		log.Printf("[Cache] corrupt history slot %s: %v", key.String(), err)
		return nil, false
	}
	return &page, true
}

func (r *Redis) PutHistory(ctx context.Context, key HistoryKey, page *types.HistoryPage) {
	data, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key.String(), data, HistoryTTL).Err(); err != nil {
		log.Printf("[Cache] redis set failed: %v", err)
	}
}

func (r *Redis) GetEntry(ctx context.Context, id uuid.UUID, withImage bool) (*models.FoodEntry, bool) {
	data, err := r.client.Get(ctx, redisKeyPrefix+entryKey(id, withImage)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[Cache] redis get failed: %v", err)
		}
		return nil, false
	}
	var entry models.FoodEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	return &entry, true
}

func (r *Redis) PutEntry(ctx context.Context, id uuid.UUID, withImage bool, entry *models.FoodEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+entryKey(id, withImage), data, EntryTTL).Err(); err != nil {
		log.Printf("[Cache] redis set failed: %v", err)
	}
}

func (r *Redis) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	pattern := redisKeyPrefix + historyPrefix(userID) + "*"
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("[Cache] redis scan failed: %v", err)
		return
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			log.Printf("[Cache] redis del failed: %v", err)
		}
	}
}

func (r *Redis) InvalidateEntry(ctx context.Context, id uuid.UUID) {
	keys := []string{
		redisKeyPrefix + entryKey(id, true),
		redisKeyPrefix + entryKey(id, false),
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[Cache] redis del failed: %v", err)
	}
}
