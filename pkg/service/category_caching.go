package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/marktplaatser/backend/pkg/model"
	"github.com/redis/go-redis/v9"
)

const catalogCacheKey = "categories:catalog"

// CategoryCaching keeps the flattened catalog in Redis for the length of a
// session. The catalog endpoint is paginated and slow, and it is fetched on
// every page load otherwise. Redis errors are logged, never returned: the
// slower path still works.
type CategoryCaching struct {
	Category

	Redis *redis.Client
	TTL   time.Duration
}

func (cc *CategoryCaching) List(ctx context.Context) ([]model.Category, error) {
	val, err := cc.Redis.Get(ctx, catalogCacheKey).Bytes()
	switch {
	case err == redis.Nil:
		// do nothing
	case err != nil:
		slog.Error("can't get catalog from redis", slog.Any("error", err))

	default:
		var cats []model.Category
		if err := json.Unmarshal(val, &cats); err != nil {
			slog.Error("can't parse cached catalog", slog.Any("error", err))
			break
		}

		return cats, nil
	}

	// slower path - fetch from the marketplace
	cats, err := cc.Category.List(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(cats)
	if err != nil {
		slog.Error("can't marshal catalog for cache", slog.Any("error", err))
		return cats, nil
	}

	if err := cc.Redis.Set(ctx, catalogCacheKey, raw, cc.TTL).Err(); err != nil {
		slog.Error("can't set catalog in redis", slog.Any("error", err))
	}

	return cats, nil
}
