package backend

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

func (a *Api) statsKey() string {
	return "exercise-stats::" + a.cachePrefix
}

// dailySummaryKey is a hash, one field per date.
func (a *Api) dailySummaryKey() string {
	return "daily-summary::" + a.cachePrefix
}

// cacheGet reads a cached response into out. A field is used for hash keys.
func (a *Api) cacheGet(ctx context.Context, kind, key, field string, out any) bool {
	if a.redisClient == nil {
		return false
	}

	var (
		cached string
		err    error
	)
	if field == "" {
		cached, err = a.redisClient.Get(ctx, key).Result()
	} else {
		cached, err = a.redisClient.HGet(ctx, key, field).Result()
	}

	result := "hit"
	defer func() {
		if a.metricsManager != nil {
			a.metricsManager.CounterBackendCacheHits.WithLabelValues(kind, result).Inc()
		}
	}()

	if err != nil {
		result = "miss"
		if !errors.Is(err, redis.Nil) {
			result = "error"
			log.Errorf("get cached %s [%s]: %s", kind, key, err)
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), out); err != nil {
		result = "error"
		log.Errorf("unmarshal cached %s [%s]: %s", kind, key, err)
		return false
	}

	return true
}

func (a *Api) cacheSet(ctx context.Context, key, field string, value any) {
	if a.redisClient == nil {
		return
	}

	valueBytes, err := json.Marshal(value)
	if err != nil {
		log.Errorf("marshal value for cache [%s]: %s", key, err)
		return
	}

	if field == "" {
		if err := a.redisClient.Set(ctx, key, string(valueBytes), a.cacheTTL).Err(); err != nil {
			log.Errorf("cache set [%s]: %s", key, err)
		}
		return
	}

	if err := a.redisClient.HSet(ctx, key, field, string(valueBytes)).Err(); err != nil {
		log.Errorf("cache hset [%s/%s]: %s", key, field, err)
		return
	}
	if err := a.redisClient.Expire(ctx, key, a.cacheTTL).Err(); err != nil {
		log.Errorf("cache expire [%s]: %s", key, err)
	}
}

// invalidateCache drops all cached aggregates after a successful mutation.
func (a *Api) invalidateCache(ctx context.Context) {
	if a.redisClient == nil {
		return
	}
	if err := a.redisClient.Del(ctx, a.statsKey(), a.dailySummaryKey()).Err(); err != nil {
		log.Errorf("invalidate exercises cache: %s", err)
	}
}
