package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"loan-approval-client/internal/common/logger"
	"loan-approval-client/internal/common/metrics"
)

const keyPrefix = "translation:"

// TranslationCache stores translated text keyed by target language and source hash.
// Redis failures degrade to cache misses.
type TranslationCache struct {
	rdb redis.Cmdable
	ttl time.Duration
	log logger.Logger
}

func NewTranslationCache(rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *TranslationCache {
	return &TranslationCache{
		rdb: rdb,
		ttl: ttl,
		log: log.WithFields(map[string]interface{}{"component": "translation-cache"}),
	}
}

// Key returns the cache key for text translated into lang.
func Key(text, lang string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + lang + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached translation and whether it was found.
func (c *TranslationCache) Get(ctx context.Context, text, lang string) (string, bool) {
	val, err := c.rdb.Get(ctx, Key(text, lang)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.TranslationCacheLookups.WithLabelValues("miss").Inc()
		return "", false
	case err != nil:
		metrics.TranslationCacheLookups.WithLabelValues("error").Inc()
		c.log.Warn("translation cache read failed", map[string]interface{}{
			"error": err.Error(),
			"lang":  lang,
		})
		return "", false
	}
	metrics.TranslationCacheLookups.WithLabelValues("hit").Inc()
	return val, true
}

// Set stores a translation; errors are logged and otherwise ignored.
func (c *TranslationCache) Set(ctx context.Context, text, lang, translated string) {
	if err := c.rdb.Set(ctx, Key(text, lang), translated, c.ttl).Err(); err != nil {
		c.log.Warn("translation cache write failed", map[string]interface{}{
			"error": err.Error(),
			"lang":  lang,
		})
	}
}
