package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// TranslationCache stores finished translations keyed by the exact
// (text, source, target) triple. It is optional: a nil *TranslationCache
// is safe to call and behaves as a permanent miss.
type TranslationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTranslationCache(client *redis.Client, ttl time.Duration) *TranslationCache {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &TranslationCache{client: client, ttl: ttl}
}

func key(text, source, target string) string {
	sum := sha256.Sum256([]byte(source + "\x00" + target + "\x00" + text))
	return "translation:" + hex.EncodeToString(sum[:16])
}

// Get returns the cached translation for the triple, if any. Cache
// errors are deliberately indistinguishable from misses.
func (c *TranslationCache) Get(ctx context.Context, text, source, target string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, key(text, source, target)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores a finished translation, best effort.
func (c *TranslationCache) Set(ctx context.Context, text, source, target, translated string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, key(text, source, target), translated, c.ttl)
}
