// Package rediscache provides an optional Redis-backed embedding cache.
// When REDIS_ADDR is unset the cache is nil and every method is a no-op,
// so callers never need to branch on availability.
package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

const embeddingTTL = 7 * 24 * time.Hour

type EmbeddingCache struct {
	log *logger.Logger
	rdb *redis.Client
}

// NewEmbeddingCache returns nil when REDIS_ADDR is not configured.
func NewEmbeddingCache(log *logger.Logger) *EmbeddingCache {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		log.Info("Embedding cache disabled, REDIS_ADDR not set")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	log.Info("Embedding cache enabled", "addr", addr)
	return &EmbeddingCache{log: log.With("component", "embedding_cache"), rdb: rdb}
}

func key(input string) string {
	sum := sha256.Sum256([]byte(input))
	return "emb:" + hex.EncodeToString(sum[:])
}

// Get returns the cached vector for input, or nil on miss or any error.
// Cache errors are logged and swallowed; the caller falls through to the provider.
func (c *EmbeddingCache) Get(ctx context.Context, input string) []float32 {
	if c == nil {
		return nil
	}
	raw, err := c.rdb.Get(ctx, key(input)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("Embedding cache read failed", "error", err.Error())
		}
		return nil
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil
	}
	return vec
}

func (c *EmbeddingCache) Put(ctx context.Context, input string, vec []float32) {
	if c == nil || len(vec) == 0 {
		return
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(input), raw, embeddingTTL).Err(); err != nil {
		c.log.Warn("Embedding cache write failed", "error", err.Error())
	}
}

func (c *EmbeddingCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
