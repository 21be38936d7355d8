package services

import (
	"context"

	"github.com/owenshen0907/NihonGO/internal/config"
	"github.com/owenshen0907/NihonGO/internal/platform/openai"
	"github.com/owenshen0907/NihonGO/internal/platform/rediscache"
	"github.com/owenshen0907/NihonGO/internal/resolve"
)

// cachedEmbedder satisfies resolve.Embedder. The redis cache is optional;
// a nil cache degrades to straight provider calls.
type cachedEmbedder struct {
	client  openai.Client
	profile config.Profile
	cache   *rediscache.EmbeddingCache
}

func NewCachedEmbedder(client openai.Client, profile config.Profile, cache *rediscache.EmbeddingCache) resolve.Embedder {
	return &cachedEmbedder{client: client, profile: profile, cache: cache}
}

func (e *cachedEmbedder) Embed(ctx context.Context, input string) ([]float32, error) {
	if v := e.cache.Get(ctx, input); v != nil {
		return v, nil
	}
	v, err := e.client.Embed(ctx, e.profile, input)
	if err != nil {
		return nil, err
	}
	e.cache.Put(ctx, input, v)
	return v, nil
}
