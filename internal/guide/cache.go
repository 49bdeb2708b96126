package guide

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of characters kept in memory.
const DefaultCacheSize = 128

// CachedProvider memoizes successful loads of another provider.
type CachedProvider struct {
	next  Provider
	cache *lru.Cache[string, *Path]
}

// NewCachedProvider wraps next with an LRU of the given size.
func NewCachedProvider(next Provider, size int) (*CachedProvider, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *Path](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create guide cache: %w", err)
	}
	return &CachedProvider{next: next, cache: cache}, nil
}

// Load implements Provider.
func (c *CachedProvider) Load(ctx context.Context, character string) (*Path, error) {
	if path, ok := c.cache.Get(character); ok {
		return path, nil
	}
	path, err := c.next.Load(ctx, character)
	if err != nil {
		return nil, err
	}
	c.cache.Add(character, path)
	return path, nil
}

// Len returns the number of cached characters.
func (c *CachedProvider) Len() int {
	return c.cache.Len()
}
