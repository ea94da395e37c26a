package sni

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/sni/mempool"
)

// PostCache is an in-memory TTL cache in front of a mempool.Source. Posts are
// keyed by locale and slug; not-found results always reach the source.
type PostCache struct {
	mu     sync.RWMutex
	src    mempool.Source
	ttl    time.Duration
	now    func() time.Time
	posts  map[mempool.Params]cacheEntry[mempool.Post]
	lists  map[string]cacheEntry[[]mempool.Post]
	params cacheEntry[[]mempool.Params]
	gen    uint64 // bumped by Invalidate
}

type cacheEntry[T any] struct {
	value   T
	fetched time.Time
}

var _ mempool.Source = (*PostCache)(nil)

// NewPostCache creates a PostCache backed by src.
func NewPostCache(src mempool.Source, ttl time.Duration) *PostCache {
	c := &PostCache{src: src, ttl: ttl, now: time.Now}
	c.reset()
	return c
}

func (c *PostCache) reset() {
	c.posts = make(map[mempool.Params]cacheEntry[mempool.Post])
	c.lists = make(map[string]cacheEntry[[]mempool.Post])
	c.params = cacheEntry[[]mempool.Params]{}
}

func (c *PostCache) fresh(fetched time.Time) bool {
	return !fetched.IsZero() && c.now().Sub(fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load. Loads
// already in flight return their result but do not store it.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.reset()
	c.gen++
	c.mu.Unlock()
}

// GetPost returns a post from the cache, loading it from the source when
// missing or stale.
func (c *PostCache) GetPost(ctx context.Context, slug, locale string) (mempool.Post, error) {
	key := mempool.Params{Slug: slug, Locale: locale}
	c.mu.RLock()
	e, ok := c.posts[key]
	gen := c.gen
	c.mu.RUnlock()
	if ok && c.fresh(e.fetched) {
		return e.value, nil
	}

	post, err := c.src.GetPost(ctx, slug, locale)
	if err != nil {
		return mempool.Post{}, err
	}
	c.mu.Lock()
	if c.gen == gen {
		c.posts[key] = cacheEntry[mempool.Post]{value: post, fetched: c.now()}
	}
	c.mu.Unlock()
	return post, nil
}

// GetParams returns the cached static params.
func (c *PostCache) GetParams(ctx context.Context) ([]mempool.Params, error) {
	c.mu.RLock()
	e := c.params
	gen := c.gen
	c.mu.RUnlock()
	if c.fresh(e.fetched) {
		return e.value, nil
	}

	params, err := c.src.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.gen == gen {
		c.params = cacheEntry[[]mempool.Params]{value: params, fetched: c.now()}
	}
	c.mu.Unlock()
	return params, nil
}

// ListPosts returns the cached section index of locale.
func (c *PostCache) ListPosts(ctx context.Context, locale string) ([]mempool.Post, error) {
	c.mu.RLock()
	e, ok := c.lists[locale]
	gen := c.gen
	c.mu.RUnlock()
	if ok && c.fresh(e.fetched) {
		return e.value, nil
	}

	posts, err := c.src.ListPosts(ctx, locale)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.gen == gen {
		c.lists[locale] = cacheEntry[[]mempool.Post]{value: posts, fetched: c.now()}
	}
	c.mu.Unlock()
	return posts, nil
}
