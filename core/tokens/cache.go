package tokens

import (
	"context"
	"errors"
	"sync"

	"Sonicbar/model"
)

// CachedStore keeps the token set in memory in front of another Store.
// Load hits the backing store only until something is cached; Set lets a
// watcher push changes made by other processes.
type CachedStore struct {
	inner Store

	mu     sync.RWMutex
	tokens *model.TokenSet
	loaded bool
}

func NewCachedStore(inner Store) *CachedStore {
	return &CachedStore{inner: inner}
}

func (c *CachedStore) Load(ctx context.Context) (*model.TokenSet, error) {
	c.mu.RLock()
	if c.loaded {
		ts := c.tokens
		c.mu.RUnlock()
		if ts == nil {
			return nil, ErrNoTokens
		}
		cp := *ts
		return &cp, nil
	}
	c.mu.RUnlock()

	ts, err := c.inner.Load(ctx)
	if err != nil && !errors.Is(err, ErrNoTokens) {
		return nil, err
	}
	c.Set(ts)
	if ts == nil {
		return nil, ErrNoTokens
	}
	return ts, nil
}

func (c *CachedStore) Save(ctx context.Context, tokens *model.TokenSet) error {
	if err := c.inner.Save(ctx, tokens); err != nil {
		return err
	}
	c.Set(tokens)
	return nil
}

func (c *CachedStore) Clear(ctx context.Context) error {
	if err := c.inner.Clear(ctx); err != nil {
		return err
	}
	c.Set(nil)
	return nil
}

// Set replaces the cached token set; nil means logged out.
func (c *CachedStore) Set(ts *model.TokenSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts != nil {
		cp := *ts
		ts = &cp
	}
	c.tokens = ts
	c.loaded = true
}

var _ Store = (*CachedStore)(nil)
