package provider

import (
	"context"
	"sync"

	"github.com/depsolve/resolvercore/version"
	"github.com/depsolve/resolvercore/versionset"
	"golang.org/x/sync/singleflight"
)

// Cache decorates a Provider with per-key caching, guarding the cache
// with single-flight so concurrent queries for the same key block on
// one underlying computation rather than each hitting the wrapped
// provider.
//
// The wrapped Container's Dependencies are cached too, per
// (package, version), independent of whatever caching policy the
// wrapped provider itself applies.
type Cache struct {
	inner Provider

	group      singleflight.Group
	mu         sync.RWMutex
	containers map[ID]*cachedContainer
}

// NewCache wraps inner with the per-key single-flight cache described
// above.
func NewCache(inner Provider) *Cache {
	return &Cache{inner: inner, containers: make(map[ID]*cachedContainer)}
}

func (c *Cache) GetContainer(ctx context.Context, id ID) (Container, error) {
	c.mu.RLock()
	if cc, ok := c.containers[id]; ok {
		c.mu.RUnlock()
		return cc, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(string(id), func() (interface{}, error) {
		c.mu.RLock()
		if cc, ok := c.containers[id]; ok {
			c.mu.RUnlock()
			return cc, nil
		}
		c.mu.RUnlock()

		inner, err := c.inner.GetContainer(ctx, id)
		if err != nil {
			return nil, err
		}
		cc := &cachedContainer{inner: inner, deps: make(map[string][]versionset.Constraint)}

		c.mu.Lock()
		c.containers[id] = cc
		c.mu.Unlock()
		return cc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Container), nil
}

// cachedContainer caches Dependencies() results keyed by the
// version's string form, guarded by its own single-flight group so
// concurrent Dependencies(v) calls for the same version coalesce too.
type cachedContainer struct {
	inner Container

	group singleflight.Group
	mu    sync.RWMutex
	deps  map[string][]versionset.Constraint
}

func (c *cachedContainer) Versions() []version.Version {
	return c.inner.Versions()
}

func (c *cachedContainer) Dependencies(v version.Version) ([]versionset.Constraint, error) {
	key := v.String()

	c.mu.RLock()
	if d, ok := c.deps[key]; ok {
		c.mu.RUnlock()
		return d, nil
	}
	c.mu.RUnlock()

	res, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		if d, ok := c.deps[key]; ok {
			c.mu.RUnlock()
			return d, nil
		}
		c.mu.RUnlock()

		d, err := c.inner.Dependencies(v)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.deps[key] = d
		c.mu.Unlock()
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]versionset.Constraint), nil
}
