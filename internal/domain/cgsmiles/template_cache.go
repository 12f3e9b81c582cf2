package cgsmiles

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/turtacn/cgsmiles/internal/domain/molgraph"
)

// CacheObserver is notified of every template lookup.
type CacheObserver func(hit bool)

// TemplateCache memoizes parsed fragment templates. Entries are keyed by
// name and definition, so independent molecules may share one cache even when
// they reuse a fragment name for different SMILES. Stored templates are never
// mutated; callers instantiate them with CopyWithOffset.
type TemplateCache struct {
	templates sync.Map
	group     singleflight.Group
	size      atomic.Int64
	observer  CacheObserver
}

// NewTemplateCache returns an empty cache. observer may be nil.
func NewTemplateCache(observer CacheObserver) *TemplateCache {
	return &TemplateCache{observer: observer}
}

// Get returns the template for def, parsing it on first use. Concurrent
// misses for the same definition parse it once.
func (c *TemplateCache) Get(def FragmentDef) (*molgraph.Graph, error) {
	key := def.key()
	if v, ok := c.templates.Load(key); ok {
		c.observe(true)
		return v.(*molgraph.Graph), nil
	}
	c.observe(false)

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.templates.Load(key); ok {
			return v, nil
		}
		g, err := ParseFragment(def.Name, def.SMILES)
		if err != nil {
			return nil, err
		}
		if _, loaded := c.templates.LoadOrStore(key, g); !loaded {
			c.size.Add(1)
		}
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*molgraph.Graph), nil
}

// Len returns the number of cached templates.
func (c *TemplateCache) Len() int {
	return int(c.size.Load())
}

func (c *TemplateCache) observe(hit bool) {
	if c.observer != nil {
		c.observer(hit)
	}
}
