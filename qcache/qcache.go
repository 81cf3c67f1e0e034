// Package qcache caches parsed query documents keyed by source text, so
// repeated executions of the same operation skip gqlparser's parse step.
package qcache

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// Cache wraps a fixed-size hashicorp/golang-lru Cache of parsed
// documents. A nil *Cache (or one built with size <= 0) is a no-op:
// Get always misses, Add is a no-op — this is how Schema disables
// caching when WithCacheSize(0) is called.
type Cache struct {
	inner *lru.Cache[string, *ast.QueryDocument]
}

// New builds a Cache holding up to size parsed documents. size <= 0
// returns a disabled (nil-inner) Cache rather than an error, so callers
// can pass a configured-but-zero value straight through.
func New(size int) (*Cache, error) {
	if size <= 0 {
		return &Cache{}, nil
	}
	inner, err := lru.New[string, *ast.QueryDocument](size)
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

// Get looks up the parsed document for source, if cached.
func (c *Cache) Get(source string) (*ast.QueryDocument, bool) {
	if c == nil || c.inner == nil {
		return nil, false
	}
	return c.inner.Get(source)
}

// Add stores doc under source, evicting the least-recently-used entry
// if the cache is at capacity.
func (c *Cache) Add(source string, doc *ast.QueryDocument) {
	if c == nil || c.inner == nil {
		return
	}
	c.inner.Add(source, doc)
}
