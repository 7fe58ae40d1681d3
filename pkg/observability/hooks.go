// Package observability provides hooks for metrics, tracing, and logging.
//
// Consumers register hooks at startup to receive events about conversions
// and mesh cache traffic without the core packages depending on any
// particular metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnReadStart(ctx, path)
//	// ... read model ...
//	observability.Pipeline().OnReadComplete(ctx, path, links, joints, duration, err)
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the conversion pipeline.
type PipelineHooks interface {
	OnReadStart(ctx context.Context, path string)
	OnReadComplete(ctx context.Context, path string, links, joints int, duration time.Duration, err error)

	OnWriteStart(ctx context.Context, path, format string)
	OnWriteComplete(ctx context.Context, path, format string, files int, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations. keyType names what was
// cached, e.g. "mesh".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnReadStart(context.Context, string)                                     {}
func (NoopPipelineHooks) OnReadComplete(context.Context, string, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnWriteStart(context.Context, string, string)                          {}
func (NoopPipelineHooks) OnWriteComplete(context.Context, string, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// CacheCounter is a CacheHooks that counts events. It is safe for
// concurrent use.
type CacheCounter struct {
	hits, misses, sets, bytes atomic.Int64
}

func (c *CacheCounter) OnCacheHit(context.Context, string)  { c.hits.Add(1) }
func (c *CacheCounter) OnCacheMiss(context.Context, string) { c.misses.Add(1) }
func (c *CacheCounter) OnCacheSet(_ context.Context, _ string, size int) {
	c.sets.Add(1)
	c.bytes.Add(int64(size))
}

// Hits returns the number of cache hits recorded.
func (c *CacheCounter) Hits() int64 { return c.hits.Load() }

// Misses returns the number of cache misses recorded.
func (c *CacheCounter) Misses() int64 { return c.misses.Load() }

// Sets returns the number of writes and the bytes written.
func (c *CacheCounter) Sets() (n, bytes int64) { return c.sets.Load(), c.bytes.Load() }

// Reset zeroes the counters.
func (c *CacheCounter) Reset() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.sets.Store(0)
	c.bytes.Store(0)
}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
}
