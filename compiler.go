package ggblend

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gg-blend/internal/format"
	"github.com/gogpu/gg-blend/internal/parallel"
)

// Compiler errors.
var (
	// ErrUnknownFormat is returned for a color format without a layout
	// description.
	ErrUnknownFormat = errors.New("ggblend: unknown color format")

	// ErrSpanLength is returned when span lengths disagree or do not hold
	// whole pixels.
	ErrSpanLength = errors.New("ggblend: span length mismatch")

	// ErrSpanKind is returned when a span's element type does not match
	// the variant's format.
	ErrSpanKind = errors.New("ggblend: span element type does not match format")
)

// Compiler builds blend variants and caches them.
//
// A variant is the blend of one render target descriptor into one color
// format. Building one costs a validation and, on first shader request, a
// WGSL emission and a naga compile, so variants are cached by a hash of
// their descriptor.
//
// Compiler is safe for concurrent use. It uses RWMutex with double-check
// locking for efficient reads and safe writes, and tracks hit/miss
// statistics.
type Compiler struct {
	opts options

	// mu protects variants.
	mu       sync.RWMutex
	variants map[uint64]*Variant

	hits   uint64
	misses uint64

	// poolMu protects pool.
	poolMu sync.Mutex
	pool   *parallel.WorkerPool
}

// NewCompiler creates a Compiler with an empty cache.
func NewCompiler(opts ...Option) *Compiler {
	return &Compiler{
		opts:     newOptions(opts),
		variants: make(map[uint64]*Variant),
	}
}

// Compile returns the variant blending render target rt of state into
// color format f.
func (c *Compiler) Compile(state *State, rt int, f gputypes.TextureFormat) (*Variant, error) {
	if state == nil {
		return nil, ErrNilState
	}
	target, err := state.Target(rt)
	if err != nil {
		return nil, err
	}
	return c.CompileTarget(target, f)
}

// CompileTarget returns the variant blending target into color format f.
func (c *Compiler) CompileTarget(target RenderTarget, f gputypes.TextureFormat) (*Variant, error) {
	desc, ok := format.Lookup(f)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}

	key := variantKey(target, desc)

	// Fast path: read lock
	c.mu.RLock()
	if v, ok := c.variants[key]; ok {
		c.mu.RUnlock()
		atomic.AddUint64(&c.hits, 1)
		return v, nil
	}
	c.mu.RUnlock()

	// Slow path: write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.variants[key]; ok {
		atomic.AddUint64(&c.hits, 1)
		return v, nil
	}

	v := newVariant(key, target, desc, c.opts.log())
	c.variants[key] = v
	atomic.AddUint64(&c.misses, 1)

	c.opts.log().Debug("ggblend: compiled variant",
		"format", desc.Name,
		"target", target.String(),
		"key", fmt.Sprintf("%016x", key))

	return v, nil
}

// Stats returns the number of cache hits and misses.
// These values are read atomically and may not be perfectly synchronized.
func (c *Compiler) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// HitRate returns the cache hit rate (0.0 to 1.0).
//
// Returns 0.0 if no requests have been made.
func (c *Compiler) HitRate() float64 {
	hits, misses := c.Stats()
	total := hits + misses
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

// Size returns the number of cached variants.
func (c *Compiler) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.variants)
}

// Clear removes all cached variants and resets statistics.
// Variants already handed out stay usable.
func (c *Compiler) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.variants = make(map[uint64]*Variant)
	atomic.StoreUint64(&c.hits, 0)
	atomic.StoreUint64(&c.misses, 0)
}

// Close stops the worker pool used for image blending. Blends running
// concurrently finish; blends started after Close run on the calling
// goroutine.
func (c *Compiler) Close() {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()

	if c.pool == nil {
		// A closed pool runs work inline.
		c.pool = parallel.NewWorkerPool(1)
	}
	c.pool.Close()
}

// workers returns the image blending pool, starting it on first use.
func (c *Compiler) workers() *parallel.WorkerPool {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()

	if c.pool == nil {
		c.pool = parallel.NewWorkerPool(c.opts.workers)
	}
	return c.pool
}

// variantKey hashes everything a variant's code depends on.
func variantKey(rt RenderTarget, desc format.Description) uint64 {
	h := fnv.New64a()

	hashWriteUint32(h, uint32(desc.Format))
	hashWriteUint32(h, uint32(desc.Kind))
	hashWriteBool(h, rt.Enabled)
	if rt.Enabled {
		// Factors and functions of a disabled target do not affect the result.
		for _, f := range [...]BlendFactor{rt.RGBSrcFactor, rt.AlphaSrcFactor, rt.RGBDstFactor, rt.AlphaDstFactor} {
			hashWriteUint32(h, uint32(f))
		}
		hashWriteUint32(h, uint32(rt.RGBFunc))
		hashWriteUint32(h, uint32(rt.AlphaFunc))
	}
	hashWriteUint32(h, uint32(rt.WriteMask))

	return h.Sum64()
}

// hashWriteUint32 writes a uint32 to the hash.
func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

// hashWriteBool writes a bool to the hash.
func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}
