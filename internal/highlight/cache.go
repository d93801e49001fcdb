package highlight

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/zjrosen/xshell/internal/cachemanager"
	"github.com/zjrosen/xshell/internal/log"
)

// DefaultCacheTTL is how long an unused block's spans stay cached.
const DefaultCacheTTL = 5 * time.Minute

type cachedBlock struct {
	text  string
	spans []Span
}

// Cached memoises an engine's Highlight results per block text. Highlight
// is a pure function of the block and the frozen rules, so cached spans never
// go stale.
type Cached struct {
	engine *Engine
	ttl    time.Duration
	cache  cachemanager.CacheManager[string, cachedBlock]
	reader *cachemanager.ReadThroughCache[string, cachedBlock, string]
}

// NewCached wraps engine with an in-memory span cache.
func NewCached(engine *Engine, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	cache := cachemanager.NewInMemoryCacheManager[string, cachedBlock]("highlight:"+engine.name, ttl, 2*ttl)
	c := &Cached{engine: engine, ttl: ttl, cache: cache}
	c.reader = cachemanager.NewReadThroughCache(cache, func(_ context.Context, block string) (cachedBlock, error) {
		return cachedBlock{text: block, spans: engine.Highlight(block)}, nil
	}, false)
	return c
}

var _ Highlighter = (*Cached)(nil)

func blockKey(block string) string {
	return strconv.FormatUint(xxhash.Sum64String(block), 16)
}

// Highlight returns the cached spans for block, computing them on a miss.
func (c *Cached) Highlight(block string) []Span {
	ctx := context.Background()
	key := blockKey(block)
	entry, _ := c.reader.GetWithRefresh(ctx, key, block, c.ttl)
	if entry.text != block {
		log.Debug(log.CatCache, "block hash collision", "key", key)
		entry, _ = c.reader.Refresh(ctx, key, block, c.ttl)
	}
	return slices.Clone(entry.spans)
}

// Render styles block using cached spans.
func (c *Cached) Render(block string) string {
	return c.engine.RenderSpans(block, c.Highlight(block))
}

// Engine returns the wrapped engine.
func (c *Cached) Engine() *Engine {
	return c.engine
}

// Len returns the number of cached blocks.
func (c *Cached) Len() int {
	return c.cache.Len()
}

// Flush drops every cached block.
func (c *Cached) Flush() {
	_ = c.cache.Flush(context.Background())
}
