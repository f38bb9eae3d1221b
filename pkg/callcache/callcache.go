// Package callcache memoizes parse results for repeated call strings.
//
// Both successful calls and parse errors are cached. Concurrent lookups of
// the same uncached input share a single parse. Every call handed out is a
// deep copy, so callers may mutate what they get back.
package callcache

import (
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/thomasrohde/fncall/pkg/metrics"
	"github.com/thomasrohde/fncall/pkg/parser"
)

// DefaultSize is the number of entries kept when no size is configured.
const DefaultSize = 1024

// ParseFunc produces a parse result for an input.
type ParseFunc func(input string, autoQuote bool) (*parser.Call, error)

type key struct {
	input     string
	autoQuote bool
}

type entry struct {
	call *parser.Call
	err  error
}

// Cache is a bounded LRU of parse results. A Cache with size 0 passes every
// lookup straight through to the parse function.
type Cache struct {
	parse   ParseFunc
	entries *lru.Cache[key, entry]
	group   singleflight.Group
	metrics *metrics.Metrics
}

// Option configures a Cache.
type Option func(*Cache)

// WithParseFunc replaces parser.ParseFuncStr as the source of results.
func WithParseFunc(fn ParseFunc) Option {
	return func(c *Cache) {
		if fn != nil {
			c.parse = fn
		}
	}
}

// WithMetrics records hits and misses in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// New creates a cache holding up to size results. Negative sizes are
// treated as 0.
func New(size int, opts ...Option) (*Cache, error) {
	c := &Cache{parse: parser.ParseFuncStr}
	for _, opt := range opts {
		opt(c)
	}
	if size <= 0 {
		return c, nil
	}
	entries, err := lru.New[key, entry](size)
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// Enabled reports whether results are being retained.
func (c *Cache) Enabled() bool {
	return c.entries != nil
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	if c.entries == nil {
		return 0
	}
	return c.entries.Len()
}

// Purge drops every cached result.
func (c *Cache) Purge() {
	if c.entries != nil {
		c.entries.Purge()
	}
}

// Get returns the parse result for input, computing it on a miss. The
// boolean reports whether the result came from the cache.
func (c *Cache) Get(input string, autoQuote bool) (*parser.Call, bool, error) {
	if c.entries == nil {
		call, err := c.parse(input, autoQuote)
		return call, false, err
	}

	k := key{input: input, autoQuote: autoQuote}
	if e, ok := c.entries.Get(k); ok {
		c.metrics.CacheHit()
		return cloneCall(e.call), true, e.err
	}
	c.metrics.CacheMiss()

	v, _, _ := c.group.Do(flightKey(k), func() (any, error) {
		if e, ok := c.entries.Get(k); ok {
			return e, nil
		}
		call, err := c.parse(input, autoQuote)
		e := entry{call: call, err: err}
		c.entries.Add(k, e)
		return e, nil
	})
	e := v.(entry)
	return cloneCall(e.call), false, e.err
}

func flightKey(k key) string {
	return strconv.FormatBool(k.autoQuote) + ":" + k.input
}

func cloneCall(call *parser.Call) *parser.Call {
	if call == nil {
		return nil
	}
	return call.Clone()
}
