// Package runtime provides the top-level parse orchestrator.
package runtime

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/thomasrohde/fncall/pkg/callcache"
	"github.com/thomasrohde/fncall/pkg/diagnostics"
	"github.com/thomasrohde/fncall/pkg/formatter"
	"github.com/thomasrohde/fncall/pkg/metrics"
	"github.com/thomasrohde/fncall/pkg/parser"
)

// DefaultWorkers is the batch concurrency when none is configured.
const DefaultWorkers = 4

// Runtime wires together the parser, result cache, metrics, logging and
// tracing.
type Runtime struct {
	autoQuote bool
	cacheSize int
	cache     *callcache.Cache
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	runID     string
	workers   int
	trace     func(event TraceEvent)
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithAutoQuote toggles the auto-quote tier.
func WithAutoQuote(on bool) Option {
	return func(rt *Runtime) {
		rt.autoQuote = on
	}
}

// WithCacheSize sets the number of memoized results. 0 disables caching.
func WithCacheSize(n int) Option {
	return func(rt *Runtime) {
		rt.cacheSize = n
	}
}

// WithCache uses an existing cache instead of building one.
func WithCache(c *callcache.Cache) Option {
	return func(rt *Runtime) {
		rt.cache = c
	}
}

// WithMetrics records parse outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(rt *Runtime) {
		rt.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithRunID sets the run ID for trace events and logs.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithWorkers sets the batch concurrency.
func WithWorkers(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.workers = n
		}
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// New creates a new Runtime with the given options.
// By default auto-quoting is on, results are cached and logging is disabled.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		autoQuote: true,
		cacheSize: callcache.DefaultSize,
		logger:    zerolog.Nop(),
		workers:   DefaultWorkers,
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.runID == "" {
		rt.runID = uuid.NewString()
	}
	if rt.cache == nil {
		c, err := callcache.New(rt.cacheSize, callcache.WithMetrics(rt.metrics))
		if err != nil {
			rt.logger.Warn().Err(err).Int("size", rt.cacheSize).Msg("result cache disabled")
			c, _ = callcache.New(0)
		}
		rt.cache = c
	}
	rt.logger = rt.logger.With().Str("run_id", rt.runID).Logger()
	return rt
}

// RunID returns the run ID attached to logs and trace events.
func (rt *Runtime) RunID() string {
	return rt.runID
}

// AutoQuote reports whether the auto-quote tier is enabled.
func (rt *Runtime) AutoQuote() bool {
	return rt.autoQuote
}

// Parse parses a single call string.
func (rt *Runtime) Parse(ctx context.Context, input string) (*parser.Call, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	call, _, err := rt.parse(input)
	return call, err
}

func (rt *Runtime) parse(input string) (*parser.Call, bool, error) {
	start := time.Now()
	call, cached, err := rt.cache.Get(input, rt.autoQuote)

	tier := metrics.TierStrict
	data := map[string]any{"input": input, "cached": cached}
	if err != nil {
		pe, ok := parser.AsParseError(err)
		if !ok {
			return nil, cached, err
		}
		if pe.AutoQuoted() {
			tier = metrics.TierAutoQuote
		}
		rt.metrics.ObserveParse(tier, pe.Code())
		data["code"] = pe.Code()
		rt.logger.Debug().
			Str("input", input).
			Str("code", pe.Code()).
			Str("tier", tier).
			Bool("cached", cached).
			Msg(pe.Error())
	} else {
		if call.AutoQuoted() {
			tier = metrics.TierAutoQuote
			rt.logger.Debug().Str("input", input).Msg("parsed after auto-quoting")
		}
		rt.metrics.ObserveParse(tier, "")
		data["name"] = call.Name
	}
	data["tier"] = tier
	data["durationUs"] = time.Since(start).Microseconds()
	rt.emit(TraceParse, data)
	return call, cached, err
}

// Check parses input and returns its diagnostics; an empty slice means the
// call is valid.
func (rt *Runtime) Check(ctx context.Context, input string) ([]diagnostics.Diagnostic, error) {
	_, err := rt.Parse(ctx, input)
	if err == nil {
		return nil, nil
	}
	if pe, ok := parser.AsParseError(err); ok {
		return []diagnostics.Diagnostic{pe.Diag}, nil
	}
	return nil, err
}

// Format parses input and returns its canonical form.
func (rt *Runtime) Format(ctx context.Context, input string) (string, error) {
	call, err := rt.Parse(ctx, input)
	if err != nil {
		return "", err
	}
	return formatter.Format(call), nil
}

// Result is the outcome of one call string in a batch.
type Result struct {
	Index  int                     `json:"index" yaml:"index"`
	Input  string                  `json:"input" yaml:"input"`
	Call   *parser.Call            `json:"call,omitempty" yaml:"call,omitempty"`
	Error  *diagnostics.Diagnostic `json:"error,omitempty" yaml:"error,omitempty"`
	Cached bool                    `json:"-" yaml:"-"`
}

// OK reports whether the call string parsed.
func (r Result) OK() bool {
	return r.Error == nil
}

// Batch parses inputs concurrently. Results are in input order; a rejected
// input is reported in its Result and does not stop the batch. The returned
// error is non-nil only when ctx is cancelled.
func (rt *Runtime) Batch(ctx context.Context, inputs []string) ([]Result, error) {
	start := time.Now()
	rt.metrics.ObserveBatch(len(inputs))
	rt.emit(TraceRunStart, map[string]any{"inputs": len(inputs), "workers": rt.workers})

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(rt.workers)

	results := make([]Result, len(inputs))
	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			call, cached, err := rt.parse(input)
			res := Result{Index: i, Input: input, Call: call, Cached: cached}
			if err != nil {
				pe, ok := parser.AsParseError(err)
				if !ok {
					return err
				}
				diag := pe.Diag
				res.Error = &diag
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		rt.logger.Warn().Err(err).Msg("batch aborted")
		return nil, err
	}

	summary := Summarize(results)
	rt.emit(TraceRunEnd, map[string]any{
		"total":      summary.Total,
		"ok":         summary.OK,
		"failed":     summary.Failed,
		"durationMs": time.Since(start).Milliseconds(),
	})
	rt.logger.Info().
		Int("total", summary.Total).
		Int("ok", summary.OK).
		Int("failed", summary.Failed).
		Int("cached", summary.Cached).
		Dur("elapsed", time.Since(start)).
		Msg("batch complete")
	return results, nil
}

// Summary counts batch outcomes.
type Summary struct {
	Total  int            `json:"total" yaml:"total"`
	OK     int            `json:"ok" yaml:"ok"`
	Failed int            `json:"failed" yaml:"failed"`
	Cached int            `json:"cached" yaml:"cached"`
	ByCode map[string]int `json:"byCode,omitempty" yaml:"byCode,omitempty"`
}

// Summarize counts the outcomes in results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results), ByCode: map[string]int{}}
	for _, r := range results {
		if r.Cached {
			s.Cached++
		}
		if r.OK() {
			s.OK++
			continue
		}
		s.Failed++
		s.ByCode[r.Error.Code]++
	}
	return s
}
