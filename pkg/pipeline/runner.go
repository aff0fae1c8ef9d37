package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/algotrace/pkg/cache"
	"github.com/matzehuels/algotrace/pkg/observability"
	"github.com/matzehuels/algotrace/pkg/trace"
)

// DefaultTTL is how long cached documents and renders live.
const DefaultTTL = 24 * time.Hour

// Cache key types reported to the observability hooks.
const (
	keyTypeTrace  = "trace"
	keyTypeRender = "render"
)

// Runner encapsulates engine execution with caching.
// Both CLI and API use it so that a run is keyed, cached and measured the
// same way everywhere.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store run results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// Result contains the outputs of a run.
type Result struct {
	// Document is the finished trace.
	Document *trace.Document

	// Key is the cache key of the document; renders of its steps are keyed
	// from it.
	Key string

	// CacheHit reports whether the document came from the cache.
	CacheHit bool

	// Duration is the time spent producing the document.
	Duration time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// Execute validates opts and runs the engine, serving the document from the
// cache when an identical run was stored before.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		observability.Engine().OnRunComplete(ctx, opts.Engine, opts.Operation, 0, 0, err)
		return nil, err
	}
	logger := opts.Logger
	start := time.Now()
	key := r.Keyer.TraceKey(opts.Engine, opts.Operation, opts)

	if !opts.Refresh {
		if doc, ok := r.cached(ctx, key); ok {
			logger.Debug("trace cache hit", "engine", opts.Engine, "operation", opts.Operation, "key", key)
			return &Result{Document: doc, Key: key, CacheHit: true, Duration: time.Since(start)}, nil
		}
	}

	observability.Engine().OnRunStart(ctx, opts.Engine, opts.Operation)
	doc, err := Run(opts)
	elapsed := time.Since(start)
	if err != nil {
		observability.Engine().OnRunComplete(ctx, opts.Engine, opts.Operation, 0, elapsed, err)
		return nil, err
	}
	observability.Engine().OnRunComplete(ctx, opts.Engine, opts.Operation, doc.Steps.Len(), elapsed, nil)

	logger.Info("recorded trace",
		"engine", opts.Engine,
		"operation", opts.Operation,
		"steps", doc.Steps.Len(),
		"duration", elapsed)

	r.store(ctx, key, doc)
	return &Result{Document: doc, Key: key, Duration: elapsed}, nil
}

func (r *Runner) cached(ctx context.Context, key string) (*trace.Document, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeTrace)
		return nil, false
	}
	doc, err := trace.ReadJSON(bytes.NewReader(data))
	if err != nil {
		// A corrupt entry is recomputed and overwritten.
		observability.Cache().OnCacheMiss(ctx, keyTypeTrace)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeTrace)
	return doc, true
}

func (r *Runner) store(ctx context.Context, key string, doc *trace.Document) {
	var buf bytes.Buffer
	if err := trace.WriteJSON(doc, &buf); err != nil {
		r.Logger.Warn("encode trace for cache", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, buf.Bytes(), r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeTrace, buf.Len())
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
