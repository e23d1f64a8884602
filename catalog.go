package areacodes

import (
	"context"
	"errors"
	"io"
	"runtime"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"
)

// Config contains configuration options for Catalog initialization.
type Config struct {
	Loader      Loader             // Dataset loader; overrides Fs/DataDir when set
	Fs          afero.Fs           // Filesystem holding the sources (default: embedded data)
	DataDir     string             // Directory of the sources on Fs (default: "data")
	Parallelism int                // Max sources decoded at once (default: GOMAXPROCS)
	Logger      logrus.FieldLogger // Logger (default: discard)
	Metrics     *Metrics           // Optional metrics
}

// Option is a functional option for configuring a Catalog.
type Option func(*Config)

// WithLoader uses a custom Loader instead of the file loader.
func WithLoader(l Loader) Option {
	return func(c *Config) {
		c.Loader = l
	}
}

// WithFs reads sources from dir on the given afero filesystem.
func WithFs(fsys afero.Fs, dir string) Option {
	return func(c *Config) {
		c.Fs = fsys
		c.DataDir = dir
	}
}

// WithDataDir reads sources from a directory on the local disk instead of
// the embedded dataset.
func WithDataDir(dir string) Option {
	return func(c *Config) {
		c.Fs = afero.NewOsFs()
		c.DataDir = dir
	}
}

// WithParallelism bounds how many sources are decoded concurrently.
func WithParallelism(n int) Option {
	return func(c *Config) {
		c.Parallelism = n
	}
}

// WithLogger sets the logger used for load and cache events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	return &Config{
		Fs:          afero.FromIOFS{FS: bundledData},
		DataDir:     bundledDir,
		Parallelism: runtime.GOMAXPROCS(0),
		Logger:      discardLogger(),
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Catalog caches the area code dataset and answers queries over it.
// Safe for concurrent use.
//
// The full dataset and each per-country result are loaded lazily, at most
// once per generation: concurrent callers that miss the cache share a single
// in-flight load. Clear drops everything and starts a new generation.
type Catalog struct {
	loader  Loader
	log     logrus.FieldLogger
	metrics *Metrics

	flight singleflight.Group

	mu        sync.Mutex
	gen       uint64     // bumped by Clear
	all       []AreaCode // full dataset snapshot, valid when allLoaded
	allLoaded bool
	byCountry map[string][]AreaCode // canonical country id -> records
}

// New creates a Catalog. Nothing is loaded until the first query.
//
//	c := areacodes.New()
//	codes, err := c.Lookup(ctx, "212")
func New(opts ...Option) *Catalog {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = discardLogger()
	}

	loader := cfg.Loader
	if loader == nil {
		fl := NewFileLoader(cfg.Fs, cfg.DataDir)
		fl.parallelism = cfg.Parallelism
		fl.log = cfg.Logger
		loader = fl
	}

	return &Catalog{
		loader:    loader,
		log:       cfg.Logger,
		metrics:   cfg.Metrics,
		byCountry: make(map[string][]AreaCode),
	}
}

// All returns every record in the dataset, loading it on first use.
// The returned slice is a copy and may be modified by the caller.
func (c *Catalog) All(ctx context.Context) ([]AreaCode, error) {
	snap, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(snap), nil
}

// snapshot returns the shared, read-only full dataset.
func (c *Catalog) snapshot(ctx context.Context) ([]AreaCode, error) {
	c.mu.Lock()
	if c.allLoaded {
		snap := c.all
		c.mu.Unlock()
		c.metrics.ObserveCache(loadKindAll, true)
		return snap, nil
	}
	gen := c.gen
	c.mu.Unlock()
	c.metrics.ObserveCache(loadKindAll, false)

	v, err := c.do(ctx, flightKey(gen, loadKindAll, ""), func(lctx context.Context) (any, error) {
		codes, err := c.load(lctx, loadKindAll, "")
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.all = codes
			c.allLoaded = true
		}
		c.mu.Unlock()
		c.metrics.SetRecordsLoaded(len(codes))
		return codes, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]AreaCode), nil
}

// Codes returns the records for a country. id is matched case-insensitively
// and legacy aliases resolve to their ISO id ("UK" is "GB"). When no
// per-country source exists the full dataset is filtered instead, which also
// allows lookups by country name ("germany").
//
// Results are cached per canonical id, including empty ones.
func (c *Catalog) Codes(ctx context.Context, id string) ([]AreaCode, error) {
	key := canonicalCountry(id)
	if key == "" {
		return []AreaCode{}, nil
	}

	c.mu.Lock()
	if codes, ok := c.byCountry[key]; ok {
		c.mu.Unlock()
		c.metrics.ObserveCache(loadKindCountry, true)
		return slices.Clone(codes), nil
	}
	gen := c.gen
	c.mu.Unlock()
	c.metrics.ObserveCache(loadKindCountry, false)

	v, err := c.do(ctx, flightKey(gen, loadKindCountry, key), func(lctx context.Context) (any, error) {
		codes, err := c.load(lctx, loadKindCountry, key)
		if errors.Is(err, ErrSourceNotFound) {
			c.log.WithField("country", key).Debug("no per-country source, filtering full dataset")
			var all []AreaCode
			all, err = c.snapshot(lctx)
			if err == nil {
				codes = filterByCountry(all, key)
			}
		}
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.byCountry[key] = codes
		}
		c.mu.Unlock()
		return codes, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]AreaCode)), nil
}

// Clear empties all caches. Loads already in flight complete for their
// current callers but their results are not cached.
func (c *Catalog) Clear() {
	c.mu.Lock()
	c.gen++
	c.all = nil
	c.allLoaded = false
	c.byCountry = make(map[string][]AreaCode)
	c.mu.Unlock()
	c.log.Debug("area code caches cleared")
}

// do runs fn once per key across concurrent callers. fn runs detached from
// the caller's cancellation because other callers may be waiting on it;
// each caller stops waiting when its own ctx is done.
func (c *Catalog) do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	lctx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (any, error) {
		return fn(lctx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// load performs one physical load and records it.
func (c *Catalog) load(ctx context.Context, kind, id string) ([]AreaCode, error) {
	start := time.Now()
	var (
		codes []AreaCode
		err   error
	)
	if kind == loadKindAll {
		codes, err = c.loader.LoadAll(ctx)
	} else {
		codes, err = c.loader.LoadCountry(ctx, id)
	}
	c.metrics.ObserveLoad(kind, start, err)

	entry := c.log.WithField("kind", kind)
	if id != "" {
		entry = entry.WithField("country", id)
	}
	switch {
	case err == nil:
		entry.WithField("records", len(codes)).Debug("area codes loaded")
	case errors.Is(err, ErrSourceNotFound):
		// expected; Codes falls back to the full dataset
	default:
		entry.WithError(err).Warn("area code load failed")
	}
	return codes, err
}

func flightKey(gen uint64, kind, id string) string {
	return strconv.FormatUint(gen, 10) + "/" + kind + "/" + id
}
