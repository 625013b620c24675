package driver

import (
	"context"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"girder/internal/adapter"
)

// Result is the outcome of translating one input file. Results come back
// in input order regardless of completion order.
type Result struct {
	Path      string
	Unit      *Unit
	Err       error
	Cached    bool
	FuncCount int
	Elapsed   time.Duration
}

// Options configures a batch translation run.
type Options struct {
	// Jobs bounds worker parallelism; <= 0 means GOMAXPROCS.
	Jobs int
	// Cache, when non-nil, short-circuits unchanged inputs on their
	// content digest. Cache hits carry no Unit.
	Cache *DiskCache
	// Logger for per-file debug output; nil means silent.
	Logger *zap.Logger
	// Events receives progress notifications when non-nil. The channel is
	// not closed by TranslateAll.
	Events chan<- Event
}

// TranslateAll translates a batch of adapter files in parallel. Translation
// failures are per-file results, not batch failures; the returned error is
// reserved for cancellation.
func TranslateAll(ctx context.Context, inputs []string, opts Options) ([]Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(inputs), 1)))

	for i, path := range inputs {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = translateOne(path, opts.Cache, logger, opts.Events)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// translateOne runs the load-translate pipeline for one file, consulting
// the verdict cache first. Slot indices are unique per goroutine, so the
// results slice needs no locking.
func translateOne(path string, cache *DiskCache, logger *zap.Logger, events chan<- Event) Result {
	start := time.Now()
	res := Result{Path: path}

	emit(events, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		res.Elapsed = time.Since(start)
		emit(events, Event{File: path, Stage: StageLoad, Status: StatusError})
		return res
	}

	key := HashBytes(data)
	if cache != nil {
		var payload DiskPayload
		if hit, err := cache.Get(key, &payload); err == nil && hit {
			res.Cached = true
			res.Err = payloadVerdict(&payload)
			res.FuncCount = payload.FuncCount
			res.Elapsed = time.Since(start)
			logger.Debug("cache hit",
				zap.String("file", path),
				zap.Bool("ok", payload.OK))
			status := StatusCached
			if res.Err != nil {
				status = StatusError
			}
			emit(events, Event{File: path, Stage: StageTranslate, Status: status})
			return res
		}
	}

	emit(events, Event{File: path, Stage: StageTranslate, Status: StatusWorking})
	m, err := adapter.Decode(data)
	if err != nil {
		res.Err = err
	} else {
		res.Unit, res.Err = TranslateModule(m)
	}
	if res.Unit != nil {
		res.FuncCount = len(res.Unit.Functions)
	}
	res.Elapsed = time.Since(start)

	if cache != nil {
		module := ""
		if m != nil {
			module = m.Name
		}
		if err := cache.Put(key, verdictPayload(module, res.Unit, res.Err)); err != nil {
			logger.Warn("cache write failed", zap.String("file", path), zap.Error(err))
		}
	}

	if res.Err != nil {
		logger.Debug("translation failed",
			zap.String("file", path),
			zap.Error(res.Err),
			zap.Duration("elapsed", res.Elapsed))
		emit(events, Event{File: path, Stage: StageTranslate, Status: StatusError})
	} else {
		logger.Debug("translated",
			zap.String("file", path),
			zap.Int("functions", res.FuncCount),
			zap.Duration("elapsed", res.Elapsed))
		emit(events, Event{File: path, Stage: StageTranslate, Status: StatusDone})
	}
	return res
}
