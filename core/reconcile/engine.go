package reconcile

import (
	"context"
	"fmt"
	"sort"

	"dirsync/core/client"
	"dirsync/core/metacache"
	"dirsync/core/models"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine mirrors a remote listing into a Destination.
type Engine struct {
	fetcher Fetcher
	dest    Destination
	cache   metacache.Store
	logger  *zap.Logger
	opts    Options
}

// NewEngine creates an engine. cache may be nil, in which case decisions are
// made against the destination alone. Cache entries are kept under the
// destination's scope.
func NewEngine(fetcher Fetcher, dest Destination, cache metacache.Store, logger *zap.Logger, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if cache != nil {
		cache = metacache.Scoped(cache, dest.Scope())
	}
	return &Engine{fetcher: fetcher, dest: dest, cache: cache, logger: logger, opts: opts}
}

// Sync fetches the refreshed listing under prefix, then plans and applies
// it. A failed listing is returned as is; per-file failures are aggregated
// into the returned error alongside a complete report.
func (e *Engine) Sync(ctx context.Context, prefix string) (*Plan, *Report, error) {
	records, err := e.fetcher.ListFiles(ctx, prefix, true)
	if err != nil {
		return nil, nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	e.logger.Info("Fetched listing", zap.String("prefix", prefix), zap.Int("records", len(records)))

	plan, err := e.Plan(ctx, records)
	if err != nil {
		return nil, nil, err
	}
	if e.opts.DryRun {
		return plan, &Report{}, nil
	}
	report, err := e.Apply(ctx, plan)
	return plan, report, err
}

// Plan decides an action for every record. Records for the same path
// collapse into the last one.
func (e *Engine) Plan(ctx context.Context, records []models.FileRecord) (*Plan, error) {
	byPath := make(map[string]models.FileRecord, len(records))
	for _, rec := range records {
		byPath[rec.Path] = rec
	}

	plan := &Plan{Actions: make([]Action, 0, len(byPath))}
	for _, rec := range byPath {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		plan.Summary.Total++

		if !IsSafePath(rec.Path) {
			plan.Rejected = append(plan.Rejected, &TransferError{Path: rec.Path, Err: ErrUnsafePath})
			continue
		}

		local, err := e.dest.Stat(ctx, rec.Path)
		if err != nil {
			plan.Rejected = append(plan.Rejected, &TransferError{Path: rec.Path, Err: fmt.Errorf("stat: %w", err)})
			continue
		}

		var cached *models.FileState
		if e.cache != nil && local != nil {
			cached, err = e.cache.Get(ctx, rec.Path)
			if err != nil {
				e.logger.Warn("Cache lookup failed", zap.String("path", rec.Path), zap.Error(err))
				cached = nil
			}
		}

		decision, reason := decide(rec, local, cached)
		plan.Actions = append(plan.Actions, Action{Decision: decision, Record: rec, Reason: reason})
		switch decision {
		case DecisionDownload:
			plan.Summary.Downloads++
			plan.Summary.DownloadBytes += rec.Size
		case DecisionDeleteLocal:
			plan.Summary.Deletes++
		default:
			plan.Summary.Skips++
		}
	}

	sort.Slice(plan.Actions, func(i, j int) bool {
		return plan.Actions[i].Record.Path < plan.Actions[j].Record.Path
	})
	sort.Slice(plan.Rejected, func(i, j int) bool {
		return plan.Rejected[i].Path < plan.Rejected[j].Path
	})
	plan.Summary.Rejected = len(plan.Rejected)
	return plan, nil
}

type outcome struct {
	bytes int64
	err   error
}

// Apply executes a plan. Every action runs regardless of failures in
// others; the returned error combines every *TransferError, rejected
// paths included.
func (e *Engine) Apply(ctx context.Context, plan *Plan) (*Report, error) {
	results := make([]outcome, len(plan.Actions))

	var g errgroup.Group
	g.SetLimit(e.opts.Workers)
	for i := range plan.Actions {
		action := plan.Actions[i]
		g.Go(func() error {
			n, err := e.apply(ctx, action)
			if err != nil {
				err = &TransferError{Path: action.Record.Path, Decision: action.Decision, Err: err}
				e.logger.Error("Action failed",
					zap.String("path", action.Record.Path),
					zap.String("decision", string(action.Decision)),
					zap.Error(err),
				)
			}
			results[i] = outcome{bytes: n, err: err}
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{}
	var errs error
	for _, rejected := range plan.Rejected {
		report.Failed++
		errs = multierr.Append(errs, rejected)
	}
	for i, res := range results {
		if res.err != nil {
			report.Failed++
			errs = multierr.Append(errs, res.err)
			continue
		}
		switch plan.Actions[i].Decision {
		case DecisionDownload:
			report.Downloaded++
			report.Bytes += res.bytes
		case DecisionDeleteLocal:
			report.Deleted++
		default:
			report.Skipped++
		}
	}

	e.logger.Info("Sync applied",
		zap.Int("downloaded", report.Downloaded),
		zap.Int("deleted", report.Deleted),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int64("bytes", report.Bytes),
	)
	return report, errs
}

func (e *Engine) apply(ctx context.Context, action Action) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	rec := action.Record
	if !IsSafePath(rec.Path) {
		return 0, ErrUnsafePath
	}

	switch action.Decision {
	case DecisionDownload:
		return e.download(ctx, rec)
	case DecisionDeleteLocal:
		if err := e.dest.Remove(ctx, rec.Path); err != nil {
			return 0, err
		}
		e.logger.Info("Deleted", zap.String("path", rec.Path))
		e.forget(ctx, rec.Path)
		return 0, nil
	case DecisionSkip:
		if rec.Deleted {
			e.forget(ctx, rec.Path)
		} else {
			e.remember(ctx, rec)
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unknown decision %q", action.Decision)
	}
}

func (e *Engine) download(ctx context.Context, rec models.FileRecord) (n int64, err error) {
	if e.opts.Finished != nil {
		defer func() { e.opts.Finished(rec.Path, err) }()
	}

	var opts []client.FetchOption
	if e.opts.Progress != nil {
		progress := e.opts.Progress
		opts = append(opts, client.WithProgress(func(current, total int64) {
			progress(rec.Path, current, total)
		}))
	}

	t, err := e.fetcher.Fetch(ctx, rec.Path, 0, opts...)
	if err != nil {
		return 0, err
	}
	defer t.Close()

	if err := e.dest.Write(ctx, rec.Path, t, rec.State()); err != nil {
		return 0, err
	}
	current, _ := t.Progress()
	e.logger.Info("Downloaded", zap.String("path", rec.Path), zap.Int64("bytes", current))
	e.remember(ctx, rec)
	return current, nil
}

func (e *Engine) remember(ctx context.Context, rec models.FileRecord) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Put(ctx, rec.Path, rec.State()); err != nil {
		e.logger.Warn("Cache update failed", zap.String("path", rec.Path), zap.Error(err))
	}
}

func (e *Engine) forget(ctx context.Context, path string) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Delete(ctx, path); err != nil {
		e.logger.Warn("Cache delete failed", zap.String("path", path), zap.Error(err))
	}
}

// Errors splits an error returned by Apply or Sync into its per-file
// failures.
func Errors(err error) []*TransferError {
	var out []*TransferError
	for _, e := range multierr.Errors(err) {
		if te, ok := e.(*TransferError); ok {
			out = append(out, te)
		}
	}
	return out
}
