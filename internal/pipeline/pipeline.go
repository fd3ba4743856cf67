package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/vizdata-etl-service/internal/domain"
	"github.com/couchcryptid/vizdata-etl-service/internal/observability"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// SourceOpener resolves a source URI to a readable stream.
type SourceOpener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// SnapshotLoader publishes a finished snapshot to a destination.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, snap domain.Snapshot) error
}

// Sources names the input URIs. An empty Recipes URI disables the recipe
// graph; empty county URIs disable the choropleth.
type Sources struct {
	Recipes    string
	Worship    string
	Population string
	Topology   string
}

func (s Sources) recipesEnabled() bool { return s.Recipes != "" }

func (s Sources) countiesEnabled() bool {
	return s.Worship != "" || s.Population != "" || s.Topology != ""
}

// Options configures a Pipeline.
type Options struct {
	Sources              Sources
	MinSharedIngredients int
	// Schedule is a standard cron expression or descriptor. Empty runs once.
	Schedule string
}

// Pipeline loads the sources, derives the datasets and publishes a snapshot
// per run.
type Pipeline struct {
	opener  SourceOpener
	loader  SnapshotLoader
	logger  *slog.Logger
	metrics *observability.Metrics
	opts    Options

	latest atomic.Pointer[domain.Snapshot]
}

// New creates a Pipeline. The loader may be nil, in which case snapshots are
// only held in memory.
func New(opener SourceOpener, loader SnapshotLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) (*Pipeline, error) {
	src := opts.Sources
	if !src.recipesEnabled() && !src.countiesEnabled() {
		return nil, errors.New("no dataset sources configured")
	}
	if src.countiesEnabled() && (src.Worship == "" || src.Population == "" || src.Topology == "") {
		return nil, errors.New("county metrics need worship, population and topology sources")
	}
	if opts.MinSharedIngredients < 0 {
		return nil, fmt.Errorf("min shared ingredients must be non-negative, got %d", opts.MinSharedIngredients)
	}
	if opts.Schedule != "" {
		if _, err := cron.ParseStandard(opts.Schedule); err != nil {
			return nil, fmt.Errorf("invalid schedule %q: %w", opts.Schedule, err)
		}
	}

	return &Pipeline{
		opener:  opener,
		loader:  loader,
		logger:  logger,
		metrics: metrics,
		opts:    opts,
	}, nil
}

// CheckReadiness returns nil once a run has succeeded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.latest.Load() == nil {
		return errors.New("no snapshot has been published yet")
	}
	return nil
}

// Latest returns the snapshot of the last successful run.
func (p *Pipeline) Latest() (domain.Snapshot, bool) {
	snap := p.latest.Load()
	if snap == nil {
		return domain.Snapshot{}, false
	}
	return *snap, true
}

// RunOnce performs one complete run. On failure the previous snapshot stays
// current.
func (p *Pipeline) RunOnce(ctx context.Context) (domain.Snapshot, error) {
	start := time.Now()
	snap := domain.NewSnapshot(uuid.NewString())
	logger := p.logger.With("run_id", snap.RunID)

	if err := p.derive(ctx, &snap); err != nil {
		p.metrics.RunsTotal.WithLabelValues("failure").Inc()
		return domain.Snapshot{}, err
	}

	if p.loader != nil {
		if err := p.loader.LoadSnapshot(ctx, snap); err != nil {
			p.metrics.RunsTotal.WithLabelValues("failure").Inc()
			return domain.Snapshot{}, fmt.Errorf("publish snapshot: %w", err)
		}
	}

	p.latest.Store(&snap)
	p.recordSuccess(snap, time.Since(start))

	sum := snap.Summary()
	logger.Info("snapshot published",
		"recipe_nodes", sum.RecipeNodes,
		"recipe_links", sum.RecipeLinks,
		"county_metrics", sum.CountyMetrics,
		"duration", time.Since(start),
	)
	return snap, nil
}

// Run performs a run immediately and then on every schedule tick until the
// context is cancelled. Ticks that fire while a run is active are skipped.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "schedule", p.opts.Schedule)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	p.runLogged(ctx)

	if p.opts.Schedule == "" {
		<-ctx.Done()
		p.logger.Info("pipeline stopping", "reason", ctx.Err())
		return nil
	}

	cl := cronLogger{p.logger}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(p.opts.Schedule, func() { p.runLogged(ctx) }); err != nil {
		return fmt.Errorf("schedule pipeline: %w", err)
	}
	c.Start()

	<-ctx.Done()
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	<-c.Stop().Done()
	return nil
}

func (p *Pipeline) runLogged(ctx context.Context) {
	if _, err := p.RunOnce(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("pipeline run failed", "error", err, "malformed_input", domain.IsMalformed(err))
	}
}

func (p *Pipeline) recordSuccess(snap domain.Snapshot, elapsed time.Duration) {
	sum := snap.Summary()
	p.metrics.RunsTotal.WithLabelValues("success").Inc()
	p.metrics.RunDuration.Observe(elapsed.Seconds())
	p.metrics.LastSuccess.Set(float64(snap.GeneratedAt.Unix()))
	p.metrics.DatasetRecords.WithLabelValues("recipe_nodes").Set(float64(sum.RecipeNodes))
	p.metrics.DatasetRecords.WithLabelValues("recipe_links").Set(float64(sum.RecipeLinks))
	p.metrics.DatasetRecords.WithLabelValues("county_metrics").Set(float64(sum.CountyMetrics))
}

// cronLogger routes scheduler logs through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
