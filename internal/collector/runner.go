package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

// Runner executes collectors and turns every outcome into a section.
type Runner struct {
	logger      *zap.Logger
	parallelism int
	disabled    []string
	now         func() time.Time
}

type RunnerOption func(*Runner)

// WithParallelism runs up to n collectors at once. 1 is sequential and 0
// runs every collector concurrently.
func WithParallelism(n int) RunnerOption {
	return func(r *Runner) { r.parallelism = n }
}

// WithDisabled skips the given collector ids.
func WithDisabled(ids ...string) RunnerOption {
	return func(r *Runner) { r.disabled = append(r.disabled, ids...) }
}

func WithLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		logger:      zap.NewNop(),
		parallelism: 1,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run instantiates every collector in reg and returns their sections in
// registration order. A failing collector yields an Error section and never
// affects the others.
func (r *Runner) Run(ctx context.Context, reg *Registry, cc model.CollectionContext) []model.Section {
	collectors := reg.Instantiate(r.disabled...)
	sections := make([]model.Section, len(collectors))

	limit := r.parallelism
	if limit <= 0 {
		limit = len(collectors)
	}
	if limit < 2 {
		for i, c := range collectors {
			sections[i] = r.runOne(ctx, c, cc)
		}
		return sections
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, c := range collectors {
		g.Go(func() error {
			sections[i] = r.runOne(ctx, c, cc)
			return nil
		})
	}
	_ = g.Wait()
	return sections
}

func (r *Runner) runOne(ctx context.Context, c Collector, cc model.CollectionContext) model.Section {
	meta := c.Metadata()
	start := r.now()

	section, err := safeCollect(ctx, c, cc)
	elapsed := r.now().Sub(start)

	if err != nil {
		r.logger.Warn("collector failed",
			zap.String("collector", meta.ID),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		section = model.ErrorSection(meta, err.Error())
	} else {
		// Identity always comes from metadata.
		section.ID = meta.ID
		section.Title = meta.Title
		if section.Notes == nil {
			section.Notes = []string{}
		}
		if section.Body == nil {
			section.Body = map[string]any{}
		}
		if section.Status != model.StatusSuccess && section.Summary == nil {
			summary := fmt.Sprintf("%s reported %s status without a summary", meta.Title, section.Status)
			section.Summary = &summary
		}
		r.logger.Debug("collector finished",
			zap.String("collector", meta.ID),
			zap.Duration("duration", elapsed),
			zap.String("status", string(section.Status)))
	}

	section.SetDuration(elapsed)
	return section
}

func safeCollect(ctx context.Context, c Collector, cc model.CollectionContext) (section model.Section, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			section = model.Section{}
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return c.Collect(ctx, cc)
}
