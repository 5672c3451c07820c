// internal/engine/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jborgese/benefit-finder-sub003/internal/common/logger"
	"github.com/jborgese/benefit-finder-sub003/internal/common/metrics"
	"github.com/jborgese/benefit-finder-sub003/internal/common/observability"
	"github.com/jborgese/benefit-finder-sub003/internal/engine/categorize"
	"github.com/jborgese/benefit-finder-sub003/internal/engine/program"
	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

const defaultMaxConcurrency = 8

// Orchestrator drives one evaluation run: every enabled program's rule
// set is evaluated against a consistent profile snapshot, raw results
// are categorized into buckets, and the run always completes with a
// result for every program regardless of individual failures.
type Orchestrator struct {
	evaluator   *program.Evaluator
	categorizer *categorize.Categorizer
	obs         *observability.Observability
	logger      logger.Logger
	concurrency int
	now         func() time.Time
	newRunID    func() string
}

type Option func(*Orchestrator)

func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

func WithObservability(obs *observability.Observability) Option {
	return func(o *Orchestrator) { o.obs = obs }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithRunIDSource(f func() string) Option {
	return func(o *Orchestrator) { o.newRunID = f }
}

func New(evaluator *program.Evaluator, categorizer *categorize.Categorizer, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		evaluator:   evaluator,
		categorizer: categorizer,
		logger:      log,
		concurrency: defaultMaxConcurrency,
		now:         time.Now,
		newRunID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run evaluates the profile against every given rule set. Results keep
// the rule-set order regardless of which evaluation finishes first.
func (o *Orchestrator) Run(ctx context.Context, profile *models.Profile, ruleSets []*models.RuleSet) (*models.EligibilityResults, error) {
	runID := o.newRunID()
	started := o.now()

	o.logger.Info("starting evaluation run", map[string]interface{}{
		"runId":     runID,
		"profileId": profile.ID,
		"programs":  len(ruleSets),
	})
	metrics.EvaluationsActive.Inc()
	defer metrics.EvaluationsActive.Dec()

	raws := make([]*models.RawProgramResult, len(ruleSets))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.concurrency)
	for i, ruleSet := range ruleSets {
		if ruleSet == nil {
			continue
		}
		i, ruleSet := i, ruleSet
		group.Go(func() error {
			raws[i] = o.evaluator.Evaluate(groupCtx, profile, ruleSet)
			return nil
		})
	}
	// Evaluations never return errors; the group is used for bounded
	// concurrency and context plumbing only.
	if err := group.Wait(); err != nil {
		return nil, err
	}

	results := o.categorizer.Categorize(runID, raws, o.now().UTC())

	elapsed := o.now().Sub(started)
	status := runStatus(results)
	metrics.EvaluationDuration.WithLabelValues(status).Observe(elapsed.Seconds())
	if o.obs != nil {
		o.obs.RecordRunProcessed(ctx, status)
		o.obs.RecordRunDuration(ctx, elapsed, status)
	}

	o.logger.Info("evaluation run complete", map[string]interface{}{
		"runId":         runID,
		"totalPrograms": results.TotalPrograms,
		"qualified":     len(results.Qualified),
		"likely":        len(results.Likely),
		"maybe":         len(results.Maybe),
		"notQualified":  len(results.NotQualified),
		"durationMs":    elapsed.Milliseconds(),
	})
	return results, nil
}

func runStatus(results *models.EligibilityResults) string {
	if len(results.Qualified) > 0 || len(results.Likely) > 0 {
		return "matched"
	}
	if len(results.Maybe) > 0 {
		return "uncertain"
	}
	return "unmatched"
}
