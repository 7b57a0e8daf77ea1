package benchmark

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nishant-716/structbench/pkg/telemetry"
)

// RunnerConfig holds the configuration for a benchmark Runner.
type RunnerConfig struct {
	// OpsPerSecond throttles the generated load; zero means unthrottled.
	OpsPerSecond float64 `yaml:"ops_per_second"`
	// ProgressEvery controls how many operations pass between progress
	// log lines. Defaults to 100000.
	ProgressEvery int `yaml:"progress_every"`
}

// PhaseResult holds the wall-clock time of one timed bulk pass over a
// dataset.
type PhaseResult struct {
	Insertion time.Duration
	Search    time.Duration
	Deletion  time.Duration
	Ops       int
}

// Runner times insertion, search, and deletion phases of a Store over a
// dataset, publishing per-operation metrics through OpenTelemetry.
type Runner struct {
	logger        *zap.Logger
	tracer        trace.Tracer
	limiter       *rate.Limiter
	progressEvery int

	opsCounter    metric.Int64Counter
	phaseDuration metric.Float64Histogram
}

// NewRunner creates a Runner bound to the given logger and telemetry.
func NewRunner(config RunnerConfig, logger *zap.Logger, tel *telemetry.Telemetry) (*Runner, error) {
	opsCounter, err := tel.Meter.Int64Counter("structbench.operations",
		metric.WithDescription("Total data structure operations executed."),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operations counter: %w", err)
	}
	phaseDuration, err := tel.Meter.Float64Histogram("structbench.phase.duration",
		metric.WithDescription("Wall-clock duration of a benchmark phase."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create phase duration histogram: %w", err)
	}

	var limiter *rate.Limiter
	if config.OpsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.OpsPerSecond), 1)
	}
	progressEvery := config.ProgressEvery
	if progressEvery <= 0 {
		progressEvery = 100000
	}

	return &Runner{
		logger:        logger,
		tracer:        tel.Tracer,
		limiter:       limiter,
		progressEvery: progressEvery,
		opsCounter:    opsCounter,
		phaseDuration: phaseDuration,
	}, nil
}

// Run executes the three timed phases against store: bulk insertion of the
// dataset, a search for every key, then deletion of every key in ascending
// order.
func (r *Runner) Run(ctx context.Context, store Store, keys []int64) (PhaseResult, error) {
	result := PhaseResult{Ops: len(keys)}
	attrs := metric.WithAttributes(attribute.String("structure", store.Name()))

	ctx, span := r.tracer.Start(ctx, "benchmark.run")
	defer span.End()

	insertion, err := r.timePhase(ctx, "insertion", store.Name(), keys, func(k int64) {
		store.Insert(k)
	})
	if err != nil {
		return result, err
	}
	result.Insertion = insertion
	r.opsCounter.Add(ctx, int64(len(keys)), attrs)

	search, err := r.timePhase(ctx, "search", store.Name(), keys, func(k int64) {
		store.Search(k)
	})
	if err != nil {
		return result, err
	}
	result.Search = search
	r.opsCounter.Add(ctx, int64(len(keys)), attrs)

	sorted := append([]int64(nil), keys...)
	slices.Sort(sorted)
	deletion, err := r.timePhase(ctx, "deletion", store.Name(), sorted, func(k int64) {
		store.Delete(k)
	})
	if err != nil {
		return result, err
	}
	result.Deletion = deletion
	r.opsCounter.Add(ctx, int64(len(keys)), attrs)

	r.logger.Info("benchmark complete",
		zap.String("structure", store.Name()),
		zap.Int("dataset_size", len(keys)),
		zap.Duration("insertion", result.Insertion),
		zap.Duration("search", result.Search),
		zap.Duration("deletion", result.Deletion),
	)
	return result, nil
}

// timePhase runs op over every key under the configured throttle and
// returns the elapsed wall-clock time. Throttle waits count toward the
// measured duration.
func (r *Runner) timePhase(ctx context.Context, phase, structure string, keys []int64, op func(int64)) (time.Duration, error) {
	ctx, span := r.tracer.Start(ctx, "benchmark."+phase)
	defer span.End()

	start := time.Now()
	for i, k := range keys {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return 0, fmt.Errorf("rate limiter interrupted during %s: %w", phase, err)
			}
		}
		op(k)
		if (i+1)%r.progressEvery == 0 {
			r.logger.Debug("phase progress",
				zap.String("structure", structure),
				zap.String("phase", phase),
				zap.Int("completed", i+1),
			)
		}
	}
	elapsed := time.Since(start)

	r.phaseDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("structure", structure),
		attribute.String("phase", phase),
	))
	return elapsed, nil
}
