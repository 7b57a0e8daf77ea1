package benchmark

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// LatencyConfig holds the configuration for a sampled-latency run.
type LatencyConfig struct {
	// MaxSize is how many elements to grow the structure to.
	MaxSize int `yaml:"max_size"`
	// MeasureInterval is how many insertions pass between sampling
	// checkpoints.
	MeasureInterval int `yaml:"measure_interval"`
	// ProbesPerInterval is how many timed insertions are averaged at each
	// checkpoint.
	ProbesPerInterval int `yaml:"probes_per_interval"`
	// Window is the moving-average smoothing window applied to the
	// sampled curve.
	Window int `yaml:"window"`
	// KeyRange bounds the random keys, exclusive.
	KeyRange int64 `yaml:"key_range"`
	// Seed drives the random key stream.
	Seed int64 `yaml:"seed"`
}

func (c LatencyConfig) withDefaults() LatencyConfig {
	if c.MaxSize <= 0 {
		c.MaxSize = 1000000
	}
	if c.MeasureInterval <= 0 {
		c.MeasureInterval = 10000
	}
	if c.ProbesPerInterval <= 0 {
		c.ProbesPerInterval = 100
	}
	if c.Window <= 0 {
		c.Window = 5
	}
	if c.KeyRange <= 0 {
		c.KeyRange = 1000000
	}
	return c
}

// LatencyCurve is a sampled per-insert latency curve: Points[i] is the
// structure size at which Seconds[i] was measured.
type LatencyCurve struct {
	Points  []int     `json:"points"`
	Seconds []float64 `json:"seconds"`
}

// SampleInsertLatency grows store to MaxSize elements, timing the average
// individual insertion at every checkpoint and smoothing the resulting
// curve with a moving average.
func (r *Runner) SampleInsertLatency(ctx context.Context, store Store, config LatencyConfig) (LatencyCurve, error) {
	config = config.withDefaults()
	rng := rand.New(rand.NewSource(config.Seed))

	ctx, span := r.tracer.Start(ctx, "benchmark.latency")
	defer span.End()

	var curve LatencyCurve
	size := 0
	for size < config.MaxSize {
		if size%config.MeasureInterval == 0 {
			var total time.Duration
			for p := 0; p < config.ProbesPerInterval; p++ {
				key := rng.Int63n(config.KeyRange)
				start := time.Now()
				store.Insert(key)
				total += time.Since(start)
			}
			avg := total.Seconds() / float64(config.ProbesPerInterval)
			curve.Points = append(curve.Points, size)
			curve.Seconds = append(curve.Seconds, avg)
			size += config.ProbesPerInterval

			r.logger.Debug("latency checkpoint",
				zap.String("structure", store.Name()),
				zap.Int("size", size),
				zap.Float64("avg_seconds", avg),
			)
			if err := ctx.Err(); err != nil {
				return curve, err
			}
			continue
		}

		store.Insert(rng.Int63n(config.KeyRange))
		size++
	}

	curve.Seconds = MovingAverage(curve.Seconds, config.Window)
	return curve, nil
}

// MovingAverage smooths values with a trailing window average; the first
// window-1 entries average over the shorter available prefix.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		var sum float64
		for _, v := range values[start : i+1] {
			sum += v
		}
		out[i] = sum / float64(i-start+1)
	}
	return out
}
