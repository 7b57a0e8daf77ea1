package benchmark

import (
	"runtime"

	"go.uber.org/zap"
)

// MemoryUsage is a sampled heap-growth curve taken while a dataset is bulk
// inserted into a structure. Samples are heap deltas in MiB relative to the
// baseline taken before the first insert; the last sample is the final
// footprint.
type MemoryUsage struct {
	Structure   string    `json:"structure"`
	DatasetSize int       `json:"dataset_size"`
	SamplesMiB  []float64 `json:"samples_mib"`
}

// FinalMiB returns the heap delta after the whole dataset was inserted.
func (m MemoryUsage) FinalMiB() float64 {
	if len(m.SamplesMiB) == 0 {
		return 0
	}
	return m.SamplesMiB[len(m.SamplesMiB)-1]
}

// MeasureMemory inserts keys into store, sampling the heap at roughly ten
// checkpoints. The garbage collector is run before the baseline and before
// each sample so the deltas track live structure memory rather than
// allocator slack.
func MeasureMemory(store Store, keys []int64, logger *zap.Logger) MemoryUsage {
	usage := MemoryUsage{Structure: store.Name(), DatasetSize: len(keys)}

	interval := len(keys) / 10
	if interval == 0 {
		interval = 1
	}

	baseline := heapMiB()
	for i, k := range keys {
		store.Insert(k)
		if i%interval == 0 {
			usage.SamplesMiB = append(usage.SamplesMiB, heapMiB()-baseline)
		}
	}
	usage.SamplesMiB = append(usage.SamplesMiB, heapMiB()-baseline)

	logger.Info("memory measurement complete",
		zap.String("structure", store.Name()),
		zap.Int("dataset_size", len(keys)),
		zap.Float64("final_mib", usage.FinalMiB()),
	)
	return usage
}

func heapMiB() float64 {
	runtime.GC()
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return float64(stats.HeapAlloc) / (1024 * 1024)
}
