package benchmark

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nishant-716/structbench/core/dataset"
	"github.com/nishant-716/structbench/pkg/logger"
	"github.com/nishant-716/structbench/pkg/telemetry"
)

func newTestRunner(t *testing.T, config RunnerConfig) *Runner {
	t.Helper()
	tel, shutdown, err := telemetry.New(telemetry.Config{Enabled: false})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	r, err := NewRunner(config, logger.Nop(), tel)
	require.NoError(t, err)
	return r
}

func testDataset(t *testing.T, size int) []int64 {
	t.Helper()
	g, err := dataset.NewGenerator(dataset.Config{Dir: t.TempDir()}, logger.Nop())
	require.NoError(t, err)
	return g.Generate(size, 42)
}

func TestRun_AllStructures(t *testing.T) {
	r := newTestRunner(t, RunnerConfig{})
	keys := testDataset(t, 2000)

	for name, factory := range StandardFactories(3) {
		store, err := factory()
		require.NoError(t, err)
		require.Equal(t, name, store.Name())

		result, err := r.Run(context.Background(), store, keys)
		require.NoError(t, err)
		require.Equal(t, len(keys), result.Ops)
		require.Greater(t, result.Insertion.Nanoseconds(), int64(0))
		require.Greater(t, result.Search.Nanoseconds(), int64(0))
		require.Greater(t, result.Deletion.Nanoseconds(), int64(0))

		// The deletion phase removes every dataset key, so keyed
		// stores must end empty. The positional list store pops its
		// head once per dataset entry, which also drains it.
		require.Equal(t, 0, store.Len(), "structure %s not drained", name)
	}
}

func TestRun_Throttled(t *testing.T) {
	r := newTestRunner(t, RunnerConfig{OpsPerSecond: 100000})
	store, err := NewBTreeFactory(3)()
	require.NoError(t, err)

	_, err = r.Run(context.Background(), store, testDataset(t, 100))
	require.NoError(t, err)
}

func TestRun_CancelledContext(t *testing.T) {
	r := newTestRunner(t, RunnerConfig{OpsPerSecond: 1})
	store, err := NewBTreeFactory(3)()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, store, testDataset(t, 50))
	require.Error(t, err, "a throttled run must stop when the context is cancelled")
}

func TestSampleInsertLatency(t *testing.T) {
	r := newTestRunner(t, RunnerConfig{})
	store, err := NewBTreeFactory(3)()
	require.NoError(t, err)

	curve, err := r.SampleInsertLatency(context.Background(), store, LatencyConfig{
		MaxSize:           5000,
		MeasureInterval:   1000,
		ProbesPerInterval: 10,
		Window:            3,
		Seed:              42,
	})
	require.NoError(t, err)
	require.Equal(t, len(curve.Points), len(curve.Seconds))
	require.NotEmpty(t, curve.Points)
	require.Equal(t, 0, curve.Points[0], "first checkpoint should be taken on the empty structure")
	require.GreaterOrEqual(t, store.Len(), 1)
}

func TestMovingAverage(t *testing.T) {
	in := []float64{2, 4, 6, 8}
	out := MovingAverage(in, 2)
	require.Equal(t, []float64{2, 3, 5, 7}, out)

	// A window longer than the series averages over the whole prefix.
	out = MovingAverage([]float64{3, 9}, 10)
	require.Equal(t, []float64{3, 6}, out)
}

func TestMeasureMemory(t *testing.T) {
	store, err := NewBTreeFactory(3)()
	require.NoError(t, err)

	usage := MeasureMemory(store, testDataset(t, 5000), logger.Nop())
	require.Equal(t, "btree", usage.Structure)
	require.Equal(t, 5000, usage.DatasetSize)
	require.NotEmpty(t, usage.SamplesMiB)
	require.Greater(t, usage.FinalMiB(), 0.0)
}

func TestReport_JSONAndCSV(t *testing.T) {
	report := NewReport()
	require.NotEmpty(t, report.RunID)

	report.Add("btree", 1000, PhaseResult{Insertion: 1e6, Search: 2e6, Deletion: 3e6})
	report.Add("rbtree", 1000, PhaseResult{Insertion: 4e6, Search: 5e6, Deletion: 6e6})

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "report.json")
	csvPath := filepath.Join(dir, "report.csv")
	require.NoError(t, report.WriteJSON(jsonPath))
	require.NoError(t, report.WriteCSV(csvPath))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, report.RunID, decoded.RunID)
	require.Len(t, decoded.Results, 2)
	require.Equal(t, 0.001, decoded.Results[0].InsertionSeconds)

	csvData, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	require.Contains(t, string(csvData), "structure,dataset_size")
	require.Contains(t, string(csvData), "rbtree,1000")
}
