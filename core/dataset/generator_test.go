package dataset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nishant-716/structbench/pkg/logger"
)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := NewGenerator(Config{Dir: t.TempDir()}, logger.Nop())
	require.NoError(t, err)
	return g
}

func TestNewGenerator_RejectsInvalidRange(t *testing.T) {
	_, err := NewGenerator(Config{MinValue: 10, MaxValue: 5, Dir: t.TempDir()}, logger.Nop())
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestGenerate_DeterministicBySeed(t *testing.T) {
	g := newTestGenerator(t)

	a := g.Generate(1000, 42)
	b := g.Generate(1000, 42)
	c := g.Generate(1000, 43)

	require.Equal(t, a, b, "same seed must reproduce the same dataset")
	require.NotEqual(t, a, c, "different seeds should diverge")
	require.Len(t, a, 1000)

	for _, v := range a {
		require.GreaterOrEqual(t, v, int64(1))
		require.LessOrEqual(t, v, int64(1000000))
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	g := newTestGenerator(t)

	ds := g.Generate(500, 7)
	require.NoError(t, g.Save(ds, "small_500"))

	loaded, err := g.Load("small_500")
	require.NoError(t, err)
	require.Equal(t, ds, loaded)
}

func TestLoad_Missing(t *testing.T) {
	g := newTestGenerator(t)
	_, err := g.Load("nope")
	require.ErrorIs(t, err, ErrDatasetMissing)
}

func TestGenerateAndSave_List(t *testing.T) {
	g := newTestGenerator(t)

	require.NoError(t, g.GenerateAndSave([]int{10, 20}, "tiny", 42))

	names, err := g.List()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"tiny_10", "tiny_20"}, names)

	ds, err := g.Load("tiny_20")
	require.NoError(t, err)
	require.Len(t, ds, 20)
}
