package btree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestTree builds a tree with the given degree, failing the test on any
// construction error.
func newTestTree(t *testing.T, degree int) *BTree[int64] {
	t.Helper()
	bt, err := New(degree, DefaultOrder[int64])
	require.NoError(t, err)
	return bt
}

// insertAll inserts every key and validates the tree after each mutation.
func insertAll(t *testing.T, bt *BTree[int64], keys []int64) {
	t.Helper()
	for _, k := range keys {
		bt.Insert(k)
		require.NoError(t, bt.Validate(), "invariant violated after inserting %d", k)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(1, DefaultOrder[int64])
	require.ErrorIs(t, err, ErrInvalidDegree)

	_, err = New(0, DefaultOrder[int64])
	require.ErrorIs(t, err, ErrInvalidDegree)

	_, err = New[int64](3, nil)
	require.ErrorIs(t, err, ErrNilKeyOrder)
}

func TestSearch_EmptyTree(t *testing.T) {
	bt := newTestTree(t, 3)
	require.False(t, bt.Search(42))
	require.Equal(t, 0, bt.Len())
	require.Equal(t, 1, bt.Height())
}

// TestInsert_RootSplit walks the first boundary scenario: with t=3 the root
// holds at most 5 keys, so the 6th insert must split it into a root with one
// key and two children, growing the height by exactly one.
func TestInsert_RootSplit(t *testing.T) {
	bt := newTestTree(t, 3)

	for _, k := range []int64{10, 20, 30, 40, 50} {
		require.True(t, bt.Insert(k))
	}
	require.Equal(t, 1, bt.Height(), "root should not split before reaching capacity")

	require.True(t, bt.Insert(60))
	require.Equal(t, 2, bt.Height(), "6th insert must split the full root")
	require.Len(t, bt.root.keys, 1)
	require.Len(t, bt.root.children, 2)
	require.NoError(t, bt.Validate())
}

func TestInsert_DuplicateIsNoOp(t *testing.T) {
	bt := newTestTree(t, 2)
	require.True(t, bt.Insert(7))
	require.False(t, bt.Insert(7))
	require.Equal(t, 1, bt.Len())
	require.True(t, bt.Search(7))
}

// TestInsert_RoundTrip checks that after inserting a set of distinct keys,
// exactly those keys are reported present.
func TestInsert_RoundTrip(t *testing.T) {
	bt := newTestTree(t, 3)
	rng := rand.New(rand.NewSource(1))

	keys := make(map[int64]bool)
	for i := 0; i < 500; i++ {
		k := rng.Int63n(10000)
		keys[k] = true
		bt.Insert(k)
	}
	require.NoError(t, bt.Validate())
	require.Equal(t, len(keys), bt.Len())

	for k := int64(0); k < 10000; k++ {
		require.Equal(t, keys[k], bt.Search(k), "membership mismatch for key %d", k)
	}
}

// TestInsert_OrderIndependence inserts the same key set in several orders
// and checks that membership and the structural invariants are unaffected
// by insertion order.
func TestInsert_OrderIndependence(t *testing.T) {
	keys := make([]int64, 100)
	for i := range keys {
		keys[i] = int64(i * 3)
	}

	rng := rand.New(rand.NewSource(2))
	for round := 0; round < 5; round++ {
		shuffled := append([]int64(nil), keys...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		bt := newTestTree(t, 3)
		insertAll(t, bt, shuffled)
		require.Equal(t, len(keys), bt.Len())
		for _, k := range keys {
			require.True(t, bt.Search(k))
		}
	}
}

// TestDelete_LeafSimple covers the second boundary scenario: deleting a key
// that leaves its leaf above minimum occupancy must not trigger any
// structural repair.
func TestDelete_LeafSimple(t *testing.T) {
	bt := newTestTree(t, 3)
	for k := int64(1); k <= 20; k++ {
		bt.Insert(k)
	}
	heightBefore := bt.Height()

	require.True(t, bt.Delete(1))
	require.False(t, bt.Search(1))
	require.Equal(t, 19, bt.Len())
	require.Equal(t, heightBefore, bt.Height())
	require.NoError(t, bt.Validate())
}

// TestDelete_RootLeafUnderflowAllowed covers the third boundary scenario:
// the root has no minimum occupancy, so removing from a root leaf holding
// exactly t keys is fine.
func TestDelete_RootLeafUnderflowAllowed(t *testing.T) {
	bt := newTestTree(t, 2)
	insertAll(t, bt, []int64{1, 2, 3})
	require.Equal(t, 1, bt.Height(), "three keys with t=2 should still be a single root leaf")

	require.True(t, bt.Delete(2))
	require.NoError(t, bt.Validate())
	require.True(t, bt.Search(1))
	require.False(t, bt.Search(2))
	require.True(t, bt.Search(3))
}

// TestDelete_MergeShrinksHeight covers the fourth boundary scenario: when
// the two children of a one-key root are both minimal, a delete descending
// through the root merges them and the height drops by one.
func TestDelete_MergeShrinksHeight(t *testing.T) {
	bt := newTestTree(t, 2)
	// 1..4 with t=2 yields a root with one key and two minimal-ish
	// children; deleting down to the merge point is forced below.
	insertAll(t, bt, []int64{1, 2, 3, 4})
	require.Equal(t, 2, bt.Height())

	// Remove until both children of the root hold exactly t-1 = 1 key.
	require.True(t, bt.Delete(4))
	require.Equal(t, 2, bt.Height())
	require.Len(t, bt.root.keys, 1)

	// The next delete must merge the two children with the separator,
	// drain the root, and promote the merged node.
	require.True(t, bt.Delete(1))
	require.Equal(t, 1, bt.Height(), "merge emptying the root must shrink the tree")
	require.NoError(t, bt.Validate())
	require.True(t, bt.Search(2))
	require.True(t, bt.Search(3))
}

func TestDelete_AbsentKeyIsNoOp(t *testing.T) {
	bt := newTestTree(t, 3)
	insertAll(t, bt, []int64{5, 10, 15})

	require.False(t, bt.Delete(99))
	require.Equal(t, 3, bt.Len())
	require.NoError(t, bt.Validate())
}

// TestDelete_InternalKey forces deletions of keys sitting in internal nodes
// so the predecessor/successor replacement paths are exercised.
func TestDelete_InternalKey(t *testing.T) {
	bt := newTestTree(t, 2)
	var keys []int64
	for k := int64(1); k <= 31; k++ {
		keys = append(keys, k)
	}
	insertAll(t, bt, keys)

	// Delete root and internal separators first, then everything else.
	for _, k := range []int64{16, 8, 24, 4, 12, 20, 28} {
		require.True(t, bt.Delete(k), "delete %d", k)
		require.NoError(t, bt.Validate(), "invariant violated after deleting %d", k)
		require.False(t, bt.Search(k))
	}
	require.Equal(t, 24, bt.Len())
}

// TestDelete_ThenSearch removes keys one at a time and verifies after every
// removal that only the remaining keys are reported present.
func TestDelete_ThenSearch(t *testing.T) {
	bt := newTestTree(t, 3)
	present := make(map[int64]bool)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		k := rng.Int63n(1000)
		present[k] = true
		bt.Insert(k)
	}

	for k := range present {
		require.True(t, bt.Delete(k))
		delete(present, k)
		require.NoError(t, bt.Validate(), "invariant violated after deleting %d", k)
		require.False(t, bt.Search(k))
		// Spot-check a handful of remaining keys rather than the full
		// set on every iteration.
		checked := 0
		for other := range present {
			require.True(t, bt.Search(other), "key %d lost after deleting %d", other, k)
			if checked++; checked == 5 {
				break
			}
		}
	}
	require.Equal(t, 0, bt.Len())
	require.Equal(t, 1, bt.Height())
}

// TestRandomizedOperations interleaves inserts and deletes against a model
// map and validates the structural invariants after every mutation, across
// several degrees.
func TestRandomizedOperations(t *testing.T) {
	for _, degree := range []int{2, 3, 5, 8} {
		bt := newTestTree(t, degree)
		model := make(map[int64]bool)
		rng := rand.New(rand.NewSource(int64(degree)))

		for i := 0; i < 2000; i++ {
			k := rng.Int63n(300)
			if rng.Intn(2) == 0 {
				inserted := bt.Insert(k)
				require.Equal(t, !model[k], inserted)
				model[k] = true
			} else {
				deleted := bt.Delete(k)
				require.Equal(t, model[k], deleted)
				delete(model, k)
			}
			require.NoError(t, bt.Validate(), "degree %d, op %d", degree, i)
			require.Equal(t, len(model), bt.Len())
		}

		for k := int64(0); k < 300; k++ {
			require.Equal(t, model[k], bt.Search(k))
		}
	}
}

func TestDescendingAndAscendingBulk(t *testing.T) {
	bt := newTestTree(t, 4)
	for k := int64(1000); k > 0; k-- {
		bt.Insert(k)
	}
	require.NoError(t, bt.Validate())
	require.Equal(t, 1000, bt.Len())

	for k := int64(1); k <= 1000; k++ {
		require.True(t, bt.Delete(k))
	}
	require.Equal(t, 0, bt.Len())
	require.NoError(t, bt.Validate())
}
