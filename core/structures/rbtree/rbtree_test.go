package rbtree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nishant-716/structbench/core/structures/btree"
)

func newTestTree(t *testing.T) *RBTree[int64] {
	t.Helper()
	rb, err := New(btree.DefaultOrder[int64])
	require.NoError(t, err)
	return rb
}

func TestNew_RejectsNilOrder(t *testing.T) {
	_, err := New[int64](nil)
	require.ErrorIs(t, err, btree.ErrNilKeyOrder)
}

func TestSearch_EmptyTree(t *testing.T) {
	rb := newTestTree(t)
	require.False(t, rb.Search(1))
	require.Equal(t, 0, rb.Len())
}

func TestInsert_DuplicateIsNoOp(t *testing.T) {
	rb := newTestTree(t)
	require.True(t, rb.Insert(10))
	require.False(t, rb.Insert(10))
	require.Equal(t, 1, rb.Len())
}

// TestInsert_SequentialStaysBalanced inserts an ascending run, the worst
// case for a plain BST, and relies on Validate to prove the fixup kept the
// black-height property.
func TestInsert_SequentialStaysBalanced(t *testing.T) {
	rb := newTestTree(t)
	for k := int64(0); k < 1000; k++ {
		require.True(t, rb.Insert(k))
	}
	require.NoError(t, rb.Validate())
	require.Equal(t, 1000, rb.Len())
	for k := int64(0); k < 1000; k++ {
		require.True(t, rb.Search(k))
	}
}

func TestDelete_AbsentKeyIsNoOp(t *testing.T) {
	rb := newTestTree(t)
	rb.Insert(5)
	require.False(t, rb.Delete(6))
	require.Equal(t, 1, rb.Len())
}

func TestDelete_ThenSearch(t *testing.T) {
	rb := newTestTree(t)
	for k := int64(0); k < 100; k++ {
		rb.Insert(k)
	}
	for k := int64(0); k < 100; k += 2 {
		require.True(t, rb.Delete(k))
		require.NoError(t, rb.Validate(), "invariant violated after deleting %d", k)
	}
	for k := int64(0); k < 100; k++ {
		require.Equal(t, k%2 == 1, rb.Search(k))
	}
	require.Equal(t, 50, rb.Len())
}

// TestRandomizedOperations interleaves inserts and deletes against a model
// map, validating the tree after every mutation.
func TestRandomizedOperations(t *testing.T) {
	rb := newTestTree(t)
	model := make(map[int64]bool)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 3000; i++ {
		k := rng.Int63n(400)
		if rng.Intn(2) == 0 {
			require.Equal(t, !model[k], rb.Insert(k))
			model[k] = true
		} else {
			require.Equal(t, model[k], rb.Delete(k))
			delete(model, k)
		}
		require.NoError(t, rb.Validate(), "op %d", i)
		require.Equal(t, len(model), rb.Len())
	}

	for k := int64(0); k < 400; k++ {
		require.Equal(t, model[k], rb.Search(k))
	}
}
