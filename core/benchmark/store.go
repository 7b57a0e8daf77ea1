// Package benchmark drives the data structures in core/structures through
// timed bulk workloads and collects wall-clock, sampled-latency, and memory
// measurements into machine-readable reports.
package benchmark

import (
	"github.com/nishant-716/structbench/core/structures/arenalist"
	"github.com/nishant-716/structbench/core/structures/btree"
	"github.com/nishant-716/structbench/core/structures/rbtree"
)

// Store is the point-operation surface the harness drives. All three
// structures are adapted onto it so one runner can benchmark them
// uniformly.
type Store interface {
	Name() string
	Insert(key int64) bool
	Search(key int64) bool
	Delete(key int64) bool
	Len() int
}

// Factory builds a fresh, empty Store for one benchmark pass.
type Factory func() (Store, error)

type btreeStore struct {
	*btree.BTree[int64]
}

func (btreeStore) Name() string { return "btree" }

// NewBTreeFactory returns a Factory producing B-tree stores with the given
// minimum degree.
func NewBTreeFactory(degree int) Factory {
	return func() (Store, error) {
		bt, err := btree.New(degree, btree.DefaultOrder[int64])
		if err != nil {
			return nil, err
		}
		return btreeStore{bt}, nil
	}
}

type rbtreeStore struct {
	*rbtree.RBTree[int64]
}

func (rbtreeStore) Name() string { return "rbtree" }

// NewRBTreeFactory returns a Factory producing red-black tree stores.
func NewRBTreeFactory() Factory {
	return func() (Store, error) {
		rb, err := rbtree.New(btree.DefaultOrder[int64])
		if err != nil {
			return nil, err
		}
		return rbtreeStore{rb}, nil
	}
}

// listStore drives the arena list positionally: inserts go to the head and
// reads/deletes address the head, matching how a positional list is
// exercised when compared against keyed trees.
type listStore struct {
	list *arenalist.List[int64]
}

func (listStore) Name() string { return "arenalist" }

func (s listStore) Insert(key int64) bool {
	s.list.PushFront(key)
	return true
}

func (s listStore) Search(int64) bool {
	_, err := s.list.Read(0)
	return err == nil
}

func (s listStore) Delete(int64) bool {
	_, err := s.list.Delete(0)
	return err == nil
}

func (s listStore) Len() int { return s.list.Len() }

func (s listStore) Validate() error { return s.list.Validate() }

// NewListFactory returns a Factory producing arena-list stores.
func NewListFactory() Factory {
	return func() (Store, error) {
		return listStore{list: arenalist.New[int64]()}, nil
	}
}

// StandardFactories returns the factories for every structure the harness
// compares, keyed by structure name.
func StandardFactories(degree int) map[string]Factory {
	return map[string]Factory{
		"btree":     NewBTreeFactory(degree),
		"rbtree":    NewRBTreeFactory(),
		"arenalist": NewListFactory(),
	}
}
