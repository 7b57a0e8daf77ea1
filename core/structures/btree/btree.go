// Package btree implements an in-memory B-tree keyed by an arbitrary ordered
// type.
//
// The tree is parameterized by a minimum degree t (>= 2): every node except
// the root holds between t-1 and 2t-1 keys, internal nodes hold one more
// child than they have keys, and all leaves sit at the same depth. Both
// Insert and Delete are single-pass: each repairs the child it is about to
// descend into (splitting a full child, refilling a minimal one) so that no
// operation ever has to revisit ancestors.
//
// The tree is not safe for concurrent mutation; callers needing shared
// access must serialize externally.
package btree

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrInvalidDegree = errors.New("btree degree must be at least 2")
	ErrNilKeyOrder   = errors.New("keyOrder function must be provided")
)

// Order compares two keys. It must return a negative number when a < b,
// zero when a == b, and a positive number when a > b.
type Order[K any] func(a, b K) int

// DefaultOrder is an Order for any natively ordered key type.
func DefaultOrder[K cmp.Ordered](a, b K) int {
	return cmp.Compare(a, b)
}

// node is a single B-tree node. keys is kept strictly increasing; children
// is empty for leaves and holds len(keys)+1 subtrees otherwise. A node is
// owned exclusively by its parent (or by the tree, for the root).
type node[K any] struct {
	keys     []K
	children []*node[K]
}

func (n *node[K]) isLeaf() bool {
	return len(n.children) == 0
}

// isFull reports whether the node holds the maximum 2t-1 keys.
func (n *node[K]) isFull(t int) bool {
	return len(n.keys) == 2*t-1
}

// isMinimal reports whether the node holds the minimum t-1 keys allowed for
// a non-root node.
func (n *node[K]) isMinimal(t int) bool {
	return len(n.keys) == t-1
}

// canLend reports whether the node can give up a key to a sibling without
// dropping below the minimum occupancy.
func (n *node[K]) canLend(t int) bool {
	return len(n.keys) > t-1
}

// BTree is a balanced multiway search tree over unique keys of type K.
type BTree[K any] struct {
	degree   int // minimum degree t
	keyOrder Order[K]
	root     *node[K]
	size     int
}

// New creates an empty B-tree with the given minimum degree and comparator.
func New[K any](degree int, keyOrder Order[K]) (*BTree[K], error) {
	if degree < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDegree, degree)
	}
	if keyOrder == nil {
		return nil, ErrNilKeyOrder
	}
	return &BTree[K]{
		degree:   degree,
		keyOrder: keyOrder,
		root:     &node[K]{},
	}, nil
}

// Degree returns the minimum degree the tree was constructed with.
func (bt *BTree[K]) Degree() int {
	return bt.degree
}

// Len returns the number of keys currently stored.
func (bt *BTree[K]) Len() int {
	return bt.size
}

// Height returns the number of levels from the root down to the leaves. An
// empty tree has height 1 (a single empty root leaf).
func (bt *BTree[K]) Height() int {
	h := 1
	for n := bt.root; !n.isLeaf(); n = n.children[0] {
		h++
	}
	return h
}

// Search reports whether key is present. It never mutates the tree.
func (bt *BTree[K]) Search(key K) bool {
	for n := bt.root; ; {
		idx, found := slices.BinarySearchFunc(n.keys, key, bt.keyOrder)
		if found {
			return true
		}
		if n.isLeaf() {
			return false
		}
		n = n.children[idx]
	}
}

// Insert adds key to the tree. It returns false without mutating anything
// when the key is already present.
func (bt *BTree[K]) Insert(key K) bool {
	if bt.Search(key) {
		return false
	}

	// If the root is full the tree must grow in height: allocate a new
	// root with the old root as its only child, then split that child.
	// This is the only point at which the height increases.
	if bt.root.isFull(bt.degree) {
		oldRoot := bt.root
		bt.root = &node[K]{children: []*node[K]{oldRoot}}
		bt.splitChild(bt.root, 0)
	}

	bt.insertNonFull(bt.root, key)
	bt.size++
	return true
}

// insertNonFull inserts key into the subtree rooted at n, which is
// guaranteed not to be full. Any full child on the descent path is split
// before it is entered, so the leaf finally reached always has room.
func (bt *BTree[K]) insertNonFull(n *node[K], key K) {
	idx, _ := slices.BinarySearchFunc(n.keys, key, bt.keyOrder)

	if n.isLeaf() {
		n.keys = slices.Insert(n.keys, idx, key)
		return
	}

	if n.children[idx].isFull(bt.degree) {
		bt.splitChild(n, idx)
		// The promoted median now sits at idx; the key may belong in
		// the new right sibling.
		if bt.keyOrder(key, n.keys[idx]) > 0 {
			idx++
		}
	}
	bt.insertNonFull(n.children[idx], key)
}

// splitChild splits the full child at childIdx of parent into two nodes of
// t-1 keys each, promoting the median key into parent. The parent must not
// be full.
func (bt *BTree[K]) splitChild(parent *node[K], childIdx int) {
	t := bt.degree
	child := parent.children[childIdx]
	median := child.keys[t-1]

	sibling := &node[K]{keys: make([]K, t-1)}
	copy(sibling.keys, child.keys[t:])
	if !child.isLeaf() {
		sibling.children = make([]*node[K], t)
		copy(sibling.children, child.children[t:])
		clear(child.children[t:])
		child.children = child.children[:t]
	}
	clear(child.keys[t-1:])
	child.keys = child.keys[:t-1]

	parent.keys = slices.Insert(parent.keys, childIdx, median)
	parent.children = slices.Insert(parent.children, childIdx+1, sibling)
}

// Delete removes key from the tree. It returns false without mutating
// anything when the key is absent.
func (bt *BTree[K]) Delete(key K) bool {
	if !bt.Search(key) {
		return false
	}

	bt.deleteFrom(bt.root, key)

	// A merge may drain the root down to zero keys with a single child
	// left; promote that child. This is the only point at which the
	// height decreases.
	if len(bt.root.keys) == 0 && !bt.root.isLeaf() {
		bt.root = bt.root.children[0]
	}
	bt.size--
	return true
}

// deleteFrom removes key from the subtree rooted at n. Every child entered
// on the way down is first brought up to at least t keys, so removal at the
// bottom can never underflow a node that still has a parent separator
// depending on it.
func (bt *BTree[K]) deleteFrom(n *node[K], key K) {
	idx, found := slices.BinarySearchFunc(n.keys, key, bt.keyOrder)

	if n.isLeaf() {
		// The pre-delete search guarantees presence, so found holds
		// unless an internal-node case already rewrote the key.
		if found {
			n.keys = slices.Delete(n.keys, idx, idx+1)
		}
		return
	}

	if found {
		bt.deleteFromInternal(n, idx)
		return
	}

	if n.children[idx].isMinimal(bt.degree) {
		idx = bt.ensureChildCanLose(n, idx)
	}
	bt.deleteFrom(n.children[idx], key)
}

// deleteFromInternal removes n.keys[idx] from internal node n by replacing
// it with its in-order predecessor or successor, then deleting that
// replacement from the child subtree it came from. When neither adjacent
// child can spare a key, the two are merged around the target key first.
func (bt *BTree[K]) deleteFromInternal(n *node[K], idx int) {
	t := bt.degree
	key := n.keys[idx]
	left, right := n.children[idx], n.children[idx+1]

	switch {
	case len(left.keys) >= t:
		pred := maxKey(left)
		n.keys[idx] = pred
		bt.deleteFrom(left, pred)
	case len(right.keys) >= t:
		succ := minKey(right)
		n.keys[idx] = succ
		bt.deleteFrom(right, succ)
	default:
		// Both neighbors are minimal: pull the key down into the
		// merged node and delete it there.
		bt.mergeChildren(n, idx)
		bt.deleteFrom(left, key)
	}
}

// ensureChildCanLose brings the child at idx up to at least t keys, either
// by borrowing through the parent from a sibling that can lend or by
// merging with a sibling. It returns the index of the child to descend
// into, which shifts left by one when the child is merged into its left
// sibling.
func (bt *BTree[K]) ensureChildCanLose(n *node[K], idx int) int {
	t := bt.degree
	if idx > 0 && n.children[idx-1].canLend(t) {
		bt.borrowFromLeft(n, idx)
		return idx
	}
	if idx < len(n.children)-1 && n.children[idx+1].canLend(t) {
		bt.borrowFromRight(n, idx)
		return idx
	}
	if idx < len(n.children)-1 {
		bt.mergeChildren(n, idx)
		return idx
	}
	bt.mergeChildren(n, idx-1)
	return idx - 1
}

// borrowFromLeft rotates one key from the left sibling through the parent
// into the child at idx, carrying the sibling's last subtree along when the
// nodes are internal.
func (bt *BTree[K]) borrowFromLeft(n *node[K], idx int) {
	child, sibling := n.children[idx], n.children[idx-1]

	child.keys = slices.Insert(child.keys, 0, n.keys[idx-1])
	if !sibling.isLeaf() {
		last := len(sibling.children) - 1
		child.children = slices.Insert(child.children, 0, sibling.children[last])
		sibling.children = slices.Delete(sibling.children, last, last+1)
	}
	n.keys[idx-1] = sibling.keys[len(sibling.keys)-1]
	sibling.keys = slices.Delete(sibling.keys, len(sibling.keys)-1, len(sibling.keys))
}

// borrowFromRight rotates one key from the right sibling through the parent
// into the child at idx, carrying the sibling's first subtree along when
// the nodes are internal.
func (bt *BTree[K]) borrowFromRight(n *node[K], idx int) {
	child, sibling := n.children[idx], n.children[idx+1]

	child.keys = append(child.keys, n.keys[idx])
	if !sibling.isLeaf() {
		child.children = append(child.children, sibling.children[0])
		sibling.children = slices.Delete(sibling.children, 0, 1)
	}
	n.keys[idx] = sibling.keys[0]
	sibling.keys = slices.Delete(sibling.keys, 0, 1)
}

// mergeChildren absorbs the child at idx+1 and the separator key n.keys[idx]
// into the child at idx, leaving one node with 2t-1 keys. The absorbed node
// becomes unreachable and is reclaimed by the garbage collector.
func (bt *BTree[K]) mergeChildren(n *node[K], idx int) {
	left, right := n.children[idx], n.children[idx+1]

	left.keys = append(left.keys, n.keys[idx])
	left.keys = append(left.keys, right.keys...)
	left.children = append(left.children, right.children...)

	n.keys = slices.Delete(n.keys, idx, idx+1)
	n.children = slices.Delete(n.children, idx+1, idx+2)
}

// maxKey returns the largest key in the subtree rooted at n.
func maxKey[K any](n *node[K]) K {
	for !n.isLeaf() {
		n = n.children[len(n.children)-1]
	}
	return n.keys[len(n.keys)-1]
}

// minKey returns the smallest key in the subtree rooted at n.
func minKey[K any](n *node[K]) K {
	for !n.isLeaf() {
		n = n.children[0]
	}
	return n.keys[0]
}

// Validate walks the whole tree and checks the structural invariants:
// per-node occupancy bounds, strictly increasing keys consistent with
// subtree placement, child counts, and uniform leaf depth. It returns nil
// on a well-formed tree. Any non-nil result indicates a bug in the tree
// itself, not a caller error.
func (bt *BTree[K]) Validate() error {
	leafDepth := -1
	var walk func(n *node[K], depth int, min, max *K) error
	walk = func(n *node[K], depth int, min, max *K) error {
		if n != bt.root && len(n.keys) < bt.degree-1 {
			return fmt.Errorf("node at depth %d has %d keys, below minimum %d", depth, len(n.keys), bt.degree-1)
		}
		if len(n.keys) > 2*bt.degree-1 {
			return fmt.Errorf("node at depth %d has %d keys, above maximum %d", depth, len(n.keys), 2*bt.degree-1)
		}
		for i, k := range n.keys {
			if i > 0 && bt.keyOrder(n.keys[i-1], k) >= 0 {
				return fmt.Errorf("keys out of order at depth %d index %d", depth, i)
			}
			if min != nil && bt.keyOrder(k, *min) <= 0 {
				return fmt.Errorf("key at depth %d index %d violates lower subtree bound", depth, i)
			}
			if max != nil && bt.keyOrder(k, *max) >= 0 {
				return fmt.Errorf("key at depth %d index %d violates upper subtree bound", depth, i)
			}
		}
		if n.isLeaf() {
			if leafDepth == -1 {
				leafDepth = depth
			} else if depth != leafDepth {
				return fmt.Errorf("leaf at depth %d, expected all leaves at depth %d", depth, leafDepth)
			}
			return nil
		}
		if len(n.children) != len(n.keys)+1 {
			return fmt.Errorf("internal node at depth %d has %d keys but %d children", depth, len(n.keys), len(n.children))
		}
		for i, c := range n.children {
			lo, hi := min, max
			if i > 0 {
				lo = &n.keys[i-1]
			}
			if i < len(n.keys) {
				hi = &n.keys[i]
			}
			if err := walk(c, depth+1, lo, hi); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(bt.root, 0, nil, nil)
}

// String renders the tree level by level for debugging.
func (bt *BTree[K]) String() string {
	var sb strings.Builder
	var walk func(n *node[K], level int)
	walk = func(n *node[K], level int) {
		sb.WriteString(strings.Repeat("  ", level))
		fmt.Fprintf(&sb, "%v\n", n.keys)
		for _, c := range n.children {
			walk(c, level+1)
		}
	}
	walk(bt.root, 0)
	return sb.String()
}
