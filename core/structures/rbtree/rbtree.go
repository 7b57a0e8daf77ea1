// Package rbtree implements an in-memory red-black tree, a self-balancing
// binary search tree in which every node carries a color bit. The usual
// properties are maintained: the root is black, a red node never has a red
// child, and every root-to-leaf path crosses the same number of black nodes,
// which bounds the height at 2*log2(n+1).
//
// Like the other structures in this repository it stores unique keys, is
// not safe for concurrent mutation, and exposes Insert, Search and Delete
// point operations.
package rbtree

import (
	"fmt"

	"github.com/nishant-716/structbench/core/structures/btree"
)

type color bool

const (
	red   color = true
	black color = false
)

type node[K any] struct {
	key    K
	color  color
	left   *node[K]
	right  *node[K]
	parent *node[K]
}

// RBTree is a balanced binary search tree over unique keys of type K.
type RBTree[K any] struct {
	keyOrder btree.Order[K]
	sentinel *node[K] // shared sentinel, always black
	root     *node[K]
	size     int
}

// New creates an empty red-black tree using the given comparator.
func New[K any](keyOrder btree.Order[K]) (*RBTree[K], error) {
	if keyOrder == nil {
		return nil, btree.ErrNilKeyOrder
	}
	sentinel := &node[K]{color: black}
	return &RBTree[K]{
		keyOrder: keyOrder,
		sentinel: sentinel,
		root:     sentinel,
	}, nil
}

// Len returns the number of keys currently stored.
func (t *RBTree[K]) Len() int {
	return t.size
}

// Search reports whether key is present. It never mutates the tree.
func (t *RBTree[K]) Search(key K) bool {
	return t.findNode(key) != t.sentinel
}

func (t *RBTree[K]) findNode(key K) *node[K] {
	n := t.root
	for n != t.sentinel {
		c := t.keyOrder(key, n.key)
		switch {
		case c == 0:
			return n
		case c < 0:
			n = n.left
		default:
			n = n.right
		}
	}
	return t.sentinel
}

// Insert adds key to the tree. It returns false without mutating anything
// when the key is already present.
func (t *RBTree[K]) Insert(key K) bool {
	parent := t.sentinel
	cur := t.root
	for cur != t.sentinel {
		parent = cur
		c := t.keyOrder(key, cur.key)
		if c == 0 {
			return false
		}
		if c < 0 {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}

	n := &node[K]{key: key, color: red, left: t.sentinel, right: t.sentinel, parent: parent}
	switch {
	case parent == t.sentinel:
		t.root = n
	case t.keyOrder(key, parent.key) < 0:
		parent.left = n
	default:
		parent.right = n
	}

	t.fixInsert(n)
	t.size++
	return true
}

// fixInsert restores the red-black properties after hanging a new red node.
func (t *RBTree[K]) fixInsert(n *node[K]) {
	for n.parent.color == red {
		grand := n.parent.parent
		if n.parent == grand.left {
			uncle := grand.right
			if uncle.color == red {
				n.parent.color = black
				uncle.color = black
				grand.color = red
				n = grand
			} else {
				if n == n.parent.right {
					n = n.parent
					t.rotateLeft(n)
				}
				n.parent.color = black
				n.parent.parent.color = red
				t.rotateRight(n.parent.parent)
			}
		} else {
			uncle := grand.left
			if uncle.color == red {
				n.parent.color = black
				uncle.color = black
				grand.color = red
				n = grand
			} else {
				if n == n.parent.left {
					n = n.parent
					t.rotateRight(n)
				}
				n.parent.color = black
				n.parent.parent.color = red
				t.rotateLeft(n.parent.parent)
			}
		}
		if n == t.root {
			break
		}
	}
	t.root.color = black
}

// Delete removes key from the tree. It returns false without mutating
// anything when the key is absent.
func (t *RBTree[K]) Delete(key K) bool {
	z := t.findNode(key)
	if z == t.sentinel {
		return false
	}
	t.deleteNode(z)
	t.size--
	return true
}

func (t *RBTree[K]) deleteNode(z *node[K]) {
	y := z
	yColor := y.color
	var x *node[K]

	switch {
	case z.left == t.sentinel:
		x = z.right
		t.transplant(z, z.right)
	case z.right == t.sentinel:
		x = z.left
		t.transplant(z, z.left)
	default:
		y = t.minimum(z.right)
		yColor = y.color
		x = y.right
		if y.parent == z {
			x.parent = y
		} else {
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	if yColor == black {
		t.fixDelete(x)
	}
}

// fixDelete restores the red-black properties after removing a black node;
// x carries the "extra black" pushed up during the removal.
func (t *RBTree[K]) fixDelete(x *node[K]) {
	for x != t.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rotateLeft(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.right.color == black {
					w.left.color = black
					w.color = red
					t.rotateRight(w)
					w = x.parent.right
				}
				w.color = x.parent.color
				x.parent.color = black
				w.right.color = black
				t.rotateLeft(x.parent)
				x = t.root
			}
		} else {
			w := x.parent.left
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rotateRight(x.parent)
				w = x.parent.left
			}
			if w.right.color == black && w.left.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.left.color == black {
					w.right.color = black
					w.color = red
					t.rotateLeft(w)
					w = x.parent.left
				}
				w.color = x.parent.color
				x.parent.color = black
				w.left.color = black
				t.rotateRight(x.parent)
				x = t.root
			}
		}
	}
	x.color = black
}

func (t *RBTree[K]) rotateLeft(x *node[K]) {
	y := x.right
	x.right = y.left
	if y.left != t.sentinel {
		y.left.parent = x
	}
	y.parent = x.parent
	switch {
	case x.parent == t.sentinel:
		t.root = y
	case x == x.parent.left:
		x.parent.left = y
	default:
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *RBTree[K]) rotateRight(x *node[K]) {
	y := x.left
	x.left = y.right
	if y.right != t.sentinel {
		y.right.parent = x
	}
	y.parent = x.parent
	switch {
	case x.parent == t.sentinel:
		t.root = y
	case x == x.parent.right:
		x.parent.right = y
	default:
		x.parent.left = y
	}
	y.right = x
	x.parent = y
}

// transplant replaces the subtree rooted at u with the subtree rooted at v.
func (t *RBTree[K]) transplant(u, v *node[K]) {
	switch {
	case u.parent == t.sentinel:
		t.root = v
	case u == u.parent.left:
		u.parent.left = v
	default:
		u.parent.right = v
	}
	v.parent = u.parent
}

func (t *RBTree[K]) minimum(n *node[K]) *node[K] {
	for n.left != t.sentinel {
		n = n.left
	}
	return n
}

// Validate checks the red-black properties and BST ordering over the whole
// tree. Any non-nil result indicates a bug in the tree itself.
func (t *RBTree[K]) Validate() error {
	if t.root.color != black {
		return fmt.Errorf("root is red")
	}
	if t.sentinel.color != black {
		return fmt.Errorf("sentinel recolored to red")
	}

	var walk func(n *node[K], min, max *K) (int, error)
	walk = func(n *node[K], min, max *K) (int, error) {
		if n == t.sentinel {
			return 1, nil
		}
		if min != nil && t.keyOrder(n.key, *min) <= 0 {
			return 0, fmt.Errorf("key violates lower bound")
		}
		if max != nil && t.keyOrder(n.key, *max) >= 0 {
			return 0, fmt.Errorf("key violates upper bound")
		}
		if n.color == red && (n.left.color == red || n.right.color == red) {
			return 0, fmt.Errorf("red node with red child")
		}
		lh, err := walk(n.left, min, &n.key)
		if err != nil {
			return 0, err
		}
		rh, err := walk(n.right, &n.key, max)
		if err != nil {
			return 0, err
		}
		if lh != rh {
			return 0, fmt.Errorf("black height mismatch: %d vs %d", lh, rh)
		}
		if n.color == black {
			lh++
		}
		return lh, nil
	}
	_, err := walk(t.root, nil, nil)
	return err
}
