// Scenario walkthrough for the B-tree: drives the tree through the
// interesting structural transitions (root split, borrow, merge, height
// shrink) and dumps the shape after each step so the rebalancing behavior
// can be inspected by hand.
//
//	go run ./tests
package main

import (
	"fmt"
	"log"

	"github.com/nishant-716/structbench/core/structures/btree"
)

func main() {
	scenarioRootSplit()
	scenarioLeafDelete()
	scenarioMergeShrinksHeight()
}

func newTree(degree int) *btree.BTree[int64] {
	tree, err := btree.New(degree, btree.DefaultOrder[int64])
	if err != nil {
		log.Fatalf("failed to create btree: %v", err)
	}
	return tree
}

func check(tree *btree.BTree[int64], step string) {
	if err := tree.Validate(); err != nil {
		log.Fatalf("invariant violated after %s: %v", step, err)
	}
}

// scenarioRootSplit fills a t=3 root leaf to capacity (5 keys) and shows
// the 6th insert splitting it into a one-key root with two children.
func scenarioRootSplit() {
	fmt.Println("--- Scenario 1: root split on 6th insert (t=3) ---")
	tree := newTree(3)

	for _, k := range []int64{10, 20, 30, 40, 50} {
		tree.Insert(k)
	}
	check(tree, "filling the root")
	fmt.Printf("after 5 inserts (height %d):\n%s", tree.Height(), tree)

	tree.Insert(60)
	check(tree, "the root split")
	fmt.Printf("after 6th insert (height %d):\n%s", tree.Height(), tree)
}

// scenarioLeafDelete builds {1..20} with t=3 and deletes 1: the affected
// leaf stays above minimum occupancy, so no repair happens.
func scenarioLeafDelete() {
	fmt.Println("--- Scenario 2: plain leaf delete, no repair (t=3) ---")
	tree := newTree(3)

	for k := int64(1); k <= 20; k++ {
		tree.Insert(k)
	}
	fmt.Printf("before delete (height %d):\n%s", tree.Height(), tree)

	tree.Delete(1)
	check(tree, "deleting 1")
	fmt.Printf("after deleting 1 (height %d):\n%s", tree.Height(), tree)
}

// scenarioMergeShrinksHeight drives a t=2 tree into the state where both
// children of a one-key root are minimal, then deletes through it: the
// children merge, the root drains, and the height drops by one.
func scenarioMergeShrinksHeight() {
	fmt.Println("--- Scenario 3: merge drains the root, height shrinks (t=2) ---")
	tree := newTree(2)

	for _, k := range []int64{1, 2, 3, 4} {
		tree.Insert(k)
	}
	tree.Delete(4)
	check(tree, "setup deletes")
	fmt.Printf("root and two minimal children (height %d):\n%s", tree.Height(), tree)

	tree.Delete(1)
	check(tree, "the merging delete")
	fmt.Printf("after merge (height %d):\n%s", tree.Height(), tree)
}
