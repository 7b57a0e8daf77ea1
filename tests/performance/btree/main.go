// Standalone driver that hammers the in-memory B-tree with a bulk
// write/read/delete cycle and reports the wall-clock cost of each pass.
// Useful for quick eyeballing without the full benchmark harness:
//
//	go run ./tests/performance/btree
package main

import (
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/nishant-716/structbench/core/structures/btree"
	"github.com/nishant-716/structbench/pkg/logger"
)

const (
	degree  = 3
	numKeys = 2_000_000
)

func main() {
	zlogger, err := logger.New(logger.Config{Level: "info", Format: "console", OutputFile: "stderr"})
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zlogger.Sync()

	tree, err := btree.New(degree, btree.DefaultOrder[int64])
	if err != nil {
		log.Fatalf("failed to create btree: %v", err)
	}

	write(tree, zlogger)
	read(tree, zlogger)
	remove(tree, zlogger)
}

func write(tree *btree.BTree[int64], zlogger *zap.Logger) {
	start := time.Now()
	for i := int64(0); i < numKeys; i++ {
		tree.Insert(i)
	}
	zlogger.Info("write pass complete",
		zap.Int("keys", tree.Len()),
		zap.Int("height", tree.Height()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func read(tree *btree.BTree[int64], zlogger *zap.Logger) {
	start := time.Now()
	misses := 0
	for i := int64(0); i < numKeys; i++ {
		if !tree.Search(i) {
			misses++
		}
	}
	if misses > 0 {
		zlogger.Error("read pass lost keys", zap.Int("misses", misses))
	}
	zlogger.Info("read pass complete", zap.Duration("elapsed", time.Since(start)))
}

func remove(tree *btree.BTree[int64], zlogger *zap.Logger) {
	start := time.Now()
	for i := int64(0); i < numKeys; i++ {
		tree.Delete(i)
	}
	if err := tree.Validate(); err != nil {
		zlogger.Error("invariant violated after delete pass", zap.Error(err))
	}
	zlogger.Info("delete pass complete",
		zap.Int("remaining", tree.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
}
