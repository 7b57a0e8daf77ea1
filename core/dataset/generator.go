// Package dataset generates, persists, and loads the integer key datasets
// the benchmark harness runs against.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrInvalidRange   = errors.New("dataset min value must be below max value")
	ErrDatasetMissing = errors.New("dataset file not found")
)

// Standard dataset size tiers used by the benchmark drivers.
var StandardSizes = map[string][]int{
	"small":  {1000, 5000, 10000},
	"medium": {50000, 100000},
	"large":  {500000, 1000000},
}

// Config holds the configuration for a Generator.
type Config struct {
	// MinValue and MaxValue bound the generated keys, inclusive.
	MinValue int64 `yaml:"min_value"`
	// MaxValue defaults to 1,000,000 when zero.
	MaxValue int64 `yaml:"max_value"`
	// Dir is the directory datasets are saved to and loaded from.
	Dir string `yaml:"dir"`
}

// Generator creates random key datasets and manages their on-disk copies.
type Generator struct {
	minValue int64
	maxValue int64
	dir      string
	logger   *zap.Logger
}

// NewGenerator creates a Generator, creating the dataset directory if it
// does not exist yet.
func NewGenerator(config Config, logger *zap.Logger) (*Generator, error) {
	if config.MinValue == 0 && config.MaxValue == 0 {
		config.MinValue, config.MaxValue = 1, 1000000
	}
	if config.MinValue >= config.MaxValue {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, config.MinValue, config.MaxValue)
	}
	if config.Dir == "" {
		config.Dir = "datasets"
	}
	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create dataset directory %s: %w", config.Dir, err)
	}
	return &Generator{
		minValue: config.MinValue,
		maxValue: config.MaxValue,
		dir:      config.Dir,
		logger:   logger,
	}, nil
}

// Generate returns size random keys drawn uniformly from the configured
// range. The same seed always yields the same dataset.
func (g *Generator) Generate(size int, seed int64) []int64 {
	rng := rand.New(rand.NewSource(seed))
	span := g.maxValue - g.minValue + 1
	ds := make([]int64, size)
	for i := range ds {
		ds[i] = g.minValue + rng.Int63n(span)
	}
	return ds
}

// Save writes a dataset as <dir>/<name>.json.
func (g *Generator) Save(ds []int64, name string) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("failed to encode dataset %s: %w", name, err)
	}
	path := g.path(name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write dataset %s: %w", path, err)
	}
	return nil
}

// Load reads a previously saved dataset by name.
func (g *Generator) Load(name string) ([]int64, error) {
	path := g.path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetMissing, path)
		}
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	var ds []int64
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset %s: %w", path, err)
	}
	return ds, nil
}

// GenerateAndSave produces one dataset per requested size, named
// <prefix>_<size>, all derived from the same seed.
func (g *Generator) GenerateAndSave(sizes []int, prefix string, seed int64) error {
	for _, size := range sizes {
		ds := g.Generate(size, seed)
		name := fmt.Sprintf("%s_%d", prefix, size)
		if err := g.Save(ds, name); err != nil {
			return err
		}
		g.logger.Info("generated dataset",
			zap.String("name", name),
			zap.Int("size", size),
			zap.Int64("seed", seed),
		)
	}
	return nil
}

// List returns the names of all saved datasets, without extension.
func (g *Generator) List() ([]string, error) {
	entries, err := filepath.Glob(filepath.Join(g.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets in %s: %w", g.dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(filepath.Base(e), ".json"))
	}
	return names, nil
}

func (g *Generator) path(name string) string {
	return filepath.Join(g.dir, name+".json")
}
