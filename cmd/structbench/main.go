// Command structbench generates key datasets, benchmarks the data
// structures in core/structures against them, and provides an interactive
// shell for poking at a single structure.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"github.com/nishant-716/structbench/core/benchmark"
	"github.com/nishant-716/structbench/core/dataset"
	"github.com/nishant-716/structbench/pkg/logger"
	"github.com/nishant-716/structbench/pkg/telemetry"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "generate":
		err = runGenerate(args)
	case "bench":
		err = runBench(args)
	case "latency":
		err = runLatency(args)
	case "memory":
		err = runMemory(args)
	case "repl":
		err = runRepl(args)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "structbench: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: structbench <command> [flags]

Commands:
  generate   Generate the standard dataset tiers as JSON files.
  bench      Time insert/search/delete phases for every structure.
  latency    Sample individual insertion latency while a structure grows.
  memory     Measure heap growth while a structure is bulk loaded.
  repl       Interactive shell over a single structure.

Run "structbench <command> -h" for command flags.
`)
}

func newLogger(level string) (*zap.Logger, error) {
	return logger.New(logger.Config{Level: level, Format: "console", OutputFile: "stderr"})
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	dir := fs.String("dir", "datasets", "directory to write datasets to")
	seed := fs.Int64("seed", 42, "random seed for reproducible datasets")
	tier := fs.String("tier", "all", "size tier to generate: small, medium, large, or all")
	logLevel := fs.String("log-level", "info", "minimum log level")
	fs.Parse(args)

	zlog, err := newLogger(*logLevel)
	if err != nil {
		return err
	}
	defer zlog.Sync()

	gen, err := dataset.NewGenerator(dataset.Config{Dir: *dir}, zlog)
	if err != nil {
		return err
	}

	tiers := dataset.StandardSizes
	if *tier != "all" {
		sizes, ok := tiers[*tier]
		if !ok {
			return fmt.Errorf("unknown tier %q", *tier)
		}
		tiers = map[string][]int{*tier: sizes}
	}

	// Deterministic tier order for readable output.
	names := make([]string, 0, len(tiers))
	for name := range tiers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := gen.GenerateAndSave(tiers[name], name, *seed); err != nil {
			return err
		}
	}

	saved, err := gen.List()
	if err != nil {
		return err
	}
	zlog.Info("datasets available", zap.Strings("names", saved))
	return nil
}

// benchFlags holds the flags shared by the measuring subcommands.
type benchFlags struct {
	fs       *flag.FlagSet
	degree   *int
	logLevel *string
	metrics  *bool
	port     *int
}

func newBenchFlags(name string) benchFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return benchFlags{
		fs:       fs,
		degree:   fs.Int("degree", 3, "minimum degree of the B-tree"),
		logLevel: fs.String("log-level", "info", "minimum log level"),
		metrics:  fs.Bool("metrics", false, "expose Prometheus metrics while running"),
		port:     fs.Int("metrics-port", 9090, "port for the /metrics endpoint"),
	}
}

func (bf benchFlags) bootstrap() (*zap.Logger, *telemetry.Telemetry, func(), error) {
	zlog, err := newLogger(*bf.logLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	tel, shutdownTel, err := telemetry.New(telemetry.Config{
		Enabled:        *bf.metrics,
		ServiceName:    "structbench",
		PrometheusPort: *bf.port,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() {
		if err := shutdownTel(context.Background()); err != nil {
			zlog.Warn("telemetry shutdown failed", zap.Error(err))
		}
		zlog.Sync()
	}
	return zlog, tel, cleanup, nil
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		size, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("invalid dataset size %q", part)
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}

func runBench(args []string) error {
	bf := newBenchFlags("bench")
	sizesFlag := bf.fs.String("sizes", "1000,10000,100000", "comma-separated dataset sizes")
	seed := bf.fs.Int64("seed", 42, "random seed for generated datasets")
	opsPerSec := bf.fs.Float64("ops-per-second", 0, "throttle operations per second, 0 for unthrottled")
	out := bf.fs.String("out", "benchmark_report", "report path prefix, writes <out>.json and <out>.csv")
	bf.fs.Parse(args)

	sizes, err := parseSizes(*sizesFlag)
	if err != nil {
		return err
	}

	zlog, tel, cleanup, err := bf.bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	gen, err := dataset.NewGenerator(dataset.Config{}, zlog)
	if err != nil {
		return err
	}
	runner, err := benchmark.NewRunner(benchmark.RunnerConfig{OpsPerSecond: *opsPerSec}, zlog, tel)
	if err != nil {
		return err
	}

	report := benchmark.NewReport()
	zlog.Info("starting benchmark run", zap.String("run_id", report.RunID), zap.Ints("sizes", sizes))

	factories := benchmark.StandardFactories(*bf.degree)
	structureNames := make([]string, 0, len(factories))
	for name := range factories {
		structureNames = append(structureNames, name)
	}
	sort.Strings(structureNames)

	ctx := context.Background()
	for _, size := range sizes {
		keys := gen.Generate(size, *seed)
		for _, name := range structureNames {
			store, err := factories[name]()
			if err != nil {
				return err
			}
			zlog.Info("benchmarking", zap.String("structure", name), zap.Int("dataset_size", size))
			result, err := runner.Run(ctx, store, keys)
			if err != nil {
				return err
			}
			report.Add(name, size, result)
		}
	}

	if err := report.WriteJSON(*out + ".json"); err != nil {
		return err
	}
	if err := report.WriteCSV(*out + ".csv"); err != nil {
		return err
	}
	zlog.Info("reports written", zap.String("json", *out+".json"), zap.String("csv", *out+".csv"))
	return nil
}

func runLatency(args []string) error {
	bf := newBenchFlags("latency")
	structure := bf.fs.String("structure", "btree", "structure to sample: btree, rbtree, or arenalist")
	maxSize := bf.fs.Int("max-size", 1000000, "number of elements to grow the structure to")
	interval := bf.fs.Int("interval", 10000, "insertions between sampling checkpoints")
	probes := bf.fs.Int("probes", 100, "timed insertions averaged per checkpoint")
	window := bf.fs.Int("window", 5, "moving-average smoothing window")
	seed := bf.fs.Int64("seed", 42, "random seed for the key stream")
	out := bf.fs.String("out", "latency_curve.json", "output path for the sampled curve")
	bf.fs.Parse(args)

	zlog, tel, cleanup, err := bf.bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	factory, ok := benchmark.StandardFactories(*bf.degree)[*structure]
	if !ok {
		return fmt.Errorf("unknown structure %q", *structure)
	}
	store, err := factory()
	if err != nil {
		return err
	}
	runner, err := benchmark.NewRunner(benchmark.RunnerConfig{}, zlog, tel)
	if err != nil {
		return err
	}

	curve, err := runner.SampleInsertLatency(context.Background(), store, benchmark.LatencyConfig{
		MaxSize:           *maxSize,
		MeasureInterval:   *interval,
		ProbesPerInterval: *probes,
		Window:            *window,
		Seed:              *seed,
	})
	if err != nil {
		return err
	}

	if err := writeJSON(*out, curve); err != nil {
		return err
	}
	zlog.Info("latency curve written",
		zap.String("structure", *structure),
		zap.Int("checkpoints", len(curve.Points)),
		zap.String("path", *out),
	)
	return nil
}

func runMemory(args []string) error {
	bf := newBenchFlags("memory")
	sizesFlag := bf.fs.String("sizes", "1000,10000,100000,1000000", "comma-separated dataset sizes")
	seed := bf.fs.Int64("seed", 42, "random seed for generated datasets")
	out := bf.fs.String("out", "memory_report.json", "output path for the memory report")
	bf.fs.Parse(args)

	sizes, err := parseSizes(*sizesFlag)
	if err != nil {
		return err
	}

	zlog, _, cleanup, err := bf.bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	gen, err := dataset.NewGenerator(dataset.Config{}, zlog)
	if err != nil {
		return err
	}

	factories := benchmark.StandardFactories(*bf.degree)
	structureNames := make([]string, 0, len(factories))
	for name := range factories {
		structureNames = append(structureNames, name)
	}
	sort.Strings(structureNames)

	var usages []benchmark.MemoryUsage
	for _, size := range sizes {
		keys := gen.Generate(size, *seed)
		for _, name := range structureNames {
			store, err := factories[name]()
			if err != nil {
				return err
			}
			usages = append(usages, benchmark.MeasureMemory(store, keys, zlog))
		}
	}

	if err := writeJSON(*out, usages); err != nil {
		return err
	}
	zlog.Info("memory report written", zap.String("path", *out))
	return nil
}

func runRepl(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	structure := fs.String("structure", "btree", "structure to drive: btree, rbtree, or arenalist")
	degree := fs.Int("degree", 3, "minimum degree of the B-tree")
	fs.Parse(args)

	factory, ok := benchmark.StandardFactories(*degree)[*structure]
	if !ok {
		return fmt.Errorf("unknown structure %q", *structure)
	}
	store, err := factory()
	if err != nil {
		return err
	}

	rl, err := readline.New(*structure + "> ")
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	fmt.Printf("structbench repl driving %s; type \"help\" for commands\n", *structure)
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}
		if done := dispatchReplLine(store, strings.TrimSpace(line)); done {
			return nil
		}
	}
}

// dispatchReplLine executes one shell command against store. It returns
// true when the shell should exit.
func dispatchReplLine(store benchmark.Store, line string) bool {
	if line == "" {
		return false
	}
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])

	parseKey := func() (int64, bool) {
		if len(fields) < 2 {
			fmt.Println("expected a key, e.g.: insert 42")
			return 0, false
		}
		key, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			fmt.Printf("bad key %q: %v\n", fields[1], err)
			return 0, false
		}
		return key, true
	}

	switch cmd {
	case "insert":
		if key, ok := parseKey(); ok {
			if store.Insert(key) {
				fmt.Println("inserted")
			} else {
				fmt.Println("already present")
			}
		}
	case "search", "read":
		if key, ok := parseKey(); ok {
			if store.Search(key) {
				fmt.Println("present")
			} else {
				fmt.Println("absent")
			}
		}
	case "delete":
		if key, ok := parseKey(); ok {
			if store.Delete(key) {
				fmt.Println("deleted")
			} else {
				fmt.Println("not found")
			}
		}
	case "len":
		fmt.Println(store.Len())
	case "height":
		if h, ok := store.(interface{ Height() int }); ok {
			fmt.Println(h.Height())
		} else {
			fmt.Println("height not supported for this structure")
		}
	case "validate":
		if v, ok := store.(interface{ Validate() error }); ok {
			if err := v.Validate(); err != nil {
				fmt.Printf("INVARIANT VIOLATION: %v\n", err)
			} else {
				fmt.Println("ok")
			}
		} else {
			fmt.Println("validate not supported for this structure")
		}
	case "dump":
		if s, ok := store.(fmt.Stringer); ok {
			fmt.Print(s.String())
		} else {
			fmt.Println("dump not supported for this structure")
		}
	case "help":
		fmt.Println("commands: insert <key>, search <key>, delete <key>, len, height, validate, dump, exit")
	case "exit", "quit":
		return true
	default:
		fmt.Printf("unknown command %q; type \"help\"\n", cmd)
	}
	return false
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
