package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/NahomWondimu/neurobit-simulation/internal/storage"
	"github.com/NahomWondimu/neurobit-simulation/pkg/neurobit"
)

const defaultDBPath = "neurobit.db"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "worlds":
		return runWorlds(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "ticks":
		return runTicks(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "top":
		return runTop(ctx, args[1:])
	case "world-summary":
		return runWorldSummary(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func newClient(storeKind, dbPath string) (*neurobit.Client, error) {
	return neurobit.New(neurobit.Options{
		StoreKind: storeKind,
		DBPath:    dbPath,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runWorlds(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("worlds", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	worlds, err := client.Worlds(ctx)
	if err != nil {
		return err
	}
	for _, name := range worlds {
		fmt.Println(name)
	}
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config path (JSON or YAML)")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	world := fs.String("world", neurobit.DefaultWorldName, "world name")
	population := fs.Int("pop", 32, "population size")
	generations := fs.Int("gens", 10, "generation count")
	ticks := fs.Int("ticks", 200, "ticks per generation")
	ttl := fs.Int("ttl", 0, "agent step budget (0 derives from world size)")
	exploration := fs.Float64("exploration", 0.1, "exploration rate in [0,1]")
	patternWidth := fs.Uint("width", 8, "pattern width in bits")
	mutationRate := fs.Float64("mutation-rate", 0.05, "per-bit mutation probability")
	goalReward := fs.Float64("goal-reward", 1.0, "reward delivered on goal arrival (0 disables)")
	deadEndReward := fs.Float64("dead-end-reward", -0.5, "reward delivered on termination without goal (0 disables)")
	selectionName := fs.String("selection", "elite", "parent selection strategy: elite|tournament")
	workers := fs.Int("workers", 4, "worker count")
	seed := fs.Int64("seed", 1, "rng seed")
	topCount := fs.Int("top-count", 5, "top units persisted per run")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit run summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var req neurobit.RunRequest
	if *configPath != "" {
		loaded, err := loadRunRequest(*configPath)
		if err != nil {
			return err
		}
		req = loaded
	} else {
		req = neurobit.RunRequest{
			RunID:              *runID,
			World:              *world,
			Population:         *population,
			Generations:        *generations,
			TicksPerGeneration: *ticks,
			TTL:                *ttl,
			ExplorationRate:    *exploration,
			PatternWidth:       *patternWidth,
			MutationRate:       *mutationRate,
			GoalReward:         *goalReward,
			DeadEndReward:      *deadEndReward,
			Selection:          *selectionName,
			Workers:            *workers,
			Seed:               *seed,
			TopCount:           *topCount,
		}
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(summary)
	}

	fmt.Printf("run=%s world=%s generations=%d ticks=%s goals=%s best=%.2f\n",
		summary.RunID,
		summary.World,
		summary.Generations,
		humanize.Comma(int64(summary.TicksExecuted)),
		humanize.Comma(int64(summary.GoalsReached)),
		summary.FinalBestFitness,
	)
	for gen, best := range summary.BestByGeneration {
		fmt.Printf("  gen=%d best=%.2f\n", gen, best)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("fitness requires --run-id")
	}
	if *limit < 0 {
		*limit = 0
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, *runID, *limit)
	if err != nil {
		return err
	}
	for gen, best := range history {
		fmt.Printf("gen=%d best=%.2f\n", gen, best)
	}
	return nil
}

func runTicks(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ticks", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	limit := fs.Int("limit", 50, "max ticks to print (<=0 for all)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("ticks requires --run-id")
	}
	if *limit < 0 {
		*limit = 0
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.TickHistory(ctx, *runID, *limit)
	if err != nil {
		return err
	}
	for _, metrics := range history {
		fmt.Printf("tick=%d total=%d successful=%d adapted=%d\n",
			metrics.Tick, metrics.Total, metrics.Successful, metrics.Adapted)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit diagnostics as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("diagnostics requires --run-id")
	}
	if *limit < 0 {
		*limit = 0
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, err := client.Diagnostics(ctx, *runID, *limit)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(diagnostics)
	}
	for _, diag := range diagnostics {
		fmt.Printf("gen=%d best=%.2f mean=%.2f min=%.2f goals=%d live=%d retired=%d\n",
			diag.Generation, diag.BestFitness, diag.MeanFitness, diag.MinFitness,
			diag.GoalCount, diag.LiveCount, diag.RetiredCount)
	}
	return nil
}

func runTop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	limit := fs.Int("limit", 5, "max top units to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit top units as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("top requires --run-id")
	}
	if *limit < 0 {
		*limit = 0
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	top, err := client.TopUnits(ctx, *runID, *limit)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(top)
	}
	for _, record := range top {
		fmt.Printf("rank=%d agent=%s fitness=%.2f pattern=0x%X mask=0x%X activations=%s goal=%t\n",
			record.Rank, record.AgentID, record.Fitness, record.Pattern, record.Mask,
			humanize.Comma(int64(record.ActivationCount)), record.ReachedGoal)
	}
	return nil
}

func runWorldSummary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("world-summary", flag.ContinueOnError)
	name := fs.String("world", neurobit.DefaultWorldName, "world name")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.WorldSummary(ctx, *name)
	if err != nil {
		return err
	}

	fmt.Printf("world=%s size=%dx%d exits=%d best=%.2f\n",
		summary.Name, summary.Rows, summary.Cols, summary.ExitCount, summary.BestFitness)
	if summary.Description != "" {
		fmt.Printf("  %s\n", summary.Description)
	}
	return nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: neurobitctl <init|reset|worlds|run|fitness|ticks|diagnostics|top|world-summary> [flags]", msg)
}
