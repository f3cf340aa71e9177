// Package neurobit is the public entry point for driving pattern-unit
// simulations: it owns a store, a world registry, and the run lifecycle.
package neurobit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/NahomWondimu/neurobit-simulation/internal/evo"
	"github.com/NahomWondimu/neurobit-simulation/internal/maze"
	"github.com/NahomWondimu/neurobit-simulation/internal/model"
	"github.com/NahomWondimu/neurobit-simulation/internal/platform"
	"github.com/NahomWondimu/neurobit-simulation/internal/storage"
	"github.com/NahomWondimu/neurobit-simulation/internal/unit"
	"github.com/NahomWondimu/neurobit-simulation/internal/walker"
)

const defaultDBPath = "neurobit.db"

// DefaultWorldName is registered with every client unless Options.Worlds
// overrides the registry.
const DefaultWorldName = "maze-default"

type Options struct {
	StoreKind string
	DBPath    string
	Worlds    []platform.WorldSpec
}

type Client struct {
	store storage.Store
	arena *platform.Arena
}

type RunRequest struct {
	RunID              string
	World              string
	Population         int
	Generations        int
	TicksPerGeneration int
	TTL                int
	ExplorationRate    float64
	PatternWidth       uint
	MutationRate       float64
	GoalReward         float64
	DeadEndReward      float64
	Selection          string
	Workers            int
	Seed               int64
	TopCount           int
}

type RunSummary struct {
	RunID            string
	World            string
	Generations      int
	TicksExecuted    int
	BestByGeneration []float64
	FinalBestFitness float64
	GoalsReached     uint
}

type WorldSummaryItem struct {
	Name        string
	Description string
	Rows        int
	Cols        int
	ExitCount   int
	BestFitness float64
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	worlds := opts.Worlds
	if len(worlds) == 0 {
		worlds = []platform.WorldSpec{{
			Name:        DefaultWorldName,
			Description: "depth-first maze with sampled border exits",
			Maze:        maze.DefaultConfig(),
		}}
	}

	return &Client{
		store: store,
		arena: platform.NewArena(platform.Config{Store: store, Worlds: worlds}),
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.arena.Init(ctx)
}

// Reset drops persisted artifacts and re-initializes the arena.
func (c *Client) Reset(ctx context.Context) error {
	return c.arena.Reset(ctx)
}

func (c *Client) Worlds(ctx context.Context) ([]string, error) {
	if err := c.ensureArena(ctx); err != nil {
		return nil, err
	}
	return c.arena.RegisteredWorlds(), nil
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Population <= 0 {
		return RunSummary{}, errors.New("population must be positive")
	}
	if req.Generations <= 0 {
		return RunSummary{}, errors.New("generations must be positive")
	}
	if req.TicksPerGeneration <= 0 {
		return RunSummary{}, errors.New("ticks per generation must be positive")
	}
	if err := c.ensureArena(ctx); err != nil {
		return RunSummary{}, err
	}

	world := req.World
	if world == "" {
		world = DefaultWorldName
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	selector, err := selectionFromName(req.Selection)
	if err != nil {
		return RunSummary{}, err
	}

	unitCfg := unit.DefaultConfig()
	if req.PatternWidth > 0 {
		unitCfg.Width = req.PatternWidth
	}

	result, err := c.arena.RunSimulation(ctx, platform.RunConfig{
		RunID:              runID,
		World:              world,
		PopulationSize:     req.Population,
		Generations:        req.Generations,
		TicksPerGeneration: req.TicksPerGeneration,
		TTL:                req.TTL,
		ExplorationRate:    req.ExplorationRate,
		UnitConfig:         unitCfg,
		Weights:            walker.DefaultWeights(),
		MutationRate:       req.MutationRate,
		GoalReward:         req.GoalReward,
		DeadEndReward:      req.DeadEndReward,
		Selector:           selector,
		Workers:            req.Workers,
		Seed:               req.Seed,
		TopCount:           req.TopCount,
	})
	if err != nil {
		return RunSummary{}, err
	}

	bestByGeneration := make([]float64, 0, len(result.Diagnostics))
	for _, diag := range result.Diagnostics {
		bestByGeneration = append(bestByGeneration, diag.BestFitness)
	}

	return RunSummary{
		RunID:            result.RunID,
		World:            result.World,
		Generations:      result.Generations,
		TicksExecuted:    len(result.TickHistory),
		BestByGeneration: bestByGeneration,
		FinalBestFitness: result.BestFitness,
		GoalsReached:     result.GoalsReached,
	}, nil
}

func (c *Client) RunRecord(ctx context.Context, runID string) (model.RunRecord, error) {
	if runID == "" {
		return model.RunRecord{}, errors.New("run id is required")
	}
	if err := c.ensureArena(ctx); err != nil {
		return model.RunRecord{}, err
	}

	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return model.RunRecord{}, err
	}
	if !ok {
		return model.RunRecord{}, fmt.Errorf("run not found: %s", runID)
	}
	return run, nil
}

func (c *Client) TickHistory(ctx context.Context, runID string, limit int) ([]model.TickMetrics, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	if limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	if err := c.ensureArena(ctx); err != nil {
		return nil, err
	}

	history, ok, err := c.store.GetTickHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("tick history not found for run id: %s", runID)
	}
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (c *Client) FitnessHistory(ctx context.Context, runID string, limit int) ([]float64, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	if limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	if err := c.ensureArena(ctx); err != nil {
		return nil, err
	}

	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (c *Client) Diagnostics(ctx context.Context, runID string, limit int) ([]model.GenerationDiagnostics, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	if limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	if err := c.ensureArena(ctx); err != nil {
		return nil, err
	}

	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}
	if limit > 0 && len(diagnostics) > limit {
		diagnostics = diagnostics[:limit]
	}
	return diagnostics, nil
}

func (c *Client) TopUnits(ctx context.Context, runID string, limit int) ([]model.TopUnitRecord, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	if limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	if err := c.ensureArena(ctx); err != nil {
		return nil, err
	}

	top, ok, err := c.store.GetTopUnits(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("top units not found for run id: %s", runID)
	}
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (c *Client) WorldSummary(ctx context.Context, name string) (WorldSummaryItem, error) {
	if name == "" {
		name = DefaultWorldName
	}
	if err := c.ensureArena(ctx); err != nil {
		return WorldSummaryItem{}, err
	}

	summary, ok, err := c.store.GetWorldSummary(ctx, name)
	if err != nil {
		return WorldSummaryItem{}, err
	}
	if !ok {
		return WorldSummaryItem{}, fmt.Errorf("world summary not found: %s", name)
	}
	return WorldSummaryItem{
		Name:        summary.Name,
		Description: summary.Description,
		Rows:        summary.Rows,
		Cols:        summary.Cols,
		ExitCount:   summary.ExitCount,
		BestFitness: summary.BestFitness,
	}, nil
}

func (c *Client) ensureArena(ctx context.Context) error {
	if c.arena.Started() {
		return nil
	}
	return c.arena.Init(ctx)
}

func selectionFromName(name string) (evo.Selector, error) {
	switch name {
	case "", "elite":
		return evo.EliteSelector{}, nil
	case "tournament":
		return evo.TournamentSelector{PoolSize: 0, TournamentSize: 3}, nil
	default:
		return nil, fmt.Errorf("unsupported selection strategy: %s", name)
	}
}
