package platform

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/NahomWondimu/neurobit-simulation/internal/evo"
	"github.com/NahomWondimu/neurobit-simulation/internal/maze"
	"github.com/NahomWondimu/neurobit-simulation/internal/model"
	"github.com/NahomWondimu/neurobit-simulation/internal/storage"
	"github.com/NahomWondimu/neurobit-simulation/internal/swarm"
	"github.com/NahomWondimu/neurobit-simulation/internal/unit"
	"github.com/NahomWondimu/neurobit-simulation/internal/walker"
)

// WorldSpec names a maze layout the arena can run simulations against.
type WorldSpec struct {
	Name        string
	Description string
	Maze        maze.Config
}

type Config struct {
	Store  storage.Store
	Worlds []WorldSpec
}

// Arena owns the store and the world registry, and drives complete
// simulation runs from spawn through evolution to persisted artifacts.
type Arena struct {
	store storage.Store

	mu      sync.RWMutex
	worlds  map[string]WorldSpec
	started bool

	config Config
}

func NewArena(cfg Config) *Arena {
	return &Arena{
		store:  cfg.Store,
		worlds: make(map[string]WorldSpec),
		config: cfg,
	}
}

func (a *Arena) Init(ctx context.Context) error {
	if a.store == nil {
		return fmt.Errorf("store is required")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return nil
	}
	if err := a.store.Init(ctx); err != nil {
		return err
	}

	for i, spec := range a.config.Worlds {
		if spec.Name == "" {
			a.worlds = make(map[string]WorldSpec)
			return fmt.Errorf("world name is required at index %d", i)
		}
		if _, exists := a.worlds[spec.Name]; exists {
			a.worlds = make(map[string]WorldSpec)
			return fmt.Errorf("duplicate world: %s", spec.Name)
		}
		a.worlds[spec.Name] = spec
	}

	a.started = true
	return nil
}

// Reset discards persisted artifacts where the store supports it, then
// re-initializes the arena.
func (a *Arena) Reset(ctx context.Context) error {
	a.mu.Lock()
	a.started = false
	a.mu.Unlock()

	if resetter, ok := a.store.(storage.Resetter); ok {
		if err := resetter.Reset(ctx); err != nil {
			return err
		}
	}
	return a.Init(ctx)
}

func (a *Arena) RegisterWorld(spec WorldSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("world name is required")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.worlds[spec.Name]; exists {
		return fmt.Errorf("duplicate world: %s", spec.Name)
	}
	a.worlds[spec.Name] = spec
	return nil
}

func (a *Arena) World(name string) (WorldSpec, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	spec, ok := a.worlds[name]
	return spec, ok
}

func (a *Arena) RegisteredWorlds() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.worlds))
	for name := range a.worlds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *Arena) Started() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.started
}

type RunConfig struct {
	RunID              string
	World              string
	PopulationSize     int
	Generations        int
	TicksPerGeneration int

	TTL             int
	ExplorationRate float64
	UnitConfig      unit.Config
	Weights         walker.Weights
	MutationRate    float64
	GoalReward      float64
	DeadEndReward   float64
	Selector        evo.Selector
	Workers         int
	Seed            int64
	TopCount        int
}

type RunResult struct {
	RunID        string
	World        string
	Generations  int
	BestFitness  float64
	GoalsReached uint
	TickHistory  []model.TickMetrics
	Diagnostics  []model.GenerationDiagnostics
	TopUnits     []model.TopUnitRecord
}

// RunSimulation generates the named world, runs the configured number of
// generations, and persists the run's artifacts under the run ID.
func (a *Arena) RunSimulation(ctx context.Context, cfg RunConfig) (RunResult, error) {
	if cfg.World == "" {
		return RunResult{}, fmt.Errorf("world name is required")
	}
	if cfg.PopulationSize <= 0 {
		return RunResult{}, fmt.Errorf("population size must be positive: %d", cfg.PopulationSize)
	}
	if cfg.Generations <= 0 {
		return RunResult{}, fmt.Errorf("generation count must be positive: %d", cfg.Generations)
	}
	if cfg.TicksPerGeneration <= 0 {
		return RunResult{}, fmt.Errorf("ticks per generation must be positive: %d", cfg.TicksPerGeneration)
	}
	if cfg.TopCount <= 0 {
		cfg.TopCount = 5
	}

	a.mu.RLock()
	spec, ok := a.worlds[cfg.World]
	started := a.started
	a.mu.RUnlock()

	if !started {
		return RunResult{}, fmt.Errorf("arena is not initialized")
	}
	if !ok {
		return RunResult{}, fmt.Errorf("world not registered: %s", cfg.World)
	}

	runID := cfg.RunID
	if runID == "" {
		runID = fmt.Sprintf("sim:%s:%d", cfg.World, cfg.Seed)
	}

	mazeCfg := spec.Maze
	mazeCfg.Seed = cfg.Seed
	grid, err := maze.Generate(mazeCfg)
	if err != nil {
		return RunResult{}, fmt.Errorf("generate world %s: %w", cfg.World, err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = grid.Rows() * grid.Cols()
	}

	pop, err := swarm.New(swarm.Config[maze.Cell]{
		Provider:        grid,
		MaxPopulation:   cfg.PopulationSize,
		SpawnPosition:   maze.Cell{Row: 0, Col: 0},
		TTL:             ttl,
		ExplorationRate: cfg.ExplorationRate,
		UnitConfig:      cfg.UnitConfig,
		Weights:         cfg.Weights,
		MutationRate:    cfg.MutationRate,
		GoalReward:      cfg.GoalReward,
		DeadEndReward:   cfg.DeadEndReward,
		Selector:        cfg.Selector,
		Workers:         cfg.Workers,
		Seed:            cfg.Seed,
	})
	if err != nil {
		return RunResult{}, err
	}
	for i := 0; i < cfg.PopulationSize; i++ {
		if _, err := pop.SpawnDefault(); err != nil {
			return RunResult{}, err
		}
	}

	diagnostics := make([]model.GenerationDiagnostics, 0, cfg.Generations)
	fitnessHistory := make([]float64, 0, cfg.Generations)
	goalsReached := uint(0)
	bestOverall := 0.0

	for gen := 0; gen < cfg.Generations; gen++ {
		for tick := 0; tick < cfg.TicksPerGeneration; tick++ {
			if pop.Len() == 0 {
				break
			}
			if _, err := pop.Tick(ctx); err != nil {
				return RunResult{}, fmt.Errorf("tick generation %d: %w", gen, err)
			}
		}

		diag := generationDiagnostics(pop, gen)
		diagnostics = append(diagnostics, diag)
		goalsReached += uint(diag.GoalCount)
		fitnessHistory = append(fitnessHistory, diag.BestFitness)
		if diag.BestFitness > bestOverall {
			bestOverall = diag.BestFitness
		}

		if gen < cfg.Generations-1 {
			if err := pop.Evolve(); err != nil {
				return RunResult{}, fmt.Errorf("evolve generation %d: %w", gen, err)
			}
		}
	}

	top := topUnits(pop, cfg.TopCount)
	result := RunResult{
		RunID:        runID,
		World:        cfg.World,
		Generations:  cfg.Generations,
		BestFitness:  bestOverall,
		GoalsReached: goalsReached,
		TickHistory:  tickHistory(pop),
		Diagnostics:  diagnostics,
		TopUnits:     top,
	}

	if err := a.persistRun(ctx, spec, cfg, result, fitnessHistory, runSnapshots(pop)); err != nil {
		return RunResult{}, err
	}
	return result, nil
}

func generationDiagnostics(pop *swarm.Swarm[maze.Cell], generation int) model.GenerationDiagnostics {
	agents := pop.AllAgents()
	diag := model.GenerationDiagnostics{Generation: generation}
	if len(agents) == 0 {
		return diag
	}

	sum := 0.0
	diag.MinFitness = pop.FitnessOf(agents[0])
	for _, agent := range agents {
		f := pop.FitnessOf(agent)
		sum += f
		if f > diag.BestFitness {
			diag.BestFitness = f
		}
		if f < diag.MinFitness {
			diag.MinFitness = f
		}
		if agent.ReachedGoal {
			diag.GoalCount++
		}
		if agent.Alive() {
			diag.LiveCount++
		} else {
			diag.RetiredCount++
		}
	}
	diag.MeanFitness = sum / float64(len(agents))
	return diag
}

func topUnits(pop *swarm.Swarm[maze.Cell], count int) []model.TopUnitRecord {
	agents := pop.AllAgents()
	sort.SliceStable(agents, func(i, j int) bool {
		return pop.FitnessOf(agents[i]) > pop.FitnessOf(agents[j])
	})
	if count > len(agents) {
		count = len(agents)
	}

	top := make([]model.TopUnitRecord, 0, count)
	for i := 0; i < count; i++ {
		agent := agents[i]
		top = append(top, model.TopUnitRecord{
			Rank:            i + 1,
			AgentID:         agent.ID,
			Fitness:         pop.FitnessOf(agent),
			Pattern:         agent.Unit.Pattern,
			Mask:            agent.Unit.Mask,
			ActivationCount: agent.Unit.ActivationCount,
			ReachedGoal:     agent.ReachedGoal,
		})
	}
	return top
}

func tickHistory(pop *swarm.Swarm[maze.Cell]) []model.TickMetrics {
	history := pop.History()
	out := make([]model.TickMetrics, 0, len(history))
	for i, metrics := range history {
		out = append(out, model.TickMetrics{
			Tick:       i + 1,
			Total:      metrics.Total,
			Successful: metrics.Successful,
			Adapted:    metrics.Adapted,
		})
	}
	return out
}

func runSnapshots(pop *swarm.Swarm[maze.Cell]) []model.AgentSnapshot {
	agents := pop.AllAgents()
	out := make([]model.AgentSnapshot, 0, len(agents))
	for _, agent := range agents {
		out = append(out, model.AgentSnapshot{
			ID:              agent.ID,
			Position:        agent.Position.String(),
			Pattern:         agent.Unit.Pattern,
			Mask:            agent.Unit.Mask,
			ActivationCount: agent.Unit.ActivationCount,
			Alive:           agent.Alive(),
			ReachedGoal:     agent.ReachedGoal,
		})
	}
	return out
}

func (a *Arena) persistRun(ctx context.Context, spec WorldSpec, cfg RunConfig, result RunResult, fitnessHistory []float64, agents []model.AgentSnapshot) error {
	versions := model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}

	run := model.RunRecord{
		VersionedRecord:    versions,
		ID:                 result.RunID,
		World:              result.World,
		Seed:               cfg.Seed,
		Population:         cfg.PopulationSize,
		Generations:        cfg.Generations,
		TicksPerGeneration: cfg.TicksPerGeneration,
		BestFitness:        result.BestFitness,
		GoalsReached:       result.GoalsReached,
		Agents:             agents,
		CompletedAt:        time.Now().UTC().Format(time.RFC3339),
	}
	if err := a.store.SaveRun(ctx, run); err != nil {
		return err
	}
	if err := a.store.SaveTickHistory(ctx, result.RunID, result.TickHistory); err != nil {
		return err
	}
	if err := a.store.SaveFitnessHistory(ctx, result.RunID, fitnessHistory); err != nil {
		return err
	}
	if err := a.store.SaveGenerationDiagnostics(ctx, result.RunID, result.Diagnostics); err != nil {
		return err
	}
	if err := a.store.SaveTopUnits(ctx, result.RunID, result.TopUnits); err != nil {
		return err
	}
	return a.updateWorldSummary(ctx, spec, result.BestFitness)
}

func (a *Arena) updateWorldSummary(ctx context.Context, spec WorldSpec, fitness float64) error {
	summary, ok, err := a.store.GetWorldSummary(ctx, spec.Name)
	if err != nil {
		return err
	}
	if !ok {
		summary = model.WorldSummary{
			VersionedRecord: model.VersionedRecord{
				SchemaVersion: storage.CurrentSchemaVersion,
				CodecVersion:  storage.CurrentCodecVersion,
			},
			Name:        spec.Name,
			Description: spec.Description,
			Rows:        spec.Maze.Rows,
			Cols:        spec.Maze.Cols,
			ExitCount:   spec.Maze.ExitCount,
		}
	}
	if fitness > summary.BestFitness {
		summary.BestFitness = fitness
	}
	return a.store.SaveWorldSummary(ctx, summary)
}
