// Package swarm implements the population manager: a capacity-bounded,
// insertion-ordered collection of agents advanced synchronously each tick
// and evolved across generations by selection, crossover and mutation.
package swarm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/NahomWondimu/neurobit-simulation/internal/env"
	"github.com/NahomWondimu/neurobit-simulation/internal/evo"
	"github.com/NahomWondimu/neurobit-simulation/internal/unit"
	"github.com/NahomWondimu/neurobit-simulation/internal/walker"
)

var (
	// ErrEmptyPopulation reports an evolution attempt with nothing to
	// select from. Fatal to the run.
	ErrEmptyPopulation = errors.New("population is empty")
	// ErrPopulationFull reports a spawn beyond the configured capacity.
	ErrPopulationFull = errors.New("population is at capacity")
)

// Metrics aggregates one tick: agents advanced, agents that reached a goal
// this tick, and agents whose activation counter grew this tick.
type Metrics struct {
	Total      uint `json:"total"`
	Successful uint `json:"successful"`
	Adapted    uint `json:"adapted"`
}

// Snapshot is one agent's observable state, for inspection and rendering.
type Snapshot[P comparable] struct {
	Position        P
	Pattern         uint64
	Mask            uint64
	ActivationCount uint32
	Alive           bool
}

type Config[P comparable] struct {
	Provider      env.Provider[P]
	MaxPopulation int
	SpawnPosition P

	// Defaults applied to offspring produced by Evolve.
	TTL             int
	ExplorationRate float64

	UnitConfig   unit.Config
	Weights      walker.Weights
	MutationRate float64

	// GoalReward is fed to an agent's unit the tick it first reaches a
	// goal; DeadEndReward when it terminates without one. Zero disables.
	GoalReward    float64
	DeadEndReward float64

	Selector evo.Selector
	Workers  int
	Seed     int64
}

// Swarm owns the agent collection. Agents that die during a tick move to a
// retired set so they still compete for eliteship at the next evolution;
// only Evolve discards them for good.
type Swarm[P comparable] struct {
	cfg Config[P]
	rng *rand.Rand

	agents     []*walker.Agent[P]
	retired    []*walker.Agent[P]
	generation int
	history    []Metrics
	spawned    int
}

func New[P comparable](cfg Config[P]) (*Swarm[P], error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if cfg.MaxPopulation <= 0 {
		return nil, fmt.Errorf("max population must be > 0")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("ttl must be > 0")
	}
	if cfg.ExplorationRate < 0 || cfg.ExplorationRate > 1 {
		return nil, fmt.Errorf("exploration rate must be in [0, 1], got %v", cfg.ExplorationRate)
	}
	if cfg.MutationRate < 0 || cfg.MutationRate > 1 {
		return nil, fmt.Errorf("mutation rate must be in [0, 1], got %v", cfg.MutationRate)
	}
	if cfg.UnitConfig == (unit.Config{}) {
		cfg.UnitConfig = unit.DefaultConfig()
	}
	if cfg.Weights == (walker.Weights{}) {
		cfg.Weights = walker.DefaultWeights()
	}
	if cfg.Selector == nil {
		cfg.Selector = evo.EliteSelector{}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Swarm[P]{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Spawn adds an agent at pos. A nil patternSeed draws a random pattern with
// a full mask; a non-nil one fixes the initial pattern. The agent's unit and
// rng are exclusively its own.
func (s *Swarm[P]) Spawn(pos P, ttl int, explorationRate float64, patternSeed *uint64) (*walker.Agent[P], error) {
	if len(s.agents) >= s.cfg.MaxPopulation {
		return nil, fmt.Errorf("spawn at %v: %w", pos, ErrPopulationFull)
	}

	var (
		u   unit.Unit
		err error
	)
	if patternSeed != nil {
		u, err = unit.New(s.cfg.UnitConfig, *patternSeed, s.cfg.UnitConfig.MaxValue())
	} else {
		u, err = unit.NewRandom(s.cfg.UnitConfig, s.rng)
	}
	if err != nil {
		return nil, err
	}

	agent, err := walker.New(s.nextID(), pos, u, ttl, explorationRate, s.agentRand())
	if err != nil {
		return nil, err
	}
	s.agents = append(s.agents, agent)
	return agent, nil
}

// SpawnDefault spawns at the configured spawn position with the configured
// TTL and exploration rate, drawing a random pattern.
func (s *Swarm[P]) SpawnDefault() (*walker.Agent[P], error) {
	return s.Spawn(s.cfg.SpawnPosition, s.cfg.TTL, s.cfg.ExplorationRate, nil)
}

// Tick advances every agent exactly once. Steps fan out across workers:
// each agent's mutable state is exclusively owned and the provider is
// read-only, so agents never observe each other's move within a tick.
// Aggregation, reward delivery bookkeeping, removal of dead agents, and the
// capacity cut all happen after the barrier. Per-agent configuration errors
// do not stop other agents; the first one is returned once the tick ends.
func (s *Swarm[P]) Tick(ctx context.Context) (Metrics, error) {
	type outcome struct {
		idx     int
		newGoal bool
		adapted bool
		err     error
	}

	jobs := make(chan int)
	results := make(chan outcome, len(s.agents))

	workerCount := s.cfg.Workers
	if workerCount > len(s.agents) {
		workerCount = len(s.agents)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				agent := s.agents[idx]
				countBefore := agent.Unit.ActivationCount
				goalBefore := agent.ReachedGoal

				res, err := agent.Step(s.cfg.Provider)
				if err != nil {
					results <- outcome{idx: idx, err: err}
					continue
				}

				newGoal := agent.ReachedGoal && !goalBefore
				if newGoal && s.cfg.GoalReward != 0 {
					agent.AdaptUnit(s.cfg.GoalReward)
				}
				if res.Status == walker.Terminated && !agent.ReachedGoal && s.cfg.DeadEndReward != 0 {
					agent.AdaptUnit(s.cfg.DeadEndReward)
				}

				results <- outcome{
					idx:     idx,
					newGoal: newGoal,
					adapted: agent.Unit.ActivationCount > countBefore,
				}
			}
		}()
	}

	for i := range s.agents {
		if err := ctx.Err(); err != nil {
			close(jobs)
			wg.Wait()
			close(results)
			return Metrics{}, err
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(results)

	metrics := Metrics{Total: uint(len(s.agents))}
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		if res.newGoal {
			metrics.Successful++
		}
		if res.adapted {
			metrics.Adapted++
		}
	}
	if firstErr != nil {
		return Metrics{}, firstErr
	}

	// Removal happens only now so population size observed during the tick
	// was stable.
	live := s.agents[:0]
	for _, agent := range s.agents {
		if agent.Alive() {
			live = append(live, agent)
		} else {
			s.retired = append(s.retired, agent)
		}
	}
	s.agents = live

	// Capacity cut is an insertion-order tail truncation: first-spawned
	// agents survive. Fitness plays no role mid-run, and truncated agents
	// leave the simulation entirely.
	if len(s.agents) > s.cfg.MaxPopulation {
		s.agents = s.agents[:s.cfg.MaxPopulation]
	}

	s.history = append(s.history, metrics)
	return metrics, nil
}

// Evolve closes a generation: rank every agent seen this generation (live
// and retired) by fitness, keep the top quarter as elites with pattern and
// mask untouched, and refill to capacity with crossover/mutation offspring
// of elite pairs. All runtime state respawns at the configured position.
func (s *Swarm[P]) Evolve() error {
	pool := make([]*walker.Agent[P], 0, len(s.agents)+len(s.retired))
	pool = append(pool, s.agents...)
	pool = append(pool, s.retired...)
	if len(pool) == 0 {
		return ErrEmptyPopulation
	}

	ranked := make([]scoredAgent[P], len(pool))
	for i, agent := range pool {
		ranked[i] = scoredAgent[P]{agent: agent, fitness: agent.FitnessScore(s.cfg.Weights)}
	}
	// Stable sort: ties keep spawn order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].fitness > ranked[j].fitness
	})

	eliteCount := len(pool) / 4
	if eliteCount < 1 {
		eliteCount = 1
	}

	scored := make([]evo.ScoredUnit, len(ranked))
	for i, item := range ranked {
		scored[i] = evo.ScoredUnit{Unit: item.agent.Unit, Fitness: item.fitness}
	}

	next := make([]*walker.Agent[P], 0, s.cfg.MaxPopulation)
	for i := 0; i < eliteCount && i < s.cfg.MaxPopulation; i++ {
		elite := ranked[i].agent
		elite.Respawn(s.cfg.SpawnPosition, s.cfg.TTL)
		next = append(next, elite)
	}

	for len(next) < s.cfg.MaxPopulation {
		child, err := s.breed(scored, eliteCount)
		if err != nil {
			return err
		}
		offspring, err := walker.New(s.nextID(), s.cfg.SpawnPosition, child, s.cfg.TTL, s.cfg.ExplorationRate, s.agentRand())
		if err != nil {
			return err
		}
		next = append(next, offspring)
	}

	s.agents = next
	s.retired = nil
	s.generation++
	return nil
}

func (s *Swarm[P]) breed(scored []evo.ScoredUnit, eliteCount int) (unit.Unit, error) {
	parentA, err := s.cfg.Selector.PickParent(s.rng, scored, eliteCount)
	if err != nil {
		return unit.Unit{}, err
	}
	parentB, err := s.cfg.Selector.PickParent(s.rng, scored, eliteCount)
	if err != nil {
		return unit.Unit{}, err
	}
	// Prefer two distinct parents; with a single elite, or when every
	// elite carries the same genome, crossover degenerates to cloning.
	for attempt := 0; attempt < 8 && parentB == parentA && eliteCount > 1; attempt++ {
		parentB, err = s.cfg.Selector.PickParent(s.rng, scored, eliteCount)
		if err != nil {
			return unit.Unit{}, err
		}
	}

	child, err := evo.Crossover(s.rng, parentA, parentB)
	if err != nil {
		return unit.Unit{}, err
	}
	return evo.Mutate(s.rng, child, s.cfg.MutationRate)
}

type scoredAgent[P comparable] struct {
	agent   *walker.Agent[P]
	fitness float64
}

// Snapshot lists live agents in insertion order followed by this
// generation's retired agents.
func (s *Swarm[P]) Snapshot() []Snapshot[P] {
	out := make([]Snapshot[P], 0, len(s.agents)+len(s.retired))
	for _, agent := range s.agents {
		out = append(out, snapshotOf(agent))
	}
	for _, agent := range s.retired {
		out = append(out, snapshotOf(agent))
	}
	return out
}

func snapshotOf[P comparable](agent *walker.Agent[P]) Snapshot[P] {
	return Snapshot[P]{
		Position:        agent.Position,
		Pattern:         agent.Unit.Pattern,
		Mask:            agent.Unit.Mask,
		ActivationCount: agent.Unit.ActivationCount,
		Alive:           agent.Alive(),
	}
}

// History returns the append-only per-tick metrics sequence.
func (s *Swarm[P]) History() []Metrics {
	return append([]Metrics(nil), s.history...)
}

// Generation returns the completed-evolution count, starting at 0.
func (s *Swarm[P]) Generation() int {
	return s.generation
}

// Len is the live agent count.
func (s *Swarm[P]) Len() int {
	return len(s.agents)
}

// LiveAgents returns the live agents in insertion order. Callers must treat
// them as read-only; each agent's state belongs to the swarm's tick cycle.
func (s *Swarm[P]) LiveAgents() []*walker.Agent[P] {
	return append([]*walker.Agent[P](nil), s.agents...)
}

// AllAgents returns live agents then this generation's retired agents, in
// insertion order. Same read-only contract as LiveAgents.
func (s *Swarm[P]) AllAgents() []*walker.Agent[P] {
	out := make([]*walker.Agent[P], 0, len(s.agents)+len(s.retired))
	out = append(out, s.agents...)
	out = append(out, s.retired...)
	return out
}

// BestFitness reports the highest fitness over live and retired agents.
func (s *Swarm[P]) BestFitness() (float64, bool) {
	best := 0.0
	found := false
	for _, agent := range s.agents {
		if f := agent.FitnessScore(s.cfg.Weights); !found || f > best {
			best, found = f, true
		}
	}
	for _, agent := range s.retired {
		if f := agent.FitnessScore(s.cfg.Weights); !found || f > best {
			best, found = f, true
		}
	}
	return best, found
}

// FitnessOf scores an agent with the swarm's configured weights.
func (s *Swarm[P]) FitnessOf(agent *walker.Agent[P]) float64 {
	return agent.FitnessScore(s.cfg.Weights)
}

func (s *Swarm[P]) nextID() string {
	s.spawned++
	return fmt.Sprintf("agent-g%d-i%d", s.generation, s.spawned)
}

func (s *Swarm[P]) agentRand() *rand.Rand {
	return rand.New(rand.NewSource(s.rng.Int63()))
}
