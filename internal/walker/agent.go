// Package walker implements the mobile agent: one pattern unit, a position,
// a TTL countdown, and a record of visited positions. Agents move through a
// provider's graph one step per tick, accepting the first neighbor whose
// encoding triggers the unit or that passes an exploration draw.
package walker

import (
	"fmt"
	"math/rand"

	"github.com/NahomWondimu/neurobit-simulation/internal/env"
	"github.com/NahomWondimu/neurobit-simulation/internal/unit"
)

// Status reports the outcome of a step.
type Status int

const (
	// Continuing means the agent remains live, whether or not it moved.
	Continuing Status = iota
	// Terminated means the agent's TTL ran out or every neighbor was
	// already visited. A normal end-of-life state, not an error.
	Terminated
)

// StepResult carries the step outcome. Moved is true only when the agent
// actually advanced to a new position this tick.
type StepResult[P comparable] struct {
	Status   Status
	Position P
	Moved    bool
}

// Weights tunes the fitness combination. Each term is monotonic in its
// input; the goal bonus must dominate so goal achievement is never masked.
type Weights struct {
	GoalBonus        float64
	VisitedWeight    float64
	ActivationWeight float64
}

// DefaultWeights matches the reference maze runs.
func DefaultWeights() Weights {
	return Weights{GoalBonus: 100, VisitedWeight: 1, ActivationWeight: 0.5}
}

// Agent is exclusively owned by one slot in the population manager's
// collection. Its mutable state is touched by no other goroutine, which is
// what makes parallel tick stepping safe.
type Agent[P comparable] struct {
	ID              string
	Position        P
	Unit            unit.Unit
	TTL             int
	ExplorationRate float64
	ReachedGoal     bool

	visited map[P]struct{}
	trail   []P
	deadEnd bool
	rng     *rand.Rand
}

// New builds an agent at a spawn position. The rng is owned by the agent
// alone; the caller seeds it and never shares it.
func New[P comparable](id string, pos P, u unit.Unit, ttl int, explorationRate float64, rng *rand.Rand) (*Agent[P], error) {
	if ttl < 0 {
		return nil, fmt.Errorf("ttl must be >= 0, got %d", ttl)
	}
	if explorationRate < 0 || explorationRate > 1 {
		return nil, fmt.Errorf("exploration rate must be in [0, 1], got %v", explorationRate)
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	a := &Agent[P]{
		ID:              id,
		Position:        pos,
		Unit:            u,
		TTL:             ttl,
		ExplorationRate: explorationRate,
		visited:         map[P]struct{}{pos: {}},
		trail:           []P{pos},
		rng:             rng,
	}
	return a, nil
}

// Alive reports whether the agent can still act: TTL remaining and at least
// one untried neighbor the last time it looked.
func (a *Agent[P]) Alive() bool {
	return a.TTL > 0 && !a.deadEnd
}

// Step advances the agent by at most one move. Neighbors are taken in the
// provider's order and the first acceptable one wins; the agent never
// evaluates all neighbors to pick a best. That tie-break is a deliberate
// property of the walk, not an optimization opportunity.
//
// The exploration variate is drawn for every untried candidate regardless of
// the match outcome, so a fixed seed reproduces the same walk.
func (a *Agent[P]) Step(provider env.Provider[P]) (StepResult[P], error) {
	if a.TTL == 0 || a.deadEnd {
		return StepResult[P]{Status: Terminated, Position: a.Position}, nil
	}
	a.TTL--

	checker, checkDomain := provider.(env.DomainChecker[P])

	untried := false
	for _, n := range provider.Neighbors(a.Position) {
		if checkDomain && !checker.Contains(n) {
			return StepResult[P]{Status: Terminated, Position: a.Position},
				fmt.Errorf("agent %s at %v got neighbor %v: %w", a.ID, a.Position, n, env.ErrOutOfDomain)
		}
		if _, seen := a.visited[n]; seen {
			continue
		}
		untried = true

		matched := a.Unit.Trigger(provider.Encode(n))
		r := a.rng.Float64()
		if matched || r < a.ExplorationRate {
			a.Position = n
			a.visited[n] = struct{}{}
			a.trail = append(a.trail, n)
			if provider.IsGoal(n) {
				a.ReachedGoal = true
			}
			return StepResult[P]{Status: Continuing, Position: n, Moved: true}, nil
		}
	}

	if !untried {
		a.deadEnd = true
	}
	if a.TTL == 0 || a.deadEnd {
		return StepResult[P]{Status: Terminated, Position: a.Position}, nil
	}
	return StepResult[P]{Status: Continuing, Position: a.Position}, nil
}

// FitnessScore combines goal achievement, exploration breadth, and unit
// confidence. Used only for generational selection.
func (a *Agent[P]) FitnessScore(w Weights) float64 {
	score := w.VisitedWeight*float64(len(a.visited)) + w.ActivationWeight*float64(a.Unit.ActivationCount)
	if a.ReachedGoal {
		score += w.GoalBonus
	}
	return score
}

// AdaptUnit feeds a reward to the agent's unit using the agent's own rng.
func (a *Agent[P]) AdaptUnit(reward float64) {
	a.Unit.Adapt(reward, a.rng)
}

// Respawn re-initializes the agent's runtime state for a new generation.
// The unit's pattern and mask are left alone; the activation counter resets.
func (a *Agent[P]) Respawn(pos P, ttl int) {
	a.Position = pos
	a.TTL = ttl
	a.ReachedGoal = false
	a.deadEnd = false
	a.visited = map[P]struct{}{pos: {}}
	a.trail = []P{pos}
	a.Unit.ActivationCount = 0
}

// HasVisited reports membership in the visited set.
func (a *Agent[P]) HasVisited(pos P) bool {
	_, ok := a.visited[pos]
	return ok
}

// VisitedCount is the size of the visited set, non-decreasing over the
// agent's lifetime.
func (a *Agent[P]) VisitedCount() int {
	return len(a.visited)
}

// Trail returns the positions in visit order, starting at the spawn.
func (a *Agent[P]) Trail() []P {
	return append([]P(nil), a.trail...)
}
