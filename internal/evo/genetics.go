// Package evo provides the generational operators for pattern-unit genomes:
// single-cut crossover, per-bit mutation, and parent selection over a ranked
// population.
package evo

import (
	"fmt"
	"math/rand"

	"github.com/NahomWondimu/neurobit-simulation/internal/unit"
)

// ScoredUnit pairs a unit genome with the fitness its carrier earned.
type ScoredUnit struct {
	Unit    unit.Unit
	Fitness float64
}

// Crossover combines two parent units at a single random cut position k in
// [1, W-1]: the offspring takes parent A's bits below k and parent B's bits
// at and above k. Pattern and mask are cut independently, each with its own
// draw. Parents must share a configuration.
func Crossover(rng *rand.Rand, a, b unit.Unit) (unit.Unit, error) {
	if rng == nil {
		return unit.Unit{}, fmt.Errorf("random source is required")
	}
	cfg := a.Config()
	if cfg != b.Config() {
		return unit.Unit{}, fmt.Errorf("crossover parents have mismatched unit configs")
	}
	if cfg.Width < 2 {
		// No interior cut exists at width 1; the offspring is a clone of A.
		return unit.New(cfg, a.Pattern, a.Mask)
	}

	pattern := spliceBits(rng, a.Pattern, b.Pattern, cfg.Width)
	mask := spliceBits(rng, a.Mask, b.Mask, cfg.Width)
	return unit.New(cfg, pattern, mask)
}

func spliceBits(rng *rand.Rand, low, high uint64, width uint) uint64 {
	k := uint(1 + rng.Intn(int(width-1)))
	lowMask := (uint64(1) << k) - 1
	return (low & lowMask) | (high &^ lowMask)
}

// Mutate flips each pattern bit independently with probability rate. The
// mask is left alone; mask shape changes only through adaptation.
func Mutate(rng *rand.Rand, u unit.Unit, rate float64) (unit.Unit, error) {
	if rng == nil {
		return unit.Unit{}, fmt.Errorf("random source is required")
	}
	if rate < 0 || rate > 1 {
		return unit.Unit{}, fmt.Errorf("mutation rate must be in [0, 1], got %v", rate)
	}
	cfg := u.Config()
	pattern := u.Pattern
	for bit := uint(0); bit < cfg.Width; bit++ {
		if rng.Float64() < rate {
			pattern ^= uint64(1) << bit
		}
	}
	return unit.New(cfg, pattern, u.Mask)
}

// Selector chooses parent genomes from a fitness-descending ranking.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, ranked []ScoredUnit, eliteCount int) (unit.Unit, error)
}

// EliteSelector picks uniformly from the top elite set.
type EliteSelector struct{}

func (EliteSelector) Name() string {
	return "elite"
}

func (EliteSelector) PickParent(rng *rand.Rand, ranked []ScoredUnit, eliteCount int) (unit.Unit, error) {
	if rng == nil {
		return unit.Unit{}, fmt.Errorf("random source is required")
	}
	if eliteCount <= 0 || eliteCount > len(ranked) {
		return unit.Unit{}, fmt.Errorf("invalid elite count: %d", eliteCount)
	}
	return ranked[rng.Intn(eliteCount)].Unit, nil
}

// TournamentSelector samples candidates from a pool and keeps the best.
type TournamentSelector struct {
	PoolSize       int
	TournamentSize int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, ranked []ScoredUnit, eliteCount int) (unit.Unit, error) {
	if rng == nil {
		return unit.Unit{}, fmt.Errorf("random source is required")
	}
	if eliteCount <= 0 || eliteCount > len(ranked) {
		return unit.Unit{}, fmt.Errorf("invalid elite count: %d", eliteCount)
	}

	poolSize := s.PoolSize
	if poolSize <= 0 {
		poolSize = eliteCount * 2
	}
	if poolSize < eliteCount {
		poolSize = eliteCount
	}
	if poolSize > len(ranked) {
		poolSize = len(ranked)
	}

	tournamentSize := s.TournamentSize
	if tournamentSize <= 0 {
		tournamentSize = 3
	}
	if tournamentSize > poolSize {
		tournamentSize = poolSize
	}

	best := ranked[rng.Intn(poolSize)]
	for i := 1; i < tournamentSize; i++ {
		candidate := ranked[rng.Intn(poolSize)]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best.Unit, nil
}
