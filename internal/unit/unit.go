// Package unit implements the pattern unit: a fixed-width bit pattern with a
// significance mask and a bounded activation counter. A unit recognizes
// encoded positions by masked comparison and reshapes its own pattern from
// reward feedback.
package unit

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var ErrWidthExceeded = errors.New("value exceeds configured bit width")

// Config carries the tunable constants of a pattern unit. The thresholds and
// limits are configuration, not fixed behavior; tests override them freely.
type Config struct {
	// Width is the pattern bit width W, in [1, 64].
	Width uint
	// MaxCount saturates the activation counter.
	MaxCount uint32
	// BroadenThreshold widens the mask once the counter exceeds it.
	BroadenThreshold uint32
	// NarrowThreshold narrows the mask once the counter drops below it.
	NarrowThreshold uint32
	// OveractiveLimit halves the pattern once the counter exceeds it.
	OveractiveLimit uint32
	// ShiftAmount is the mask bit set on broaden and cleared on narrow.
	ShiftAmount uint64
	// AdaptationRate scales reward-driven pattern shifts, in [0, 1].
	AdaptationRate float64
}

// DefaultConfig returns the tuning used by the reference maze runs.
func DefaultConfig() Config {
	return Config{
		Width:            8,
		MaxCount:         32,
		BroadenThreshold: 8,
		NarrowThreshold:  2,
		OveractiveLimit:  24,
		ShiftAmount:      0x01,
		AdaptationRate:   0.1,
	}
}

func (c Config) validate() error {
	if c.Width < 1 || c.Width > 64 {
		return fmt.Errorf("width must be in [1, 64], got %d", c.Width)
	}
	if c.AdaptationRate < 0 || c.AdaptationRate > 1 {
		return fmt.Errorf("adaptation rate must be in [0, 1], got %v", c.AdaptationRate)
	}
	if c.ShiftAmount > c.MaxValue() {
		return fmt.Errorf("shift amount 0x%x: %w", c.ShiftAmount, ErrWidthExceeded)
	}
	return nil
}

// MaxValue is 2^W - 1, the largest representable pattern or mask.
func (c Config) MaxValue() uint64 {
	return ^uint64(0) >> (64 - c.Width)
}

// Unit is a value-like record exclusively owned by one agent. Copying a Unit
// copies its full state.
type Unit struct {
	Pattern         uint64
	Mask            uint64
	ActivationCount uint32

	cfg Config
}

// New builds a unit after validating that pattern and mask fit the
// configured width. Out-of-range values are a configuration error, not
// something trimmed silently.
func New(cfg Config, pattern, mask uint64) (Unit, error) {
	if err := cfg.validate(); err != nil {
		return Unit{}, err
	}
	if pattern > cfg.MaxValue() {
		return Unit{}, fmt.Errorf("pattern 0x%x: %w", pattern, ErrWidthExceeded)
	}
	if mask > cfg.MaxValue() {
		return Unit{}, fmt.Errorf("mask 0x%x: %w", mask, ErrWidthExceeded)
	}
	return Unit{Pattern: pattern, Mask: mask, cfg: cfg}, nil
}

// NewRandom builds a unit with a freshly drawn pattern and a full mask.
func NewRandom(cfg Config, rng *rand.Rand) (Unit, error) {
	if err := cfg.validate(); err != nil {
		return Unit{}, err
	}
	return Unit{
		Pattern: randomValue(cfg, rng),
		Mask:    cfg.MaxValue(),
		cfg:     cfg,
	}, nil
}

// Config returns the unit's tuning constants.
func (u Unit) Config() Config {
	return u.cfg
}

// Trigger reports whether input matches the unit's masked pattern and, on a
// match, increments the activation counter (saturating at MaxCount). The
// caller is responsible for passing an input already truncated to W bits.
func (u *Unit) Trigger(input uint64) bool {
	if input&u.Mask != u.Pattern&u.Mask {
		return false
	}
	if u.ActivationCount < u.cfg.MaxCount {
		u.ActivationCount++
	}
	return true
}

// Adapt mutates the unit's state from a reward signal. Positive reward
// shifts the pattern toward reinforcement and may broaden the mask; negative
// reward mutates the pattern away and may narrow the mask; zero reward fully
// resets the counter without touching pattern or mask. The homeostatic clamp
// runs after the branch: an overactive counter halves the pattern, and a
// counter driven to zero by negative reward redraws it (re-exploration).
func (u *Unit) Adapt(reward float64, rng *rand.Rand) {
	max := u.cfg.MaxValue()
	switch {
	case reward > 0:
		delta := rewardDelta(reward, u.cfg)
		u.Pattern = (u.Pattern + delta) & max
		if u.ActivationCount < u.cfg.MaxCount {
			u.ActivationCount++
		}
		if u.ActivationCount > u.cfg.BroadenThreshold {
			u.Mask |= u.cfg.ShiftAmount
		}
	case reward < 0:
		delta := rewardDelta(-reward, u.cfg)
		u.Pattern = (u.Pattern ^ delta) & max
		if u.ActivationCount > 0 {
			u.ActivationCount--
		}
		if u.ActivationCount < u.cfg.NarrowThreshold {
			u.Mask &^= u.cfg.ShiftAmount
		}
	default:
		// Full reset: pattern and mask are untouched.
		u.ActivationCount = 0
	}

	if u.ActivationCount > u.cfg.OveractiveLimit {
		u.Pattern >>= 1
	}
	if reward != 0 && u.ActivationCount == 0 {
		u.Pattern = randomValue(u.cfg, rng)
	}
}

func rewardDelta(magnitude float64, cfg Config) uint64 {
	scaled := math.Floor(magnitude * cfg.AdaptationRate * float64(cfg.MaxValue()))
	if scaled <= 0 {
		return 0
	}
	if scaled >= float64(cfg.MaxValue()) {
		return cfg.MaxValue()
	}
	return uint64(scaled)
}

func randomValue(cfg Config, rng *rand.Rand) uint64 {
	if cfg.Width == 64 {
		return rng.Uint64()
	}
	return rng.Uint64() & cfg.MaxValue()
}

func (u Unit) String() string {
	return fmt.Sprintf("unit(pattern=0x%x mask=0x%x count=%d)", u.Pattern, u.Mask, u.ActivationCount)
}
