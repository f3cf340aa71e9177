// Package env defines the boundary between the simulation kernel and the
// graph it walks. Any maze or graph implementation satisfies Provider; the
// kernel never depends on how the graph was built.
package env

import "errors"

// ErrOutOfDomain reports a provider returning a neighbor outside its own
// declared position domain. This is a configuration error surfaced to the
// population manager, never recovered locally.
var ErrOutOfDomain = errors.New("neighbor outside provider domain")

// Provider exposes the three pure queries the kernel needs. Neighbors must
// return a stable order across calls for the same position, and Encode must
// be a deterministic function of the position whose result already fits the
// pattern bit width in use.
type Provider[P comparable] interface {
	Neighbors(pos P) []P
	Encode(pos P) uint64
	IsGoal(pos P) bool
}

// DomainChecker is an optional provider capability. When implemented, the
// population manager verifies returned neighbors against it and treats a
// violation as fatal configuration.
type DomainChecker[P comparable] interface {
	Contains(pos P) bool
}
