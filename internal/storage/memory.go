package storage

import (
	"context"
	"sync"

	"github.com/NahomWondimu/neurobit-simulation/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	worlds      map[string]model.WorldSummary
	ticks       map[string][]model.TickMetrics
	fitness     map[string][]float64
	diagnostics map[string][]model.GenerationDiagnostics
	topUnits    map[string][]model.TopUnitRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.worlds = make(map[string]model.WorldSummary)
	s.ticks = make(map[string][]model.TickMetrics)
	s.fitness = make(map[string][]float64)
	s.diagnostics = make(map[string][]model.GenerationDiagnostics)
	s.topUnits = make(map[string][]model.TopUnitRecord)
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	return s.Init(ctx)
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.Agents = append([]model.AgentSnapshot(nil), run.Agents...)
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return model.RunRecord{}, false, nil
	}
	run.Agents = append([]model.AgentSnapshot(nil), run.Agents...)
	return run, true, nil
}

func (s *MemoryStore) SaveWorldSummary(_ context.Context, summary model.WorldSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.worlds[summary.Name] = summary
	return nil
}

func (s *MemoryStore) GetWorldSummary(_ context.Context, name string) (model.WorldSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.worlds[name]
	return summary, ok, nil
}

func (s *MemoryStore) SaveTickHistory(_ context.Context, runID string, history []model.TickMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.TickMetrics, len(history))
	copy(copied, history)
	s.ticks[runID] = copied
	return nil
}

func (s *MemoryStore) GetTickHistory(_ context.Context, runID string) ([]model.TickMetrics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.ticks[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.TickMetrics, len(history))
	copy(copied, history)
	return copied, true, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := append([]float64(nil), history...)
	s.fitness[runID] = copied
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.fitness[runID]
	if !ok {
		return nil, false, nil
	}
	copied := append([]float64(nil), history...)
	return copied, true, nil
}

func (s *MemoryStore) SaveGenerationDiagnostics(_ context.Context, runID string, diagnostics []model.GenerationDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	s.diagnostics[runID] = copied
	return nil
}

func (s *MemoryStore) GetGenerationDiagnostics(_ context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagnostics, ok := s.diagnostics[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	return copied, true, nil
}

func (s *MemoryStore) SaveTopUnits(_ context.Context, runID string, top []model.TopUnitRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.TopUnitRecord, len(top))
	copy(copied, top)
	s.topUnits[runID] = copied
	return nil
}

func (s *MemoryStore) GetTopUnits(_ context.Context, runID string) ([]model.TopUnitRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	top, ok := s.topUnits[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.TopUnitRecord, len(top))
	copy(copied, top)
	return copied, true, nil
}
