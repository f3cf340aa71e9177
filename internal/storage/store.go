package storage

import (
	"context"

	"github.com/NahomWondimu/neurobit-simulation/internal/model"
)

// Store defines persistence operations for completed-run artifacts.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	SaveWorldSummary(ctx context.Context, summary model.WorldSummary) error
	GetWorldSummary(ctx context.Context, name string) (model.WorldSummary, bool, error)
	SaveTickHistory(ctx context.Context, runID string, history []model.TickMetrics) error
	GetTickHistory(ctx context.Context, runID string) ([]model.TickMetrics, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
	SaveTopUnits(ctx context.Context, runID string, top []model.TopUnitRecord) error
	GetTopUnits(ctx context.Context, runID string) ([]model.TopUnitRecord, bool, error)
}

// Resetter is implemented by stores that can discard all saved artifacts.
type Resetter interface {
	Reset(ctx context.Context) error
}
