package storage

import (
	"context"
	"testing"

	"github.com/NahomWondimu/neurobit-simulation/internal/model"
)

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "run-1",
		World:           "maze-default",
		Seed:            42,
		Population:      16,
		Generations:     3,
		BestFitness:     112.5,
		GoalsReached:    2,
		Agents: []model.AgentSnapshot{
			{ID: "agent-g0-i0", Position: "(3,7)", Pattern: 0x4F, Mask: 0xFF, Alive: true},
		},
	}
	if err := store.SaveRun(ctx, input); err != nil {
		t.Fatalf("save run: %v", err)
	}

	output, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run")
	}
	if output.World != "maze-default" || output.BestFitness != 112.5 {
		t.Fatalf("unexpected run: %+v", output)
	}
	if len(output.Agents) != 1 || output.Agents[0].Position != "(3,7)" {
		t.Fatalf("unexpected agents: %+v", output.Agents)
	}
}

func TestMemoryStoreRunMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	_, ok, err := store.GetRun(ctx, "absent")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if ok {
		t.Fatal("expected absent run")
	}
}

func TestMemoryStoreWorldSummaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.WorldSummary{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		Name:            "maze-default",
		Description:     "depth-first maze with border exits",
		Rows:            30,
		Cols:            60,
		ExitCount:       5,
		BestFitness:     131,
	}
	if err := store.SaveWorldSummary(ctx, input); err != nil {
		t.Fatalf("save summary: %v", err)
	}

	output, ok, err := store.GetWorldSummary(ctx, "maze-default")
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted summary")
	}
	if output.Rows != 30 || output.Cols != 60 || output.ExitCount != 5 {
		t.Fatalf("unexpected summary: %+v", output)
	}
}

func TestMemoryStoreTickHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.TickMetrics{
		{Tick: 1, Total: 8, Successful: 5, Adapted: 0},
		{Tick: 2, Total: 8, Successful: 7, Adapted: 2},
	}
	if err := store.SaveTickHistory(ctx, "run-1", input); err != nil {
		t.Fatalf("save history: %v", err)
	}

	output, ok, err := store.GetTickHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted tick history")
	}
	if len(output) != 2 || output[1].Adapted != 2 {
		t.Fatalf("unexpected history: %+v", output)
	}

	// the store hands back copies, not the shared backing array
	output[0].Total = 99
	again, _, err := store.GetTickHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if again[0].Total != 8 {
		t.Fatalf("stored history mutated: %+v", again)
	}
}

func TestMemoryStoreFitnessHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []float64{12, 31.5, 47}
	if err := store.SaveFitnessHistory(ctx, "run-1", input); err != nil {
		t.Fatalf("save history: %v", err)
	}
	output, ok, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted fitness history")
	}
	if len(output) != len(input) || output[2] != input[2] {
		t.Fatalf("unexpected history: %+v", output)
	}
}

func TestMemoryStoreGenerationDiagnosticsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.GenerationDiagnostics{
		{Generation: 0, BestFitness: 18, MeanFitness: 9.25, MinFitness: 1, GoalCount: 1, LiveCount: 2, RetiredCount: 6},
		{Generation: 1, BestFitness: 47, MeanFitness: 21, MinFitness: 3, GoalCount: 3, LiveCount: 4, RetiredCount: 4},
	}
	if err := store.SaveGenerationDiagnostics(ctx, "run-1", input); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}

	output, ok, err := store.GetGenerationDiagnostics(ctx, "run-1")
	if err != nil {
		t.Fatalf("get diagnostics: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted diagnostics")
	}
	if len(output) != 2 || output[1].GoalCount != 3 {
		t.Fatalf("unexpected diagnostics: %+v", output)
	}
}

func TestMemoryStoreTopUnitsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.TopUnitRecord{
		{Rank: 1, AgentID: "agent-g2-i0", Fitness: 131, Pattern: 0x4F, Mask: 0xF7, ActivationCount: 12, ReachedGoal: true},
		{Rank: 2, AgentID: "agent-g2-i3", Fitness: 88, Pattern: 0x1C, Mask: 0xFF, ActivationCount: 7},
	}
	if err := store.SaveTopUnits(ctx, "run-1", input); err != nil {
		t.Fatalf("save top units: %v", err)
	}

	output, ok, err := store.GetTopUnits(ctx, "run-1")
	if err != nil {
		t.Fatalf("get top units: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted top units")
	}
	if len(output) != 2 || output[0].Pattern != 0x4F || !output[0].ReachedGoal {
		t.Fatalf("unexpected top units: %+v", output)
	}
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := store.SaveFitnessHistory(ctx, "run-1", []float64{1, 2}); err != nil {
		t.Fatalf("save history: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	_, ok, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if ok {
		t.Fatal("expected history cleared by reset")
	}
}
