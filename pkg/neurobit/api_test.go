package neurobit

import (
	"context"
	"strings"
	"testing"

	"github.com/NahomWondimu/neurobit-simulation/internal/maze"
	"github.com/NahomWondimu/neurobit-simulation/internal/platform"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := New(Options{
		StoreKind: "memory",
		Worlds: []platform.WorldSpec{{
			Name:        "maze-test",
			Description: "small maze for client tests",
			Maze:        maze.Config{Rows: 5, Cols: 5, ExitCount: 2, PatternWidth: 8},
		}},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestClientRunAndQueries(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	summary, err := client.Run(ctx, RunRequest{
		World:              "maze-test",
		Population:         6,
		Generations:        2,
		TicksPerGeneration: 8,
		TTL:                20,
		ExplorationRate:    0.5,
		MutationRate:       0.05,
		Seed:               42,
		Workers:            2,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.RunID == "" {
		t.Fatal("expected generated run id")
	}
	if summary.World != "maze-test" || summary.Generations != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.BestByGeneration) != 2 {
		t.Fatalf("expected per-generation best fitness: %+v", summary.BestByGeneration)
	}
	if summary.TicksExecuted == 0 {
		t.Fatal("expected executed ticks")
	}

	ticks, err := client.TickHistory(ctx, summary.RunID, 0)
	if err != nil {
		t.Fatalf("tick history: %v", err)
	}
	if len(ticks) != summary.TicksExecuted {
		t.Fatalf("tick history %d, summary %d", len(ticks), summary.TicksExecuted)
	}

	fitness, err := client.FitnessHistory(ctx, summary.RunID, 1)
	if err != nil {
		t.Fatalf("fitness history: %v", err)
	}
	if len(fitness) != 1 || fitness[0] != summary.BestByGeneration[0] {
		t.Fatalf("unexpected limited history: %+v", fitness)
	}

	diagnostics, err := client.Diagnostics(ctx, summary.RunID, 0)
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if len(diagnostics) != 2 {
		t.Fatalf("unexpected diagnostics: %+v", diagnostics)
	}

	top, err := client.TopUnits(ctx, summary.RunID, 0)
	if err != nil {
		t.Fatalf("top units: %v", err)
	}
	if len(top) == 0 || top[0].Rank != 1 {
		t.Fatalf("unexpected top units: %+v", top)
	}

	run, err := client.RunRecord(ctx, summary.RunID)
	if err != nil {
		t.Fatalf("run record: %v", err)
	}
	if run.Population != 6 || run.World != "maze-test" {
		t.Fatalf("unexpected run record: %+v", run)
	}

	world, err := client.WorldSummary(ctx, "maze-test")
	if err != nil {
		t.Fatalf("world summary: %v", err)
	}
	if world.Rows != 5 || world.Cols != 5 {
		t.Fatalf("unexpected world summary: %+v", world)
	}
}

func TestClientRunValidatesRequest(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	cases := []RunRequest{
		{Population: 0, Generations: 1, TicksPerGeneration: 1},
		{Population: 4, Generations: 0, TicksPerGeneration: 1},
		{Population: 4, Generations: 1, TicksPerGeneration: 0},
	}
	for i, req := range cases {
		if _, err := client.Run(ctx, req); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestClientRunRejectsUnknownSelection(t *testing.T) {
	client := newTestClient(t)

	_, err := client.Run(context.Background(), RunRequest{
		World:              "maze-test",
		Population:         4,
		Generations:        1,
		TicksPerGeneration: 4,
		Selection:          "roulette",
	})
	if err == nil || !strings.Contains(err.Error(), "unsupported selection") {
		t.Fatalf("expected selection error, got %v", err)
	}
}

func TestClientTournamentSelection(t *testing.T) {
	client := newTestClient(t)

	summary, err := client.Run(context.Background(), RunRequest{
		World:              "maze-test",
		Population:         6,
		Generations:        2,
		TicksPerGeneration: 6,
		ExplorationRate:    0.4,
		Selection:          "tournament",
		Seed:               9,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Generations != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestClientDefaultWorld(t *testing.T) {
	client, err := New(Options{StoreKind: "memory"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	worlds, err := client.Worlds(context.Background())
	if err != nil {
		t.Fatalf("worlds: %v", err)
	}
	if len(worlds) != 1 || worlds[0] != DefaultWorldName {
		t.Fatalf("unexpected worlds: %v", worlds)
	}
}

func TestClientQueriesRequireRunID(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	if _, err := client.TickHistory(ctx, "", 0); err == nil {
		t.Fatal("expected run id error")
	}
	if _, err := client.FitnessHistory(ctx, "", 0); err == nil {
		t.Fatal("expected run id error")
	}
	if _, err := client.Diagnostics(ctx, "", 0); err == nil {
		t.Fatal("expected run id error")
	}
	if _, err := client.TopUnits(ctx, "", 0); err == nil {
		t.Fatal("expected run id error")
	}
}

func TestClientReset(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	summary, err := client.Run(ctx, RunRequest{
		World:              "maze-test",
		Population:         4,
		Generations:        1,
		TicksPerGeneration: 4,
		Seed:               3,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if err := client.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := client.RunRecord(ctx, summary.RunID); err == nil {
		t.Fatal("expected run cleared by reset")
	}
}
