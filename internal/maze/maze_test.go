package maze

import "testing"

func TestGenerateSpansEveryCell(t *testing.T) {
	cfg := Config{Rows: 10, Cols: 12, ExitCount: 3, PatternWidth: 8, Seed: 42}
	g, err := Generate(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// Breadth-first walk from the origin must reach all rows*cols cells.
	visited := map[Cell]bool{{0, 0}: true}
	queue := []Cell{{0, 0}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range g.Neighbors(current) {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	if len(visited) != cfg.Rows*cfg.Cols {
		t.Fatalf("reachable cells = %d, want %d", len(visited), cfg.Rows*cfg.Cols)
	}
}

func TestGenerateCorridorsAreBidirectional(t *testing.T) {
	g, err := Generate(Config{Rows: 6, Cols: 6, ExitCount: 0, PatternWidth: 8, Seed: 7})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for r := 0; r < 6; r++ {
		for c := 0; c < 6; c++ {
			cell := Cell{r, c}
			for _, n := range g.Neighbors(cell) {
				back := false
				for _, m := range g.Neighbors(n) {
					if m == cell {
						back = true
						break
					}
				}
				if !back {
					t.Fatalf("corridor %v -> %v has no reverse", cell, n)
				}
			}
		}
	}
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	cfg := Config{Rows: 8, Cols: 8, ExitCount: 4, PatternWidth: 8, Seed: 99}
	a, err := Generate(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := Generate(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			cell := Cell{r, c}
			na, nb := a.Neighbors(cell), b.Neighbors(cell)
			if len(na) != len(nb) {
				t.Fatalf("cell %v: neighbor counts differ", cell)
			}
			for i := range na {
				if na[i] != nb[i] {
					t.Fatalf("cell %v: neighbor %d differs: %v vs %v", cell, i, na[i], nb[i])
				}
			}
		}
	}

	ea, eb := a.Exits(), b.Exits()
	if len(ea) != 4 || len(eb) != 4 {
		t.Fatalf("exit counts = %d/%d, want 4", len(ea), len(eb))
	}
	for i := range ea {
		if ea[i] != eb[i] {
			t.Fatalf("exit %d differs: %v vs %v", i, ea[i], eb[i])
		}
	}
}

func TestNeighborsStableAcrossCalls(t *testing.T) {
	g, err := Generate(Config{Rows: 5, Cols: 5, ExitCount: 0, PatternWidth: 8, Seed: 3})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	cell := Cell{2, 2}
	first := append([]Cell(nil), g.Neighbors(cell)...)
	for i := 0; i < 5; i++ {
		again := g.Neighbors(cell)
		if len(again) != len(first) {
			t.Fatal("neighbor count changed between calls")
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatal("neighbor order changed between calls")
			}
		}
	}
}

func TestEncodeFoldsRowAndColumn(t *testing.T) {
	// 60 columns need 6 column bits, so (2,3) encodes to (2<<6)^3 folded
	// into 8 bits.
	g, err := Generate(Config{Rows: 30, Cols: 60, ExitCount: 0, PatternWidth: 8, Seed: 1})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	got := g.Encode(Cell{2, 3})
	want := uint64((2<<6)^3) & 0xFF
	if got != want {
		t.Fatalf("encode = 0x%x, want 0x%x", got, want)
	}
	if g.Encode(Cell{2, 3}) != got {
		t.Fatal("encode must be deterministic")
	}
}

func TestExitsAreGoalsOnBorder(t *testing.T) {
	g, err := Generate(Config{Rows: 9, Cols: 9, ExitCount: 5, PatternWidth: 8, Seed: 123})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	exits := g.Exits()
	if len(exits) != 5 {
		t.Fatalf("exits = %d, want 5", len(exits))
	}
	for _, e := range exits {
		if !g.IsGoal(e) {
			t.Fatalf("exit %v not reported as goal", e)
		}
		onBorder := e.Row == 0 || e.Row == 8 || e.Col == 0 || e.Col == 8
		if !onBorder {
			t.Fatalf("exit %v not on the border", e)
		}
	}
	if g.IsGoal(Cell{4, 4}) {
		t.Fatal("interior cell must not be a goal")
	}
}

func TestGenerateValidation(t *testing.T) {
	if _, err := Generate(Config{Rows: 1, Cols: 5, PatternWidth: 8}); err == nil {
		t.Fatal("expected size validation error")
	}
	if _, err := Generate(Config{Rows: 5, Cols: 5, PatternWidth: 0}); err == nil {
		t.Fatal("expected width validation error")
	}
	if _, err := Generate(Config{Rows: 5, Cols: 5, PatternWidth: 8, ExitCount: 1000}); err == nil {
		t.Fatal("expected exit count validation error")
	}
}
