// Package maze provides the grid maze environment: a rows-by-cols grid
// carved into a perfect maze by depth-first search, with a handful of edge
// cells marked as exits. It satisfies the kernel's provider interface and is
// the one environment this repository ships.
package maze

import (
	"fmt"
	"math/bits"
	"math/rand"
	"sort"
)

// Cell addresses one grid position.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

type Config struct {
	Rows int
	Cols int
	// ExitCount edge cells become goals.
	ExitCount int
	// PatternWidth truncates encoded cells to the simulation's bit width.
	PatternWidth uint
	Seed         int64
}

// DefaultConfig matches the reference 60x30 maze with 5 exits and 8-bit
// encoding.
func DefaultConfig() Config {
	return Config{Rows: 30, Cols: 60, ExitCount: 5, PatternWidth: 8}
}

// Grid is an immutable maze once built, safe to share across goroutines.
type Grid struct {
	rows, cols int
	width      uint
	colBits    uint
	corridors  map[Cell][]Cell
	goals      map[Cell]bool
}

// Generate carves the maze with an owned rng seeded from cfg.Seed, so the
// same configuration always yields the same maze.
func Generate(cfg Config) (*Grid, error) {
	if cfg.Rows < 2 || cfg.Cols < 2 {
		return nil, fmt.Errorf("maze must be at least 2x2, got %dx%d", cfg.Rows, cfg.Cols)
	}
	if cfg.PatternWidth < 1 || cfg.PatternWidth > 64 {
		return nil, fmt.Errorf("pattern width must be in [1, 64], got %d", cfg.PatternWidth)
	}
	edgeCells := 2*cfg.Rows + 2*(cfg.Cols-2)
	if cfg.ExitCount < 0 || cfg.ExitCount > edgeCells {
		return nil, fmt.Errorf("exit count must be in [0, %d], got %d", edgeCells, cfg.ExitCount)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	g := &Grid{
		rows:      cfg.Rows,
		cols:      cfg.Cols,
		width:     cfg.PatternWidth,
		colBits:   uint(bits.Len(uint(cfg.Cols - 1))),
		corridors: make(map[Cell][]Cell, cfg.Rows*cfg.Cols),
		goals:     make(map[Cell]bool, cfg.ExitCount),
	}
	g.carve(rng)
	g.addExits(rng, cfg.ExitCount)
	return g, nil
}

// carve runs an iterative depth-first search from (0,0), connecting each
// newly visited cell back to the cell it was entered from. The result is a
// spanning tree: every cell reachable, no cycles.
func (g *Grid) carve(rng *rand.Rand) {
	visited := make(map[Cell]bool, g.rows*g.cols)
	start := Cell{0, 0}
	visited[start] = true
	stack := []Cell{start}

	directions := []Cell{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}

	for len(stack) > 0 {
		current := stack[len(stack)-1]

		candidates := make([]Cell, 0, 4)
		for _, d := range directions {
			next := Cell{current.Row + d.Row, current.Col + d.Col}
			if g.Contains(next) && !visited[next] {
				candidates = append(candidates, next)
			}
		}
		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		next := candidates[rng.Intn(len(candidates))]
		visited[next] = true
		g.corridors[current] = append(g.corridors[current], next)
		g.corridors[next] = append(g.corridors[next], current)
		stack = append(stack, next)
	}

	// Fix every adjacency list into row-major order so Neighbors is stable
	// across calls and independent of carving order.
	for cell, neighbors := range g.corridors {
		sort.Slice(neighbors, func(i, j int) bool {
			if neighbors[i].Row != neighbors[j].Row {
				return neighbors[i].Row < neighbors[j].Row
			}
			return neighbors[i].Col < neighbors[j].Col
		})
		g.corridors[cell] = neighbors
	}
}

// addExits samples distinct border cells as goals.
func (g *Grid) addExits(rng *rand.Rand, count int) {
	edge := make([]Cell, 0, 2*g.rows+2*(g.cols-2))
	for r := 0; r < g.rows; r++ {
		edge = append(edge, Cell{r, 0}, Cell{r, g.cols - 1})
	}
	for c := 1; c < g.cols-1; c++ {
		edge = append(edge, Cell{0, c}, Cell{g.rows - 1, c})
	}

	rng.Shuffle(len(edge), func(i, j int) {
		edge[i], edge[j] = edge[j], edge[i]
	})
	for i := 0; i < count; i++ {
		g.goals[edge[i]] = true
	}
}

// Neighbors returns the carved corridors of pos in row-major order. The
// returned slice is owned by the grid; callers must not modify it.
func (g *Grid) Neighbors(pos Cell) []Cell {
	return g.corridors[pos]
}

// Encode maps a cell to its pattern signature, the row shifted above the
// column bits and folded into the pattern width.
func (g *Grid) Encode(pos Cell) uint64 {
	v := (uint64(pos.Row) << g.colBits) ^ uint64(pos.Col)
	return v & (^uint64(0) >> (64 - g.width))
}

// IsGoal reports whether pos is an exit.
func (g *Grid) IsGoal(pos Cell) bool {
	return g.goals[pos]
}

// Contains reports whether pos lies on the grid.
func (g *Grid) Contains(pos Cell) bool {
	return pos.Row >= 0 && pos.Row < g.rows && pos.Col >= 0 && pos.Col < g.cols
}

// Rows and Cols report the grid dimensions.
func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

// Exits returns the goal cells in row-major order.
func (g *Grid) Exits() []Cell {
	out := make([]Cell, 0, len(g.goals))
	for cell := range g.goals {
		out = append(out, cell)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}
