// Package grid holds the static tile model: symbols, their classification,
// and bounds checks.
//
// A Grid is classified once when it is built. The only mutation after that
// is ToggleBuffer, which reclassifies the single edited cell.
package grid

import (
	"errors"
	"fmt"
)

// Maximum grid dimensions.
const (
	MaxRows = 200
	MaxCols = 200
)

var (
	// ErrOutOfBounds is returned by edits addressing a cell outside the grid.
	ErrOutOfBounds = errors.New("position out of bounds")

	// ErrNotBufferable is returned when a cell cannot hold a safety buffer.
	ErrNotBufferable = errors.New("tile cannot hold a safety buffer")
)

// Grid is a rows × cols array of classified tiles.
type Grid struct {
	rows, cols int
	symbols    [][]byte
	tiles      [][]Tile

	// replaced remembers the symbol a manually placed buffer covered.
	replaced map[Pos]byte
}

// New builds a grid from text lines. Short lines are padded with spaces;
// longer lines are truncated to cols. cols of 0 means the longest line.
func New(lines []string, cols int) (*Grid, error) {
	rows := len(lines)
	if cols <= 0 {
		for _, l := range lines {
			cols = max(cols, len(l))
		}
	}
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("grid: empty map")
	}
	if rows > MaxRows || cols > MaxCols {
		return nil, fmt.Errorf("grid: %dx%d exceeds maximum %dx%d", rows, cols, MaxRows, MaxCols)
	}

	g := &Grid{
		rows:     rows,
		cols:     cols,
		symbols:  make([][]byte, rows),
		tiles:    make([][]Tile, rows),
		replaced: make(map[Pos]byte),
	}
	for r, line := range lines {
		g.symbols[r] = make([]byte, cols)
		g.tiles[r] = make([]Tile, cols)
		for c := 0; c < cols; c++ {
			sym := byte(SymEmpty)
			if c < len(line) {
				sym = line[c]
			}
			g.symbols[r][c] = sym
			g.tiles[r][c] = Classify(sym)
		}
	}
	return g, nil
}

// MustNew is New for tests and fixtures; it panics on error.
func MustNew(lines ...string) *Grid {
	g, err := New(lines, 0)
	if err != nil {
		panic(err)
	}
	return g
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether (row, col) addresses a cell.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// Contains is InBounds for a Pos.
func (g *Grid) Contains(p Pos) bool {
	return g.InBounds(p.Row, p.Col)
}

// Tile returns the classified tile at p; out-of-bounds cells are Empty.
func (g *Grid) Tile(p Pos) Tile {
	if !g.Contains(p) {
		return Tile{Kind: Empty, Symbol: SymEmpty, SwitchID: -1}
	}
	return g.tiles[p.Row][p.Col]
}

// Symbol returns the raw symbol at p, or a space when out of bounds.
func (g *Grid) Symbol(p Pos) byte {
	if !g.Contains(p) {
		return SymEmpty
	}
	return g.symbols[p.Row][p.Col]
}

// Traversable reports whether p is in bounds and holds a tile trains may
// occupy.
func (g *Grid) Traversable(p Pos) bool {
	return g.Tile(p).Traversable()
}

// Lines renders the current symbols, one string per row.
func (g *Grid) Lines() []string {
	out := make([]string, g.rows)
	for r := range g.symbols {
		out[r] = string(g.symbols[r])
	}
	return out
}

// Find returns every cell of the given kind in raster order.
func (g *Grid) Find(kind Kind) []Pos {
	var out []Pos
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if g.tiles[r][c].Kind == kind {
				out = append(out, Pos{Row: r, Col: c})
			}
		}
	}
	return out
}

// SwitchPositions maps each switch id present on the grid to its cell. When
// a letter appears more than once the first cell in raster order wins.
func (g *Grid) SwitchPositions() map[int]Pos {
	out := make(map[int]Pos)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			t := g.tiles[r][c]
			if t.Kind != Switch {
				continue
			}
			if _, seen := out[t.SwitchID]; !seen {
				out[t.SwitchID] = Pos{Row: r, Col: c}
			}
		}
	}
	return out
}

// BufferCount returns the number of safety-buffer tiles.
func (g *Grid) BufferCount() int {
	return len(g.Find(Buffer))
}

// Nearest returns the cell closest to origin (Manhattan) that satisfies
// accept, breaking ties by raster order. ok is false when none does.
func (g *Grid) Nearest(origin Pos, accept func(Pos, Tile) bool) (Pos, bool) {
	best, bestDist, found := NoPos, 0, false
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			p := Pos{Row: r, Col: c}
			if !accept(p, g.tiles[r][c]) {
				continue
			}
			d := Manhattan(origin, p)
			if !found || d < bestDist {
				best, bestDist, found = p, d, true
			}
		}
	}
	return best, found
}

// ToggleBuffer places a safety buffer on a track, crossing or empty cell, or
// removes an existing buffer. Removal restores the symbol the buffer
// replaced; buffers that came with the level restore to '|' when a vertical
// neighbour is '|' or '+', otherwise '-'. It reports whether the cell now
// holds a buffer.
func (g *Grid) ToggleBuffer(p Pos) (bool, error) {
	if !g.Contains(p) {
		return false, fmt.Errorf("toggle buffer at %s: %w", p, ErrOutOfBounds)
	}
	switch g.tiles[p.Row][p.Col].Kind {
	case Buffer:
		sym, ok := g.replaced[p]
		if !ok {
			sym = g.derivedTrack(p)
		}
		delete(g.replaced, p)
		g.set(p, sym)
		return false, nil
	case Track, Curve, Crossing, Empty:
		g.replaced[p] = g.symbols[p.Row][p.Col]
		g.set(p, SymBuffer)
		return true, nil
	}
	return false, fmt.Errorf("toggle buffer at %s (%s): %w", p, g.tiles[p.Row][p.Col].Kind, ErrNotBufferable)
}

func (g *Grid) derivedTrack(p Pos) byte {
	for _, d := range []Direction{Up, Down} {
		switch g.Symbol(p.Step(d)) {
		case SymVertical, SymCrossing:
			return SymVertical
		}
	}
	return SymHorizontal
}

func (g *Grid) set(p Pos, sym byte) {
	g.symbols[p.Row][p.Col] = sym
	g.tiles[p.Row][p.Col] = Classify(sym)
}

// Clone returns an independent copy, including remembered buffer edits.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		rows:     g.rows,
		cols:     g.cols,
		symbols:  make([][]byte, g.rows),
		tiles:    make([][]Tile, g.rows),
		replaced: make(map[Pos]byte, len(g.replaced)),
	}
	for r := range g.symbols {
		c.symbols[r] = append([]byte(nil), g.symbols[r]...)
		c.tiles[r] = append([]Tile(nil), g.tiles[r]...)
	}
	for k, v := range g.replaced {
		c.replaced[k] = v
	}
	return c
}
