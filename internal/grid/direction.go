package grid

import (
	"fmt"
	"strings"
)

// Direction is a train heading. The numeric order UP, RIGHT, DOWN, LEFT is
// also the tie-breaking priority used wherever several directions score the
// same.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// Directions lists all headings in priority order.
var Directions = [4]Direction{Up, Right, Down, Left}

// Delta returns the row and column offset of one step in direction d.
func (d Direction) Delta() (dr, dc int) {
	switch d {
	case Up:
		return -1, 0
	case Right:
		return 0, 1
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	}
	return 0, 0
}

// Horizontal reports whether d is LEFT or RIGHT.
func (d Direction) Horizontal() bool {
	return d == Left || d == Right
}

// Valid reports whether d is one of the four headings.
func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "UP"
	case Right:
		return "RIGHT"
	case Down:
		return "DOWN"
	case Left:
		return "LEFT"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection accepts a heading name (case-insensitive), its first letter,
// or an arrow glyph (^ > v <).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UP", "U", "^", "0":
		return Up, nil
	case "RIGHT", "R", ">", "1":
		return Right, nil
	case "DOWN", "D", "V", "2":
		return Down, nil
	case "LEFT", "L", "<", "3":
		return Left, nil
	}
	return Up, fmt.Errorf("unknown direction %q", s)
}

// Pos is a grid cell address.
type Pos struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// NoPos marks an absent position (an unplaced switch, an unassigned
// destination).
var NoPos = Pos{Row: -1, Col: -1}

// Valid reports whether p is not NoPos-like (both coordinates non-negative).
func (p Pos) Valid() bool {
	return p.Row >= 0 && p.Col >= 0
}

// Step returns the neighbouring cell in direction d.
func (p Pos) Step(d Direction) Pos {
	dr, dc := d.Delta()
	return Pos{Row: p.Row + dr, Col: p.Col + dc}
}

// Less orders positions in raster-scan order.
func (p Pos) Less(o Pos) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Col < o.Col
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Manhattan returns |Δrow| + |Δcol|.
func Manhattan(a, b Pos) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

// Chebyshev returns max(|Δrow|, |Δcol|).
func Chebyshev(a, b Pos) int {
	return max(abs(a.Row-b.Row), abs(a.Col-b.Col))
}

// Toward returns the heading of the single step from a to an orthogonally
// adjacent b. ok is false when b is not adjacent to a.
func Toward(a, b Pos) (d Direction, ok bool) {
	for _, d := range Directions {
		if a.Step(d) == b {
			return d, true
		}
	}
	return Up, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
