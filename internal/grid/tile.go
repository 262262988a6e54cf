package grid

// Kind is the closed set of tile classifications.
type Kind int

const (
	Empty Kind = iota
	Track
	Curve
	Switch
	Crossing
	Buffer
	Spawn
	Destination
)

func (k Kind) String() string {
	switch k {
	case Track:
		return "track"
	case Curve:
		return "curve"
	case Switch:
		return "switch"
	case Crossing:
		return "crossing"
	case Buffer:
		return "buffer"
	case Spawn:
		return "spawn"
	case Destination:
		return "destination"
	}
	return "empty"
}

// Axis is the orientation of a straight track tile.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// CurveKind distinguishes the two curve glyphs.
type CurveKind int

const (
	Slash     CurveKind = iota // '/'
	Backslash                  // '\'
)

// Tile symbols.
const (
	SymHorizontal  = '-'
	SymVertical    = '|'
	SymSlash       = '/'
	SymBackslash   = '\\'
	SymCrossing    = '+'
	SymBuffer      = '='
	SymSpawn       = 'S'
	SymDestination = 'D'
	SymEmpty       = ' '
)

// MaxSwitches is the number of letter-addressable switches (A-Z).
const MaxSwitches = 26

// Tile is a classified cell. Only the fields relevant to Kind are set:
// Axis for Track, Curve for Curve, SwitchID for Switch.
type Tile struct {
	Kind     Kind
	Axis     Axis
	Curve    CurveKind
	SwitchID int
	Symbol   byte
}

// Traversable reports whether a train may occupy the tile.
func (t Tile) Traversable() bool {
	return t.Kind != Empty
}

// Classify maps a stored symbol to its tile. 'S' and 'D' are reserved for
// spawn and destination, so switches S and D cannot appear on a grid.
func Classify(sym byte) Tile {
	t := Tile{Symbol: sym, SwitchID: -1}
	switch {
	case sym == SymHorizontal:
		t.Kind, t.Axis = Track, Horizontal
	case sym == SymVertical:
		t.Kind, t.Axis = Track, Vertical
	case sym == SymSlash:
		t.Kind, t.Curve = Curve, Slash
	case sym == SymBackslash:
		t.Kind, t.Curve = Curve, Backslash
	case sym == SymCrossing:
		t.Kind = Crossing
	case sym == SymBuffer:
		t.Kind = Buffer
	case sym == SymSpawn:
		t.Kind = Spawn
	case sym == SymDestination:
		t.Kind = Destination
	case sym >= 'A' && sym <= 'Z':
		t.Kind, t.SwitchID = Switch, int(sym-'A')
	default:
		t.Kind = Empty
	}
	return t
}

// SwitchLetter returns the grid letter for a switch id.
func SwitchLetter(id int) byte {
	return byte('A' + id)
}

// SwitchID parses a switch letter. ok is false for anything outside A-Z.
func SwitchID(letter string) (int, bool) {
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return -1, false
	}
	return int(letter[0] - 'A'), true
}
