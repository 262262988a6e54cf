package switches

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Well-known state labels. Any other label keeps the train's heading.
const (
	LabelStraight = "STRAIGHT"
	LabelTurn     = "TURN"
)

// NormalizeLabel trims, NFC-normalises and upper-cases a state label so that
// "turn", "Turn " and "TURN" compare equal.
func NormalizeLabel(s string) string {
	return cases.Upper(language.Und).String(norm.NFC.String(strings.TrimSpace(s)))
}
