package router

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Weather modifies routing (RAIN) and signal display (FOG).
type Weather int

const (
	Clear Weather = iota
	Rain
	Fog
)

func (w Weather) String() string {
	switch w {
	case Rain:
		return "RAIN"
	case Fog:
		return "FOG"
	}
	return "CLEAR"
}

// ParseWeather accepts the weather names case-insensitively, plus the numeric
// forms 0/1/2 used by older level files. An empty string is CLEAR.
func ParseWeather(s string) (Weather, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "CLEAR", "NORMAL", "0":
		return Clear, nil
	case "RAIN", "1":
		return Rain, nil
	case "FOG", "2":
		return Fog, nil
	}
	return Clear, fmt.Errorf("unknown weather %q", s)
}

// Rain parameters: after RainStreak consecutive moves a train rolls once and
// pauses when the roll is below RainChance out of 100.
const (
	RainStreak = 5
	RainChance = 30
)

// rainRoll returns a value in [0, 100) that depends only on seed, tick and
// train id.
func rainRoll(seed uint64, tick int64, id int) int {
	r := rand.New(rand.NewPCG(seed, uint64(tick)<<32|uint64(uint32(id))))
	return r.IntN(100)
}
