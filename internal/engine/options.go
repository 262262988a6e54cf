package engine

import (
	"log/slog"

	"github.com/MZiaRAwan/PF-Project/internal/collision"
	"github.com/MZiaRAwan/PF-Project/internal/router"
	"github.com/MZiaRAwan/PF-Project/internal/train"
)

// DefaultHaltTicks is the emergency-halt duration used when a caller passes
// zero or less.
const DefaultHaltTicks = 3

type config struct {
	policy   collision.Policy
	weather  router.Weather
	seed     uint64
	recovery bool
	strict   bool
	limits   train.Limits
	log      *slog.Logger
}

func defaultConfig() config {
	return config{
		policy:   collision.LoserWaits,
		weather:  router.Clear,
		recovery: true,
		strict:   true,
		limits:   train.DefaultLimits,
		log:      slog.New(slog.DiscardHandler),
	}
}

// Option configures an Engine.
type Option func(*config)

// WithPolicy selects the equal-priority collision policy.
//
// Default: collision.LoserWaits.
func WithPolicy(p collision.Policy) Option {
	return func(c *config) { c.policy = p }
}

// WithWeather sets the weather. RAIN adds seeded pauses; FOG delays the
// displayed signal color by one tick.
func WithWeather(w router.Weather) Option {
	return func(c *config) { c.weather = w }
}

// WithSeed sets the seed for rain rolls.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.seed = seed }
}

// WithRecovery enables or disables stuck-train recovery. Default on.
func WithRecovery(on bool) Option {
	return func(c *config) { c.recovery = on }
}

// WithLimits overrides the stuck-train recovery thresholds.
func WithLimits(l train.Limits) Option {
	return func(c *config) { c.limits = l }
}

// WithStrictProgress enables or disables the router's progress guard.
// Default on.
//
// With the guard on, a move that would take a train farther from its
// destination is replaced by a neighbour that brings it closer, or by a
// stay. This overrides curves and STRAIGHT switches, so a route that must
// first lead away from the destination (a U-turn loop, a detour around a
// block) stalls: the train waits in place, and is delivered by stuck-train
// recovery only once it is farther than Limits.Close from the destination.
// Levels with such routes set strict_progress: false.
func WithStrictProgress(on bool) Option {
	return func(c *config) { c.strict = on }
}

// WithLogger sets the structured logger. Default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}
