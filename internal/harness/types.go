package harness

import "github.com/MZiaRAwan/PF-Project/internal/engine"

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion and expected edit error held and
	// the replay matched.
	Pass bool `json:"pass"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	RunID    string         `json:"run_id"`
	Ticks    int64          `json:"ticks"`
	Complete bool           `json:"complete"`
	Digest   string         `json:"digest"`
	Metrics  engine.Summary `json:"metrics"`

	// Snapshots holds the snapshot taken after each tick.
	Snapshots []engine.Snapshot `json:"-"`

	// CSV logs and metrics text as tracelog writes them.
	Trace       string `json:"-"`
	Switches    string `json:"-"`
	Signals     string `json:"-"`
	MetricsText string `json:"-"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// snapshot returns the snapshot after tick, or the final one for nil.
func (r *Result) snapshot(tick *int64) (engine.Snapshot, bool) {
	if len(r.Snapshots) == 0 {
		return engine.Snapshot{}, false
	}
	if tick == nil {
		return r.Snapshots[len(r.Snapshots)-1], true
	}
	if *tick >= int64(len(r.Snapshots)) {
		return engine.Snapshot{}, false
	}
	return r.Snapshots[*tick], true
}
