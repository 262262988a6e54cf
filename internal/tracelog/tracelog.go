// Package tracelog writes the per-tick CSV logs and the end-of-run metrics
// file of a simulation run:
//
//	trace.csv     tick,train,row,col,direction,state
//	switches.csv  tick,switch,mode,state,label,changed
//	signals.csv   tick,switch,signal,displayed
//	metrics.txt   one "name: value" line per metric
//
// A train appears in trace.csv while it is on the grid and once more on the
// tick it arrives or crashes.
package tracelog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/MZiaRAwan/PF-Project/internal/engine"
)

// File names inside an output directory.
const (
	TraceFile    = "trace.csv"
	SwitchesFile = "switches.csv"
	SignalsFile  = "signals.csv"
	MetricsFile  = "metrics.txt"
)

var (
	traceHeader    = []string{"tick", "train", "row", "col", "direction", "state"}
	switchesHeader = []string{"tick", "switch", "mode", "state", "label", "changed"}
	signalsHeader  = []string{"tick", "switch", "signal", "displayed"}
)

// Writer appends snapshot rows to the three CSV logs.
type Writer struct {
	dir      string
	trace    *csv.Writer
	switches *csv.Writer
	signals  *csv.Writer
	closers  []io.Closer

	done map[int]bool
}

// Create makes dir if needed and truncates the three CSV logs in it.
func Create(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var files []*os.File
	for _, name := range []string{TraceFile, SwitchesFile, SignalsFile} {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			for _, open := range files {
				open.Close()
			}
			return nil, fmt.Errorf("create %s: %w", name, err)
		}
		files = append(files, f)
	}
	w, err := NewWriter(files[0], files[1], files[2])
	if err != nil {
		for _, f := range files {
			f.Close()
		}
		return nil, err
	}
	w.dir = dir
	for _, f := range files {
		w.closers = append(w.closers, f)
	}
	return w, nil
}

// NewWriter writes the logs to the given writers and emits their headers.
func NewWriter(trace, switches, signals io.Writer) (*Writer, error) {
	w := &Writer{
		trace:    csv.NewWriter(trace),
		switches: csv.NewWriter(switches),
		signals:  csv.NewWriter(signals),
		done:     make(map[int]bool),
	}
	if err := w.trace.Write(traceHeader); err != nil {
		return nil, err
	}
	if err := w.switches.Write(switchesHeader); err != nil {
		return nil, err
	}
	if err := w.signals.Write(signalsHeader); err != nil {
		return nil, err
	}
	return w, nil
}

// Dir returns the output directory, "" for NewWriter.
func (w *Writer) Dir() string { return w.dir }

// Record appends the rows for the snapshot taken after a tick.
func (w *Writer) Record(snap engine.Snapshot) error {
	tick := strconv.FormatInt(snap.Tick-1, 10)
	for _, t := range snap.Trains {
		if t.State == "SCHEDULED" || w.done[t.ID] {
			continue
		}
		if t.State == "ARRIVED" || t.State == "CRASHED" {
			w.done[t.ID] = true
		}
		if err := w.trace.Write([]string{
			tick,
			strconv.Itoa(t.ID),
			strconv.Itoa(t.Pos.Row),
			strconv.Itoa(t.Pos.Col),
			t.Heading,
			t.State,
		}); err != nil {
			return fmt.Errorf("trace: %w", err)
		}
	}
	for _, sw := range snap.Switches {
		if err := w.switches.Write([]string{
			tick,
			sw.Letter,
			sw.Mode,
			strconv.Itoa(sw.State),
			sw.Label,
			strconv.FormatBool(sw.Changed),
		}); err != nil {
			return fmt.Errorf("switches: %w", err)
		}
		if err := w.signals.Write([]string{tick, sw.Letter, sw.Signal, sw.Displayed}); err != nil {
			return fmt.Errorf("signals: %w", err)
		}
	}
	return nil
}

// Flush flushes the three logs.
func (w *Writer) Flush() error {
	var errs []error
	for _, c := range []*csv.Writer{w.trace, w.switches, w.signals} {
		c.Flush()
		errs = append(errs, c.Error())
	}
	return errors.Join(errs...)
}

// Finish flushes the logs and, for a directory writer, writes metrics.txt.
func (w *Writer) Finish(m engine.Metrics) error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.dir == "" {
		return nil
	}
	f, err := os.Create(filepath.Join(w.dir, MetricsFile))
	if err != nil {
		return fmt.Errorf("create %s: %w", MetricsFile, err)
	}
	if err := WriteMetrics(f, m.Summary()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Close flushes the logs and closes files opened by Create.
func (w *Writer) Close() error {
	errs := []error{w.Flush()}
	for _, c := range w.closers {
		errs = append(errs, c.Close())
	}
	w.closers = nil
	return errors.Join(errs...)
}

// WriteMetrics writes the end-of-run metrics, two decimals for ratios.
func WriteMetrics(out io.Writer, s engine.Summary) error {
	lines := []struct {
		name  string
		value string
	}{
		{"ticks", strconv.FormatInt(s.Ticks, 10)},
		{"spawned", strconv.Itoa(s.Spawned)},
		{"arrivals", strconv.Itoa(s.Arrivals)},
		{"forced_arrivals", strconv.Itoa(s.ForcedArrivals)},
		{"crashes", strconv.Itoa(s.Crashes)},
		{"throughput", strconv.FormatFloat(s.Throughput, 'f', 2, 64)},
		{"avg_wait", strconv.FormatFloat(s.AvgWait, 'f', 2, 64)},
		{"wait_ticks", strconv.Itoa(s.WaitTicks)},
		{"signal_violations", strconv.Itoa(s.SignalViolations)},
		{"switch_flips", strconv.Itoa(s.SwitchFlips)},
		{"train_ticks", strconv.Itoa(s.TrainTicks)},
		{"buffers", strconv.Itoa(s.Buffers)},
		{"energy_efficiency", strconv.FormatFloat(s.EnergyEfficiency, 'f', 2, 64)},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(out, "%s: %s\n", l.name, l.value); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
