// Package report accumulates verification outcomes across the run and
// prints per-case results as they are determined.
package report

import (
	"fmt"
	"io"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/bartekus/sortbench/internal/execrun"
)

// ImplResult is one candidate's judgment and metrics for one test case.
type ImplResult struct {
	Name    string
	Passed  bool
	Reason  string
	Excerpt []string
	Metrics execrun.Metrics
}

// CaseResult bundles everything the aggregator prints for one test case.
type CaseResult struct {
	Name      string
	Flags     string
	SizeLabel string
	Reference execrun.Metrics
	Results   []ImplResult
}

// Aggregator owns the run-wide pass/fail counters. Counters are atomic
// because correctness captures may be recorded from concurrent goroutines.
type Aggregator struct {
	passed atomic.Int64
	failed atomic.Int64
	out    io.Writer
}

// NewAggregator writes all result output to out.
func NewAggregator(out io.Writer) *Aggregator {
	return &Aggregator{out: out}
}

// Speedup returns ref/impl as a ratio, falling back to a neutral 1 when
// either duration is zero so a degenerate measurement never divides by zero.
func Speedup(ref, impl time.Duration) float64 {
	if ref <= 0 || impl <= 0 {
		return 1
	}
	return float64(ref) / float64(impl)
}

// Record counts each implementation's outcome and prints the case block:
// pass/fail lines first, then the performance table with speedups.
func (a *Aggregator) Record(cr CaseResult) {
	fmt.Fprintf(a.out, "\n=== %s (%q, %s) ===\n", cr.Name, cr.Flags, cr.SizeLabel)

	for _, r := range cr.Results {
		if r.Passed {
			a.passed.Add(1)
			fmt.Fprintf(a.out, "PASS %s\n", r.Name)
			continue
		}
		a.failed.Add(1)
		fmt.Fprintf(a.out, "FAIL %s: %s\n", r.Name, r.Reason)
		for _, line := range r.Excerpt {
			fmt.Fprintf(a.out, "     %s\n", line)
		}
	}

	tw := tabwriter.NewWriter(a.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "impl\twall\tuser\tsys\tmem(MB)\tspeedup")
	metricsRow(tw, "reference", cr.Reference, 1)
	for _, r := range cr.Results {
		metricsRow(tw, r.Name, r.Metrics, Speedup(cr.Reference.Wall, r.Metrics.Wall))
	}
	_ = tw.Flush()
}

func metricsRow(w io.Writer, name string, m execrun.Metrics, speedup float64) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\t%.2fx\n",
		name,
		m.Wall.Round(time.Millisecond),
		m.User.Round(time.Millisecond),
		m.Sys.Round(time.Millisecond),
		m.PeakMemMB,
		speedup)
}

// Passed returns the number of recorded passes.
func (a *Aggregator) Passed() int { return int(a.passed.Load()) }

// Failed returns the number of recorded failures.
func (a *Aggregator) Failed() int { return int(a.failed.Load()) }

// Finalize prints the aggregate summary and returns the process exit
// status: zero iff no recorded verification failed.
func (a *Aggregator) Finalize() int {
	passed, failed := a.Passed(), a.Failed()
	fmt.Fprintf(a.out, "\n==============================\n")
	fmt.Fprintf(a.out, "Summary: %d passed, %d failed\n", passed, failed)
	if failed > 0 {
		return 1
	}
	return 0
}
