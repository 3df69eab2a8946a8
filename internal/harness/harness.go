// Package harness orchestrates the full comparison run: corpus generation,
// execution, profiling, verification and reporting for every (matrix entry
// × size tier) pair.
package harness

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bartekus/sortbench/internal/config"
	"github.com/bartekus/sortbench/internal/dataset"
	"github.com/bartekus/sortbench/internal/execrun"
	"github.com/bartekus/sortbench/internal/registry"
	"github.com/bartekus/sortbench/internal/report"
	"github.com/bartekus/sortbench/internal/verify"
)

type state int

const (
	stateIdle state = iota
	stateGeneratingData
	stateExecuting
	stateVerifying
	stateReporting
	stateDone
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateGeneratingData:
		return "generating-data"
	case stateExecuting:
		return "executing"
	case stateVerifying:
		return "verifying"
	case stateReporting:
		return "reporting"
	case stateDone:
		return "done"
	}
	return "unknown"
}

// Harness owns one full invocation. Not safe for concurrent use; all
// internal concurrency is bounded to the correctness-capture pass.
type Harness struct {
	cfg      config.Config
	resolved registry.Resolved
	matrix   []Entry

	gen      *dataset.Generator
	runner   *execrun.Runner
	verifier *verify.Verifier
	agg      *report.Aggregator
	log      *zap.Logger

	state state
}

// New wires a harness for the given implementations and test matrix,
// writing results to out.
func New(cfg config.Config, resolved registry.Resolved, matrix []Entry, out io.Writer, log *zap.Logger) (*Harness, error) {
	if log == nil {
		log = zap.NewNop()
	}
	runner, err := execrun.NewRunner(cfg.OutDir, log)
	if err != nil {
		return nil, err
	}
	return &Harness{
		cfg:      cfg,
		resolved: resolved,
		matrix:   matrix,
		gen:      dataset.NewGenerator(cfg.DataDir, log),
		runner:   runner,
		verifier: verify.New(cfg.ChecksumThresholdLines, log),
		agg:      report.NewAggregator(out),
		log:      log,
		state:    stateIdle,
	}, nil
}

func (h *Harness) setState(s state) {
	h.log.Debug("state transition", zap.Stringer("from", h.state), zap.Stringer("to", s))
	h.state = s
}

// Run executes the matrix once per tier and returns the process exit
// status. An error means a harness defect (storage failure, unspawnable
// implementation); candidate failures are recorded, never returned.
func (h *Harness) Run(ctx context.Context, tiers []SizeTier) (int, error) {
	defer func() {
		if err := h.runner.Cleanup(); err != nil {
			h.log.Warn("cleaning scratch outputs", zap.Error(err))
		}
	}()

	for _, tier := range tiers {
		for _, c := range Expand(h.matrix, tier) {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			if err := h.runCase(ctx, c); err != nil {
				return 0, fmt.Errorf("case %s/%s: %w", c.Name, c.SizeLabel, err)
			}
		}
	}

	h.setState(stateReporting)
	status := h.agg.Finalize()
	h.setState(stateDone)
	return status, nil
}

func (h *Harness) runCase(ctx context.Context, c Case) error {
	h.setState(stateGeneratingData)
	input, err := h.gen.Generate(c.Category, c.Lines, c.SizeLabel)
	if err != nil {
		return err
	}

	h.setState(stateExecuting)
	flags := c.FlagTokens()
	timeout := h.cfg.TimeoutFor(c.Lines)
	impls := append([]registry.Descriptor{h.resolved.Reference}, h.resolved.Candidates...)

	// Correctness captures are independent of timing and may overlap.
	captures := make([]execrun.Capture, len(impls))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range impls {
		i, d := i, d
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()
			res, err := h.runner.Capture(cctx, d, flags, input)
			if err != nil {
				return err
			}
			captures[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Timed runs stay strictly sequential so wall-clock comparisons mean
	// something. Implementations that already hung are not re-timed.
	metrics := make([]execrun.Metrics, len(impls))
	scratch := make([]string, 0, 2*len(impls))
	for i, d := range impls {
		scratch = append(scratch, captures[i].OutputPath)
		if captures[i].TimedOut {
			continue
		}
		pctx, cancel := context.WithTimeout(ctx, timeout)
		res, m, err := h.runner.Profile(pctx, d, flags, input)
		cancel()
		if err != nil {
			return err
		}
		scratch = append(scratch, res.OutputPath)
		metrics[i] = m
	}

	h.setState(stateVerifying)
	refCap := captures[0]
	results := make([]report.ImplResult, 0, len(h.resolved.Candidates))
	for i, d := range h.resolved.Candidates {
		r := report.ImplResult{Name: d.Name, Metrics: metrics[i+1]}
		outcome, err := h.judge(c, flags, refCap, captures[i+1])
		if err != nil {
			return err
		}
		r.Passed = outcome.Equivalent
		r.Reason = outcome.Reason
		r.Excerpt = outcome.Excerpt
		results = append(results, r)
	}

	h.agg.Record(report.CaseResult{
		Name:      c.Name,
		Flags:     c.Flags,
		SizeLabel: c.SizeLabel,
		Reference: metrics[0],
		Results:   results,
	})

	// Captures are ephemeral; the next case gets fresh ones.
	for _, p := range scratch {
		if err := os.Remove(p); err != nil {
			h.log.Warn("removing capture file", zap.String("path", p), zap.Error(err))
		}
	}
	return nil
}

// judge maps execution failures and output comparison onto one verification
// outcome for a (case × candidate) pair.
func (h *Harness) judge(c Case, flags []string, ref, cand execrun.Capture) (verify.Outcome, error) {
	switch {
	case cand.TimedOut:
		return verify.Outcome{Reason: "timed out"}, nil
	case ref.TimedOut:
		// Not the candidate's fault, but the pair is unverifiable and a
		// silent pass would be worse.
		return verify.Outcome{Reason: "reference run timed out, pair not comparable"}, nil
	case c.CheckMode():
		// Check mode signals through the exit status, not stdout.
		if cand.ExitCode == ref.ExitCode {
			return verify.Outcome{Equivalent: true}, nil
		}
		return verify.Outcome{
			Reason: fmt.Sprintf("check exit status differs: ref=%d cand=%d", ref.ExitCode, cand.ExitCode),
		}, nil
	case cand.ExitCode != 0:
		return verify.Outcome{Reason: fmt.Sprintf("exited with status %d", cand.ExitCode)}, nil
	case ref.ExitCode != 0:
		return verify.Outcome{
			Reason: fmt.Sprintf("reference exited with status %d, pair not comparable", ref.ExitCode),
		}, nil
	}
	return h.verifier.Verify(ref.OutputPath, cand.OutputPath, flags, c.Lines)
}
