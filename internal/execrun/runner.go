// Package execrun invokes external sorting implementations, capturing their
// output for verification and their resource usage for profiling.
package execrun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bartekus/sortbench/internal/registry"
)

// Capture is the result of one invocation: where stdout landed and how the
// process exited. A timed-out or non-zero exit is data, not an error — the
// verifier decides what it means.
type Capture struct {
	Descriptor registry.Descriptor
	OutputPath string
	ExitCode   int
	TimedOut   bool
}

// Metrics holds the profiled resource usage of one invocation. PeakMemMB is
// zero when the platform cannot report it.
type Metrics struct {
	Wall      time.Duration
	User      time.Duration
	Sys       time.Duration
	PeakMemMB float64
}

// Runner executes implementations with stdout redirected into scratch files
// under a single output directory.
type Runner struct {
	outDir string
	log    *zap.Logger
}

// NewRunner creates the scratch directory if needed.
func NewRunner(outDir string, log *zap.Logger) (*Runner, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &Runner{outDir: outDir, log: log}, nil
}

// Cleanup removes every capture file produced so far.
func (r *Runner) Cleanup() error {
	return os.RemoveAll(r.outDir)
}

// Capture runs the implementation with the given flag tokens and input
// file, redirecting stdout to a fresh capture file and discarding stderr.
// The caller bounds the run through ctx; on expiry the subprocess is killed
// and the capture comes back with TimedOut set.
func (r *Runner) Capture(ctx context.Context, desc registry.Descriptor, flags []string, inputPath string) (Capture, error) {
	res := Capture{
		Descriptor: desc,
		OutputPath: filepath.Join(r.outDir, desc.Name+"_"+uuid.NewString()+".out"),
	}

	out, err := os.Create(res.OutputPath)
	if err != nil {
		return Capture{}, fmt.Errorf("creating capture file: %w", err)
	}
	defer func() { _ = out.Close() }()

	cmd := exec.CommandContext(ctx, desc.Command, append(append([]string{}, flags...), inputPath)...)
	cmd.Stdout = out
	// Stderr stays nil: implementation diagnostics are not part of the
	// correctness contract.

	runErr := cmd.Run()
	switch {
	case runErr == nil:
		res.ExitCode = 0
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.TimedOut = true
		res.ExitCode = -1
		r.log.Warn("implementation timed out",
			zap.String("name", desc.Name),
			zap.Strings("flags", flags))
	default:
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return Capture{}, fmt.Errorf("running %s: %w", desc.Name, runErr)
		}
		// Non-zero exit is meaningful output for check-mode flags.
		res.ExitCode = exitErr.ExitCode()
	}
	return res, nil
}

// Profile runs the same invocation as Capture under timing and rusage
// instrumentation. Timed runs must not overlap; the harness serializes
// calls to Profile across implementations.
func (r *Runner) Profile(ctx context.Context, desc registry.Descriptor, flags []string, inputPath string) (Capture, Metrics, error) {
	res := Capture{
		Descriptor: desc,
		OutputPath: filepath.Join(r.outDir, desc.Name+"_"+uuid.NewString()+".out"),
	}

	out, err := os.Create(res.OutputPath)
	if err != nil {
		return Capture{}, Metrics{}, fmt.Errorf("creating capture file: %w", err)
	}
	defer func() { _ = out.Close() }()

	cmd := exec.CommandContext(ctx, desc.Command, append(append([]string{}, flags...), inputPath)...)
	cmd.Stdout = out

	start := time.Now()
	runErr := cmd.Run()
	wall := time.Since(start)

	switch {
	case runErr == nil:
		res.ExitCode = 0
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.TimedOut = true
		res.ExitCode = -1
	default:
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return Capture{}, Metrics{}, fmt.Errorf("profiling %s: %w", desc.Name, runErr)
		}
		res.ExitCode = exitErr.ExitCode()
	}

	m := Metrics{Wall: wall}
	if ps := cmd.ProcessState; ps != nil {
		m.User = ps.UserTime()
		m.Sys = ps.SystemTime()
		m.PeakMemMB = peakMemMB(ps)
	}
	return res, m, nil
}
