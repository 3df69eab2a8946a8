package harness

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/bartekus/sortbench/internal/config"
	"github.com/bartekus/sortbench/internal/dataset"
	"github.com/bartekus/sortbench/internal/registry"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.OutDir = filepath.Join(t.TempDir(), "out")
	return cfg
}

func writeScript(t *testing.T, dir, name, body string) registry.Descriptor {
	t.Helper()
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755)
	require.NoError(t, err)
	return registry.Descriptor{Name: name, Command: path}
}

// smallMatrix keeps integration runs fast while covering both equivalence
// protocols and the check mode.
func smallMatrix() []Entry {
	return []Entry{
		{Name: "plain_sort", Category: dataset.CategoryString, Flags: ""},
		{Name: "numeric_sort", Category: dataset.CategoryNumeric, Flags: "-n"},
		{Name: "unique_sort", Category: dataset.CategoryDuplicate, Flags: "-u"},
		{Name: "random_shuffle", Category: dataset.CategoryString, Flags: "-R"},
		{Name: "check_sorted", Category: dataset.CategoryNumeric, Flags: "-c"},
	}
}

func TestHarness_AllPassing(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	ref := writeScript(t, dir, "refsort", `exec sort "$@"`)
	good := writeScript(t, dir, "goodsort", `exec sort "$@"`)

	var out bytes.Buffer
	h, err := New(testConfig(t), registry.Resolved{
		Reference:  ref,
		Candidates: []registry.Descriptor{good},
	}, smallMatrix(), &out, zap.NewNop())
	require.NoError(t, err)

	status, err := h.Run(context.Background(), []SizeTier{{Label: "tiny", Lines: 200}})
	require.NoError(t, err)
	assert.Equal(t, 0, status, "output:\n%s", out.String())
	assert.Contains(t, out.String(), "PASS goodsort")
	assert.Contains(t, out.String(), "5 passed, 0 failed")
}

func TestHarness_OneFailureYieldsNonZeroStatus(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	ref := writeScript(t, dir, "refsort", `exec sort "$@"`)
	good := writeScript(t, dir, "goodsort", `exec sort "$@"`)
	// Drops the first output line, so every ordering case mismatches.
	broken := writeScript(t, dir, "dropsort", `sort "$@" | tail -n +2`)

	var out bytes.Buffer
	h, err := New(testConfig(t), registry.Resolved{
		Reference:  ref,
		Candidates: []registry.Descriptor{good, broken},
	}, smallMatrix(), &out, zap.NewNop())
	require.NoError(t, err)

	status, err := h.Run(context.Background(), []SizeTier{{Label: "tiny", Lines: 200}})
	require.NoError(t, err)
	assert.Equal(t, 1, status)
	assert.Contains(t, out.String(), "PASS goodsort")
	assert.Contains(t, out.String(), "FAIL dropsort")
}

func TestHarness_EmptyOutputIsAlwaysAFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	ref := writeScript(t, dir, "refsort", `exec sort "$@"`)
	empty := writeScript(t, dir, "emptysort", `exit 0`)

	matrix := []Entry{
		{Name: "plain_sort", Category: dataset.CategoryString, Flags: ""},
		{Name: "random_shuffle", Category: dataset.CategoryString, Flags: "-R"},
	}

	var out bytes.Buffer
	h, err := New(testConfig(t), registry.Resolved{
		Reference:  ref,
		Candidates: []registry.Descriptor{empty},
	}, matrix, &out, zap.NewNop())
	require.NoError(t, err)

	status, err := h.Run(context.Background(), []SizeTier{{Label: "tiny", Lines: 100}})
	require.NoError(t, err)
	assert.Equal(t, 1, status)
	assert.Contains(t, out.String(), "0 passed, 2 failed")
}

func TestHarness_ReusesCorporaAcrossRuns(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	ref := writeScript(t, dir, "refsort", `exec sort "$@"`)

	cfg := testConfig(t)
	matrix := []Entry{{Name: "plain_sort", Category: dataset.CategoryString, Flags: ""}}
	tier := []SizeTier{{Label: "tiny", Lines: 100}}

	run := func() {
		var out bytes.Buffer
		h, err := New(cfg, registry.Resolved{Reference: ref}, matrix, &out, zap.NewNop())
		require.NoError(t, err)
		_, err = h.Run(context.Background(), tier)
		require.NoError(t, err)
	}

	run()
	corpus := filepath.Join(cfg.DataDir, "string_tiny.txt")
	info1, err := os.Stat(corpus)
	require.NoError(t, err)

	run()
	info2, err := os.Stat(corpus)
	require.NoError(t, err)
	assert.Equal(t, info1.ModTime(), info2.ModTime(), "corpus was regenerated")
}

func TestHarness_ScratchOutputsRemoved(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	ref := writeScript(t, dir, "refsort", `exec sort "$@"`)
	cfg := testConfig(t)

	var out bytes.Buffer
	h, err := New(cfg, registry.Resolved{Reference: ref}, smallMatrix(), &out, zap.NewNop())
	require.NoError(t, err)
	_, err = h.Run(context.Background(), []SizeTier{{Label: "tiny", Lines: 100}})
	require.NoError(t, err)

	_, err = os.Stat(cfg.OutDir)
	assert.True(t, os.IsNotExist(err), "scratch dir should be cleaned up")
}

func TestMatrix(t *testing.T) {
	entries := DefaultMatrix()
	require.NotEmpty(t, entries)

	seen := map[string]bool{}
	for _, e := range entries {
		assert.False(t, seen[e.Name], "duplicate matrix entry %s", e.Name)
		seen[e.Name] = true
		assert.True(t, e.Category.Valid())
	}

	cases := Expand(entries, SizeTier{Label: "100k", Lines: 100_000})
	require.Len(t, cases, len(entries))
	assert.Equal(t, "100k", cases[0].SizeLabel)
	assert.Equal(t, 100_000, cases[0].Lines)

	check := Case{Entry: Entry{Flags: "-c"}}
	assert.True(t, check.CheckMode())
	nr := Case{Entry: Entry{Flags: "-n -r"}}
	assert.False(t, nr.CheckMode())
	assert.Equal(t, []string{"-n", "-r"}, nr.FlagTokens())
}

func TestTiers(t *testing.T) {
	assert.Len(t, Tiers(false, false), 2)
	assert.Len(t, Tiers(true, false), 3)
	assert.Len(t, Tiers(true, true), 4)
	assert.Equal(t, "30m", Tiers(true, true)[3].Label)
}
