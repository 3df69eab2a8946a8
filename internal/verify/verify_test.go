package verify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeOutput(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOrderInsensitive(t *testing.T) {
	assert.True(t, OrderInsensitive([]string{"-R"}))
	assert.True(t, OrderInsensitive([]string{"-u", "--random-sort"}))
	assert.False(t, OrderInsensitive([]string{"-n", "-r"}))
	assert.False(t, OrderInsensitive(nil))
}

func TestVerify_ExactIsReflexive(t *testing.T) {
	dir := t.TempDir()
	out := writeOutput(t, dir, "ref.out", []string{"a", "b", "c"})

	v := New(5_000_000, zap.NewNop())
	o, err := v.Verify(out, out, nil, 3)
	require.NoError(t, err)
	assert.True(t, o.Equivalent)
}

func TestVerify_PermutationUnderBothProtocols(t *testing.T) {
	dir := t.TempDir()
	ref := writeOutput(t, dir, "ref.out", []string{"b", "a", "c"})
	cand := writeOutput(t, dir, "cand.out", []string{"c", "b", "a"})

	v := New(5_000_000, zap.NewNop())

	// Multiset protocol tolerates permutation.
	o, err := v.Verify(ref, cand, []string{"-R"}, 3)
	require.NoError(t, err)
	assert.True(t, o.Equivalent)

	// Exact protocol does not.
	o, err = v.Verify(ref, cand, nil, 3)
	require.NoError(t, err)
	assert.False(t, o.Equivalent)
	assert.NotEmpty(t, o.Excerpt)
}

func TestVerify_ExcerptNamesFirstDifference(t *testing.T) {
	dir := t.TempDir()
	ref := writeOutput(t, dir, "ref.out", []string{"a", "b", "c"})
	cand := writeOutput(t, dir, "cand.out", []string{"a", "X", "c"})

	v := New(5_000_000, zap.NewNop())
	o, err := v.Verify(ref, cand, nil, 3)
	require.NoError(t, err)
	assert.False(t, o.Equivalent)

	want := []string{`line 2: ref="b" cand="X"`}
	if diff := cmp.Diff(want, o.Excerpt); diff != "" {
		t.Errorf("excerpt mismatch (-want +got):\n%s", diff)
	}
}

func TestVerify_ThresholdSwitch(t *testing.T) {
	dir := t.TempDir()
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = strings.Repeat("x", i%7+1)
	}
	corrupted := append([]string(nil), lines...)
	corrupted[41] = "CORRUPT"

	ref := writeOutput(t, dir, "ref.out", lines)
	cand := writeOutput(t, dir, "cand.out", corrupted)

	// Both strategies must independently detect a single-line corruption.
	v := New(50, zap.NewNop())

	// lineCount above threshold: digest path, no excerpt available.
	o, err := v.Verify(ref, cand, nil, 51)
	require.NoError(t, err)
	assert.False(t, o.Equivalent)
	assert.Empty(t, o.Excerpt)

	// lineCount at threshold: still the exact path (switch is strictly greater).
	o, err = v.Verify(ref, cand, nil, 50)
	require.NoError(t, err)
	assert.False(t, o.Equivalent)
	assert.NotEmpty(t, o.Excerpt)
}

func TestVerify_MultisetDigestPath(t *testing.T) {
	dir := t.TempDir()
	ref := writeOutput(t, dir, "ref.out", []string{"b", "a", "c", "a"})
	perm := writeOutput(t, dir, "perm.out", []string{"a", "c", "a", "b"})
	wrong := writeOutput(t, dir, "wrong.out", []string{"a", "c", "b", "b"})

	v := New(1, zap.NewNop())

	o, err := v.Verify(ref, perm, []string{"-R"}, 4)
	require.NoError(t, err)
	assert.True(t, o.Equivalent, "permutation must pass the order-insensitive digest")

	o, err = v.Verify(ref, wrong, []string{"-R"}, 4)
	require.NoError(t, err)
	assert.False(t, o.Equivalent, "different multiset must fail the order-insensitive digest")
}

func TestVerify_EmptyCandidateNeverPasses(t *testing.T) {
	dir := t.TempDir()
	ref := writeOutput(t, dir, "ref.out", []string{"a", "b"})
	empty := writeOutput(t, dir, "empty.out", nil)

	v := New(5_000_000, zap.NewNop())

	for _, flags := range [][]string{nil, {"-R"}} {
		o, err := v.Verify(ref, empty, flags, 2)
		require.NoError(t, err)
		assert.False(t, o.Equivalent, "flags %v", flags)
		assert.Contains(t, o.Reason, "no output")
	}
}

func TestVerify_BothEmptyPasses(t *testing.T) {
	dir := t.TempDir()
	a := writeOutput(t, dir, "a.out", nil)
	b := writeOutput(t, dir, "b.out", nil)

	v := New(5_000_000, zap.NewNop())
	o, err := v.Verify(a, b, nil, 0)
	require.NoError(t, err)
	assert.True(t, o.Equivalent)
}

func TestVerify_LengthMismatch(t *testing.T) {
	dir := t.TempDir()
	ref := writeOutput(t, dir, "ref.out", []string{"a", "b", "c"})
	short := writeOutput(t, dir, "short.out", []string{"a", "b"})
	long := writeOutput(t, dir, "long.out", []string{"a", "b", "c", "d"})

	v := New(5_000_000, zap.NewNop())

	o, err := v.Verify(ref, short, nil, 3)
	require.NoError(t, err)
	assert.False(t, o.Equivalent)
	assert.Contains(t, o.Reason, "ends early")

	o, err = v.Verify(ref, long, nil, 3)
	require.NoError(t, err)
	assert.False(t, o.Equivalent)
	assert.Contains(t, o.Reason, "extra output")

	o, err = v.Verify(ref, short, []string{"-R"}, 3)
	require.NoError(t, err)
	assert.False(t, o.Equivalent)
	assert.Contains(t, o.Reason, "line counts differ")
}

func TestVerify_MissingFileIsHarnessError(t *testing.T) {
	dir := t.TempDir()
	ref := writeOutput(t, dir, "ref.out", []string{"a"})

	v := New(5_000_000, zap.NewNop())
	_, err := v.Verify(ref, filepath.Join(dir, "missing.out"), nil, 1)
	assert.Error(t, err)
}
