// Package verify decides whether a candidate's captured output is
// equivalent to the reference's, under the protocol the invoked sort mode
// requires.
//
// Two independent choices are made per comparison. The protocol depends on
// the flags: random-shuffle modes are order-insensitive, so equivalence is
// multiset equality; every other mode demands exact byte identity. The
// strategy depends on corpus size: above a configurable line threshold the
// outputs are digested instead of diffed, trading a digest-collision risk
// for bounded comparison cost.
package verify

import (
	"bufio"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// maxExcerptLines bounds the diagnostic excerpt captured on mismatch.
const maxExcerptLines = 5

// Outcome is the pass/fail judgment for one candidate against the
// reference. Excerpt holds the first differing lines when a cheap diff was
// possible; digest comparisons only report Reason.
type Outcome struct {
	Equivalent bool
	Reason     string
	Excerpt    []string
}

// Verifier compares captured output files.
type Verifier struct {
	thresholdLines int
	log            *zap.Logger
}

// New creates a Verifier switching to digest comparison above
// thresholdLines.
func New(thresholdLines int, log *zap.Logger) *Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Verifier{thresholdLines: thresholdLines, log: log}
}

// OrderInsensitive reports whether the flag tokens request a
// non-deterministic output order.
func OrderInsensitive(flags []string) bool {
	for _, f := range flags {
		if f == "-R" || f == "--random-sort" {
			return true
		}
	}
	return false
}

// Verify compares the reference output at refPath against the candidate
// output at candPath. lineCount is the corpus size driving the strategy
// choice. A read failure is a harness defect and surfaces as an error, not
// as a candidate failure.
func (v *Verifier) Verify(refPath, candPath string, flags []string, lineCount int) (Outcome, error) {
	refInfo, err := os.Stat(refPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("stat reference output: %w", err)
	}
	candInfo, err := os.Stat(candPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("stat candidate output: %w", err)
	}

	// Zero output where the reference produced output is never a vacuous
	// pass, under either protocol.
	if candInfo.Size() == 0 && refInfo.Size() > 0 {
		return Outcome{Reason: "candidate produced no output"}, nil
	}

	multiset := OrderInsensitive(flags)
	digest := lineCount > v.thresholdLines
	v.log.Debug("comparing outputs",
		zap.Bool("multiset", multiset),
		zap.Bool("digest", digest),
		zap.Int("lines", lineCount))

	switch {
	case digest && multiset:
		return v.compareMultisetDigest(refPath, candPath)
	case digest:
		return v.compareDigest(refPath, candPath)
	case multiset:
		return v.compareMultiset(refPath, candPath)
	default:
		return v.compareExact(refPath, candPath)
	}
}

// compareExact streams both files and reports the first differing lines.
func (v *Verifier) compareExact(refPath, candPath string) (Outcome, error) {
	ref, err := os.Open(refPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("opening reference output: %w", err)
	}
	defer func() { _ = ref.Close() }()

	cand, err := os.Open(candPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("opening candidate output: %w", err)
	}
	defer func() { _ = cand.Close() }()

	refR := bufio.NewReaderSize(ref, 1<<20)
	candR := bufio.NewReaderSize(cand, 1<<20)

	var excerpt []string
	lineNo := 0
	for {
		lineNo++
		refLine, refErr := readLine(refR)
		candLine, candErr := readLine(candR)

		if refErr == io.EOF && candErr == io.EOF {
			break
		}
		if refErr != nil && refErr != io.EOF {
			return Outcome{}, fmt.Errorf("reading reference output: %w", refErr)
		}
		if candErr != nil && candErr != io.EOF {
			return Outcome{}, fmt.Errorf("reading candidate output: %w", candErr)
		}

		if refErr == io.EOF {
			return Outcome{Reason: fmt.Sprintf("candidate has extra output from line %d", lineNo)}, nil
		}
		if candErr == io.EOF {
			return Outcome{Reason: fmt.Sprintf("candidate output ends early at line %d", lineNo)}, nil
		}

		if refLine != candLine {
			excerpt = append(excerpt, fmt.Sprintf("line %d: ref=%q cand=%q", lineNo, refLine, candLine))
			if len(excerpt) >= maxExcerptLines {
				break
			}
		}
	}

	if len(excerpt) > 0 {
		return Outcome{Reason: "outputs differ", Excerpt: excerpt}, nil
	}
	return Outcome{Equivalent: true}, nil
}

// compareMultiset sorts both outputs by canonical byte order and compares
// the results, so any permutation of the same line multiset passes.
func (v *Verifier) compareMultiset(refPath, candPath string) (Outcome, error) {
	refLines, err := readAllLines(refPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("reading reference output: %w", err)
	}
	candLines, err := readAllLines(candPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("reading candidate output: %w", err)
	}

	if len(refLines) != len(candLines) {
		return Outcome{
			Reason: fmt.Sprintf("line counts differ: ref=%d cand=%d", len(refLines), len(candLines)),
		}, nil
	}

	sort.Strings(refLines)
	sort.Strings(candLines)

	var excerpt []string
	for i := range refLines {
		if refLines[i] != candLines[i] {
			excerpt = append(excerpt, fmt.Sprintf("sorted line %d: ref=%q cand=%q", i+1, refLines[i], candLines[i]))
			if len(excerpt) >= maxExcerptLines {
				break
			}
		}
	}
	if len(excerpt) > 0 {
		return Outcome{Reason: "line multisets differ", Excerpt: excerpt}, nil
	}
	return Outcome{Equivalent: true}, nil
}

// compareDigest compares streamed SHA-256 digests of both files.
func (v *Verifier) compareDigest(refPath, candPath string) (Outcome, error) {
	refSum, err := fileDigest(refPath)
	if err != nil {
		return Outcome{}, err
	}
	candSum, err := fileDigest(candPath)
	if err != nil {
		return Outcome{}, err
	}
	if refSum != candSum {
		return Outcome{Reason: "output digests differ"}, nil
	}
	return Outcome{Equivalent: true}, nil
}

// compareMultisetDigest folds per-line SHA-256 digests with a commutative
// accumulator, giving an order-insensitive digest in constant memory.
func (v *Verifier) compareMultisetDigest(refPath, candPath string) (Outcome, error) {
	refSum, err := multisetDigest(refPath)
	if err != nil {
		return Outcome{}, err
	}
	candSum, err := multisetDigest(candPath)
	if err != nil {
		return Outcome{}, err
	}
	if refSum != candSum {
		return Outcome{Reason: "output line-multiset digests differ"}, nil
	}
	return Outcome{Equivalent: true}, nil
}

// readLine reads one newline-terminated record without the terminator. The
// final record may lack a trailing newline.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == io.EOF && line != "" {
		return strings.TrimSuffix(line, "\n"), nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}

func readAllLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var lines []string
	r := bufio.NewReaderSize(f, 1<<20)
	for {
		line, err := readLine(r)
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
}

func fileDigest(path string) (digestValue, error) {
	f, err := os.Open(path)
	if err != nil {
		return digestValue{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return digestValue{}, fmt.Errorf("digesting %s: %w", path, err)
	}
	var d digestValue
	copy(d[:], h.Sum(nil))
	return d, nil
}

type digestValue [sha256.Size]byte

// multisetDigest adds each line's SHA-256 digest into a byte-wise modular
// accumulator. Addition commutes, so the result is invariant under line
// permutation while single-line corruption still changes it.
func multisetDigest(path string) (digestValue, error) {
	f, err := os.Open(path)
	if err != nil {
		return digestValue{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var acc digestValue
	r := bufio.NewReaderSize(f, 1<<20)
	for {
		line, err := readLine(r)
		if errors.Is(err, io.EOF) {
			return acc, nil
		}
		if err != nil {
			return digestValue{}, fmt.Errorf("digesting %s: %w", path, err)
		}
		sum := sha256.Sum256([]byte(line))
		for i := range acc {
			acc[i] += sum[i]
		}
	}
}
