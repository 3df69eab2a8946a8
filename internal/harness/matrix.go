package harness

import (
	"strings"

	"github.com/bartekus/sortbench/internal/dataset"
)

// Entry is one row of the test matrix: a named flag combination bound to
// the corpus category it is most interesting against.
type Entry struct {
	Name     string
	Category dataset.Category
	Flags    string
}

// Case is an Entry expanded against a size tier. Identity is
// (Name, Flags, SizeLabel); a Case is immutable once constructed.
type Case struct {
	Entry
	SizeLabel string
	Lines     int
}

// FlagTokens splits the flag string into argv tokens.
func (c Case) FlagTokens() []string {
	return strings.Fields(c.Flags)
}

// CheckMode reports whether the case exercises the check-if-sorted mode,
// whose result is the exit status rather than stdout.
func (c Case) CheckMode() bool {
	for _, f := range c.FlagTokens() {
		if f == "-c" || f == "--check" {
			return true
		}
	}
	return false
}

// SizeTier names a dataset scale.
type SizeTier struct {
	Label string
	Lines int
}

// Tiers returns the size tiers to run: 100k and 1m always, 10m and 30m on
// request.
func Tiers(large, huge bool) []SizeTier {
	tiers := []SizeTier{
		{Label: "100k", Lines: 100_000},
		{Label: "1m", Lines: 1_000_000},
	}
	if large {
		tiers = append(tiers, SizeTier{Label: "10m", Lines: 10_000_000})
	}
	if huge {
		tiers = append(tiers, SizeTier{Label: "30m", Lines: 30_000_000})
	}
	return tiers
}

// DefaultMatrix covers every flag the invocation contract names, each
// against the corpus that stresses it most.
func DefaultMatrix() []Entry {
	return []Entry{
		{Name: "plain_sort", Category: dataset.CategoryString, Flags: ""},
		{Name: "numeric_sort", Category: dataset.CategoryNumeric, Flags: "-n"},
		{Name: "reverse_sort", Category: dataset.CategoryString, Flags: "-r"},
		{Name: "numeric_reverse", Category: dataset.CategoryNumeric, Flags: "-n -r"},
		{Name: "unique_sort", Category: dataset.CategoryDuplicate, Flags: "-u"},
		{Name: "case_fold", Category: dataset.CategoryMixed, Flags: "-f"},
		{Name: "general_numeric", Category: dataset.CategoryFloat, Flags: "-g"},
		{Name: "stable_numeric", Category: dataset.CategoryDuplicate, Flags: "-s -n"},
		{Name: "random_shuffle", Category: dataset.CategoryString, Flags: "-R"},
		{Name: "check_sorted", Category: dataset.CategoryNumeric, Flags: "-c"},
	}
}

// Expand binds each matrix entry to a size tier.
func Expand(entries []Entry, tier SizeTier) []Case {
	cases := make([]Case, 0, len(entries))
	for _, e := range entries {
		cases = append(cases, Case{Entry: e, SizeLabel: tier.Label, Lines: tier.Lines})
	}
	return cases
}
