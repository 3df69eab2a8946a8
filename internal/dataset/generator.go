// Package dataset materializes reproducible test corpora for the harness.
//
// The formula categories are pure functions of the line index, so two runs
// with the same count produce byte-identical files without any persisted
// seed state. Files already present on disk are reused as-is; presence is
// the only check, which is why generation goes through a temp file and a
// rename — a half-written corpus must never be observable at the final path.
package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
)

// Category names one corpus flavor.
type Category string

const (
	CategoryNumeric   Category = "numeric"
	CategoryString    Category = "string"
	CategoryFloat     Category = "float"
	CategoryMixed     Category = "mixed"
	CategoryDuplicate Category = "duplicate"
)

// Categories returns all formula categories in their canonical order.
func Categories() []Category {
	return []Category{CategoryNumeric, CategoryString, CategoryFloat, CategoryMixed, CategoryDuplicate}
}

// Valid reports whether c names a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryNumeric, CategoryString, CategoryFloat, CategoryMixed, CategoryDuplicate:
		return true
	}
	return false
}

// Line returns the content of line i (1-based) for the given category.
func Line(c Category, i int) string {
	switch c {
	case CategoryNumeric:
		return strconv.Itoa((i * 7919) % 32749)
	case CategoryString:
		return "str_" + strconv.Itoa((i*13)%9973) + "_text"
	case CategoryFloat:
		return strconv.Itoa((i*17)%10007) + "." + strconv.Itoa((i*23)%1000)
	case CategoryMixed:
		if i%2 == 1 {
			return strconv.Itoa((i * 7919) % 32749)
		}
		return "str_" + strconv.Itoa((i*13)%9973) + "_text"
	case CategoryDuplicate:
		return strconv.Itoa(i % 100)
	}
	return ""
}

// Generator writes corpora under a single data directory and reuses files
// that already exist there.
type Generator struct {
	dataDir string
	log     *zap.Logger
}

// NewGenerator creates a Generator rooted at dataDir.
func NewGenerator(dataDir string, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{dataDir: dataDir, log: log}
}

// Path returns the deterministic location of a corpus, whether or not it
// exists yet.
func (g *Generator) Path(c Category, sizeSuffix string) string {
	return filepath.Join(g.dataDir, fmt.Sprintf("%s_%s.txt", c, sizeSuffix))
}

// Generate materializes the corpus for (category, sizeSuffix) with count
// lines and returns its path. If the file already exists the call is a
// cheap no-op returning the existing path.
func (g *Generator) Generate(c Category, count int, sizeSuffix string) (string, error) {
	if !c.Valid() {
		return "", fmt.Errorf("unknown corpus category %q", c)
	}
	if count <= 0 {
		return "", fmt.Errorf("corpus line count must be positive, got %d", count)
	}

	path := g.Path(c, sizeSuffix)
	if _, err := os.Stat(path); err == nil {
		g.log.Debug("reusing corpus", zap.String("path", path))
		return path, nil
	}

	if err := os.MkdirAll(g.dataDir, 0o755); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}

	tmp, err := os.CreateTemp(g.dataDir, string(c)+"_*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating corpus temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := bufio.NewWriterSize(tmp, 1<<20)
	for i := 1; i <= count; i++ {
		if _, err := w.WriteString(Line(c, i)); err != nil {
			_ = tmp.Close()
			return "", fmt.Errorf("writing corpus: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			_ = tmp.Close()
			return "", fmt.Errorf("writing corpus: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("flushing corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing corpus: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("publishing corpus: %w", err)
	}

	g.log.Info("generated corpus",
		zap.String("category", string(c)),
		zap.Int("lines", count),
		zap.String("path", path))
	return path, nil
}
