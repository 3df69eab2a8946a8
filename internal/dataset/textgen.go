package dataset

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strings"
)

// Character classes selectable for free-text generation. The selector is a
// string of single-letter class codes, e.g. "ad" for letters plus digits.
const (
	ClassASCIILetters = 'a'
	ClassDigits       = 'd'
	ClassPunctuation  = 'p'
	ClassCyrillic     = 'c'
)

const (
	asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits       = "0123456789"
	punctuation  = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

var cyrillicLetters = func() []rune {
	var rs []rune
	for r := 'а'; r <= 'я'; r++ {
		rs = append(rs, r)
	}
	for r := 'А'; r <= 'Я'; r++ {
		rs = append(rs, r)
	}
	return rs
}()

// TextGenConfig parameterizes free-text generation.
type TextGenConfig struct {
	// Classes selects the alphabet, one letter per class code.
	Classes string
	// MinLen and MaxLen bound the per-line length (closed interval, runes).
	MinLen int
	MaxLen int
	// TotalChars is the overall character budget, newlines excluded.
	// Generation stops once a full line no longer fits.
	TotalChars int
	// Seed makes the output reproducible.
	Seed int64
}

func (c TextGenConfig) alphabet() ([]rune, error) {
	var ab []rune
	for _, code := range c.Classes {
		switch code {
		case ClassASCIILetters:
			ab = append(ab, []rune(asciiLetters)...)
		case ClassDigits:
			ab = append(ab, []rune(digits)...)
		case ClassPunctuation:
			ab = append(ab, []rune(punctuation)...)
		case ClassCyrillic:
			ab = append(ab, cyrillicLetters...)
		default:
			return nil, fmt.Errorf("unknown character class %q", string(code))
		}
	}
	if len(ab) == 0 {
		return nil, fmt.Errorf("empty alphabet: selector %q picks no character class", c.Classes)
	}
	return ab, nil
}

func (c TextGenConfig) validate() error {
	if c.MinLen < 1 {
		return fmt.Errorf("minimum line length must be at least 1, got %d", c.MinLen)
	}
	if c.MinLen > c.MaxLen {
		return fmt.Errorf("inverted length interval: min %d > max %d", c.MinLen, c.MaxLen)
	}
	if c.MinLen > c.TotalChars {
		return fmt.Errorf("minimum length %d exceeds total character budget %d", c.MinLen, c.TotalChars)
	}
	return nil
}

// TextGen samples lines uniformly from a configured alphabet and length
// interval until a total character budget is exhausted.
type TextGen struct {
	cfg      TextGenConfig
	alphabet []rune
}

// NewTextGen validates cfg and returns a generator. All validation happens
// here so callers fail before producing any output.
func NewTextGen(cfg TextGenConfig) (*TextGen, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	ab, err := cfg.alphabet()
	if err != nil {
		return nil, err
	}
	return &TextGen{cfg: cfg, alphabet: ab}, nil
}

// WriteTo streams generated lines to out and a coarse progress indicator to
// progress (one dot per ~5% of budget; pass io.Discard to silence it).
// It returns the number of lines written.
func (t *TextGen) WriteTo(out, progress io.Writer) (int, error) {
	rng := rand.New(rand.NewSource(t.cfg.Seed))
	w := bufio.NewWriterSize(out, 1<<20)

	var sb strings.Builder
	lines := 0
	remaining := t.cfg.TotalChars
	step := t.cfg.TotalChars / 20
	nextMark := t.cfg.TotalChars - step

	for remaining >= t.cfg.MinLen {
		length := t.cfg.MinLen + rng.Intn(t.cfg.MaxLen-t.cfg.MinLen+1)
		if length > remaining {
			length = remaining
		}

		sb.Reset()
		sb.Grow(length)
		for i := 0; i < length; i++ {
			sb.WriteRune(t.alphabet[rng.Intn(len(t.alphabet))])
		}
		if _, err := w.WriteString(sb.String()); err != nil {
			return lines, fmt.Errorf("writing line: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return lines, fmt.Errorf("writing line: %w", err)
		}

		lines++
		remaining -= length
		for step > 0 && remaining <= nextMark {
			fmt.Fprint(progress, ".")
			nextMark -= step
		}
	}

	if err := w.Flush(); err != nil {
		return lines, fmt.Errorf("flushing output: %w", err)
	}
	if step > 0 {
		fmt.Fprintln(progress)
	}
	return lines, nil
}
