// Package fuzz scores string similarity on a 0..100 scale.
//
// Matching blocks come from a diff-match-patch diff: every equality run of
// the diff is one block. The scores follow the usual sequence-matcher
// definitions: ratio is 2*M/T over matched runes M and total runes T, and
// the partial ratio slides the shorter string over the longer one, anchored
// at each matching block, and keeps the best window.
package fuzz

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/replaystats/pkg/levenshtein"
)

// Scorer names accepted by Lookup.
const (
	ScorerPartial     = "partial"
	ScorerRatio       = "ratio"
	ScorerLevenshtein = "levenshtein"
)

const (
	percent = 100

	// perfectThreshold short-circuits the partial scan on a near-exact window.
	perfectThreshold = 0.995
)

// ErrUnknownScorer is returned by Lookup for an unregistered scorer name.
var ErrUnknownScorer = errors.New("unknown scorer")

// ScorerFunc adapts a plain function to a Score method.
type ScorerFunc func(a, b string) int

// Score calls f(a, b).
func (f ScorerFunc) Score(a, b string) int {
	return f(a, b)
}

var scorers = map[string]ScorerFunc{
	ScorerPartial:     PartialRatio,
	ScorerRatio:       Ratio,
	ScorerLevenshtein: LevenshteinRatio,
}

// Lookup returns the scorer registered under name.
func Lookup(name string) (ScorerFunc, error) {
	scorer, ok := scorers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScorer, name)
	}

	return scorer, nil
}

// Names returns the registered scorer names, sorted.
func Names() []string {
	names := make([]string, 0, len(scorers))
	for name := range scorers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Ratio returns the whole-string similarity of a and b.
func Ratio(a, b string) int {
	if a == b {
		return percent
	}

	if a == "" || b == "" {
		return 0
	}

	return toPercent(sequenceRatio(a, b))
}

// PartialRatio returns the similarity of the shorter string against the
// best-matching window of the longer one, so "Serral" scores 100 against
// "[BASE]Serral".
func PartialRatio(a, b string) int {
	if a == b {
		return percent
	}

	if a == "" || b == "" {
		return 0
	}

	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	short := string(shorter)
	best := 0.0

	for _, blk := range matchingBlocks(short, string(longer)) {
		start := max(blk.b-blk.a, 0)
		end := min(start+len(shorter), len(longer))

		r := sequenceRatio(short, string(longer[start:end]))
		if r > perfectThreshold {
			return percent
		}

		best = max(best, r)
	}

	return toPercent(best)
}

// LevenshteinRatio returns the normalized edit-distance similarity of a and b.
func LevenshteinRatio(a, b string) int {
	var lev levenshtein.Context

	return lev.Ratio(a, b)
}

// block is a run of size equal runes starting at rune offsets a and b.
type block struct {
	a, b, size int
}

// matchingBlocks lists the equal runs between a and b, terminated by the
// zero-size sentinel block at (len(a), len(b)).
func matchingBlocks(a, b string) []block {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)

	var (
		blocks []block
		posA   int
		posB   int
	)

	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)

		switch d.Type {
		case diffmatchpatch.DiffEqual:
			blocks = append(blocks, block{a: posA, b: posB, size: n})
			posA += n
			posB += n
		case diffmatchpatch.DiffDelete:
			posA += n
		case diffmatchpatch.DiffInsert:
			posB += n
		}
	}

	return append(blocks, block{a: posA, b: posB})
}

// sequenceRatio is 2*M/T where M counts matched runes and T is the rune total.
func sequenceRatio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}

	matched := 0
	for _, blk := range matchingBlocks(a, b) {
		matched += blk.size
	}

	return 2 * float64(matched) / float64(total)
}

func toPercent(r float64) int {
	return int(math.Round(percent * r))
}
