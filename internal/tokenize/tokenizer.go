// Package tokenize turns raw page content into ordered logical lines of
// whitespace-separated tokens. Two input modes are supported: plain text,
// and positioned words grouped into lines by vertical coordinate.
package tokenize

import (
	"iter"
	"sort"
	"strings"

	"github.com/nkmathur/partsrecon/internal/entity"
)

// DefaultYTolerance is the vertical band within which two words are
// considered to sit on the same line.
const DefaultYTolerance = 3.0

// Line is one logical row of a page.
type Line struct {
	Tokens []string
}

// Text joins the tokens with single spaces.
func (l Line) Text() string {
	return strings.Join(l.Tokens, " ")
}

// FromText yields one Line per non-empty input line, with runs of
// whitespace collapsed. The sequence is lazy and can be ranged over more
// than once.
func FromText(text string) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		for raw := range strings.Lines(text) {
			tokens := strings.Fields(raw)
			if len(tokens) == 0 {
				continue
			}
			if !yield(Line{Tokens: tokens}) {
				return
			}
		}
	}
}

// FromLines normalizes pre-split lines the same way FromText does.
func FromLines(lines []string) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		for _, raw := range lines {
			tokens := strings.Fields(raw)
			if len(tokens) == 0 {
				continue
			}
			if !yield(Line{Tokens: tokens}) {
				return
			}
		}
	}
}

// ClusterWords groups positioned words into lines. Words whose vertical
// positions differ by no more than tolerance belong to the same line, and
// membership is transitive: a word within tolerance of the previous word
// extends the line even when it is outside the tolerance of the first word,
// so a tall column of tightly spaced rows can chain-merge. Within a line
// words are ordered by ascending X. The input slice is not modified.
//
// Y is expected to increase top to bottom; lines come out in reading order.
func ClusterWords(words []entity.Word, tolerance float64) []Line {
	if tolerance <= 0 {
		tolerance = DefaultYTolerance
	}
	sorted := make([]entity.Word, 0, len(words))
	for _, w := range words {
		if strings.TrimSpace(w.Text) == "" {
			continue
		}
		sorted = append(sorted, w)
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y0 != sorted[j].Y0 {
			return sorted[i].Y0 < sorted[j].Y0
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var groups [][]entity.Word
	current := []entity.Word{sorted[0]}
	prevY := sorted[0].Y0
	for _, w := range sorted[1:] {
		if w.Y0-prevY <= tolerance {
			current = append(current, w)
		} else {
			groups = append(groups, current)
			current = []entity.Word{w}
		}
		prevY = w.Y0
	}
	groups = append(groups, current)

	lines := make([]Line, 0, len(groups))
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool { return g[i].X0 < g[j].X0 })
		tokens := make([]string, 0, len(g))
		for _, w := range g {
			tokens = append(tokens, strings.TrimSpace(w.Text))
		}
		lines = append(lines, Line{Tokens: tokens})
	}
	return lines
}

// FromWords is ClusterWords exposed as a restartable sequence.
func FromWords(words []entity.Word, tolerance float64) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		for _, l := range ClusterWords(words, tolerance) {
			if !yield(l) {
				return
			}
		}
	}
}
