// Package spell finds the spelling nearest to a misspelled name, for
// "did you mean ...?" hints in diagnostics.
package spell // import "github.com/pyscope/pyscope/internal/spell"

import (
	"strings"
	"unicode"
)

// Nearest returns the element of candidates nearest to x using the
// Levenshtein metric, or "" if none is close enough.
// Case and underscores are ignored, and at most half of the
// characters of x may differ. Candidates equal to x are skipped.
func Nearest(x string, candidates []string) string {
	fx := fold(x)

	var best string
	bestD := (len(fx) + 1) / 2 // allow up to 50% typos
	for _, c := range candidates {
		if c == x {
			continue
		}
		d := distance(fx, fold(c), bestD)
		if d < bestD || (d == bestD && best != "" && c < best) {
			bestD = d
			best = c
		}
	}
	return best
}

func fold(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// distance returns the Levenshtein edit distance between the byte
// strings x and y. Once every entry of a row exceeds max, it returns
// early with a value greater than max.
func distance(x, y string, max int) int {
	if len(x) > len(y) {
		x, y = y, x
	}
	// Drop the common prefix; it never contributes.
	i := 0
	for i < len(x) && x[i] == y[i] {
		i++
	}
	x, y = x[i:], y[i:]
	if x == "" {
		return len(y)
	}

	row := make([]int, len(y)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(x); i++ {
		row[0] = i
		best, prev := i, i-1
		for j := 1; j <= len(y); j++ {
			sub := prev
			if x[i-1] != y[j-1] {
				sub++
			}
			k := min(sub, min(row[j-1], row[j])+1)
			prev, row[j] = row[j], k
			best = min(best, k)
		}
		if best > max {
			return best
		}
	}
	return row[len(y)]
}

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}
