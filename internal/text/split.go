// Package text finds word-safe break points in text runs.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// FitFunc reports whether prefix, placed in place of the whole run, still
// fits on the page. It must be monotonic: if a prefix does not fit, no
// longer prefix fits either.
type FitFunc func(prefix string) bool

// Result describes how a run was split.
type Result struct {
	// Placed is the prefix that stays on the current page.
	Placed string
	// Remainder starts with the whitespace at the break, if any.
	Remainder string
	// Cancelled is set when no non-empty word-safe prefix fits. The caller
	// must move the owning element instead.
	Cancelled bool
	// Queries counts calls to the fit function.
	Queries int
}

// Split finds the longest prefix of run that fits and ends before a
// whitespace boundary. Placed+Remainder always equals run.
//
// A run that fits whole costs exactly one query. Otherwise the cut is
// binary searched over character offsets and then backed off to the nearest
// preceding whitespace. A whitespace-only run that does not fit comes back
// with an empty Placed and the whole run as Remainder.
func Split(run string, fits FitFunc) Result {
	var res Result
	query := func(s string) bool {
		res.Queries++
		return fits(s)
	}

	if query(run) {
		res.Placed = run
		return res
	}

	if strings.TrimSpace(run) == "" {
		res.Remainder = run
		return res
	}

	offsets := charOffsets(run)
	n := len(offsets) - 1

	// lo is the longest character count known to fit; the empty prefix is
	// assumed to fit and the full run is known not to.
	lo, hi := 0, n-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if query(run[:offsets[mid]]) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	cut := lo
	for cut > 0 && !isSpaceAt(run, offsets[cut]) {
		cut--
	}

	placed := run[:offsets[cut]]
	if strings.TrimSpace(placed) == "" {
		res.Cancelled = true
		res.Remainder = run
		return res
	}
	res.Placed = placed
	res.Remainder = run[offsets[cut]:]
	return res
}

// FitRunes returns the longest prefix of run that fits, ignoring word
// boundaries. It is the last resort for a single word wider than an empty
// page. Combining marks stay with their base character.
func FitRunes(run string, fits FitFunc) string {
	offsets := charOffsets(run)
	lo, hi := 0, len(offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if fits(run[:offsets[mid]]) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return run[:offsets[lo]]
}

// charOffsets returns the byte offset of every normalization segment (a
// starter and its combining marks) followed by len(s).
func charOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := 0; i < len(s); {
		offsets = append(offsets, i)
		n := norm.NFC.NextBoundaryInString(s[i:], true)
		if n <= 0 {
			_, n = utf8.DecodeRuneInString(s[i:])
		}
		i += n
	}
	return append(offsets, len(s))
}

func isSpaceAt(s string, i int) bool {
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsSpace(r)
}
