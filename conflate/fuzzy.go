package conflate

import (
	"unicode/utf8"

	"github.com/xrash/smetrics"
)

// ratio returns the classic fuzzy-match similarity of a and b on a
// 0-100 scale, the way Python's python-Levenshtein/thefuzz ratio()
// does it: a Levenshtein edit distance where a substitution costs
// twice as much as an insertion or deletion, expressed as a percentage
// of the combined length of both strings. Weighting substitutions at
// 2 rather than 1 is what makes this agree with thefuzz's ratio() on
// two strings that differ by real character substitutions, not just
// insertions/deletions; a plain unit-cost edit distance systematically
// under-scores those pairs relative to the reference tool this package
// is meant to agree with.
func ratio(a, b string) int {
	if a == b {
		return 100
	}

	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}

	dist := smetrics.WagnerFischer(a, b, 1, 1, 2)
	score := 100 * (total - dist) / total
	if score < 0 {
		score = 0
	}
	return score
}
