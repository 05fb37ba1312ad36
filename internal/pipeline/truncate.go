package pipeline

import "unicode/utf8"

// Truncate applies length governance to an extracted field pair.
//
// Each field is first hard-truncated to its own maximum. If the summed
// length still exceeds the combined budget, each field is cut to
// min(floor(length × budget/sum), ownMax), preserving its relative share of
// the budget rather than truncating one field to zero. Lengths are runes;
// no ellipsis is appended. Applying Truncate to an already-compliant pair
// is a no-op.
func Truncate(interpreted, official string, limits Limits) (string, string) {
	interpreted = truncateRunes(interpreted, limits.InterpretedMax)
	official = truncateRunes(official, limits.OfficialMax)

	iLen := utf8.RuneCountInString(interpreted)
	oLen := utf8.RuneCountInString(official)
	sum := iLen + oLen
	if sum <= limits.CombinedMax {
		return interpreted, official
	}

	// Integer arithmetic keeps floor(length × budget/sum) exact.
	iTarget := minInt(iLen*limits.CombinedMax/sum, limits.InterpretedMax)
	oTarget := minInt(oLen*limits.CombinedMax/sum, limits.OfficialMax)

	return truncateRunes(interpreted, iTarget), truncateRunes(official, oTarget)
}

// truncateRunes hard-truncates s to at most n runes.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
