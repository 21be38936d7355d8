package resolve

import (
	"strings"
	"unicode"
)

// stripMarks removes punctuation and symbol runes so that quoting style
// (「〜ないでください」 vs ないでください) does not affect matching.
func stripMarks(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, s)
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

// OverlapScore scores the character overlap of two strings after cleaning:
// 2*|intersection| - |union| over the deduplicated rune sets. Higher is
// closer; unrelated strings go negative.
func OverlapScore(a, b string) int {
	sa := runeSet(stripMarks(a))
	sb := runeSet(stripMarks(b))
	common := 0
	for r := range sa {
		if _, ok := sb[r]; ok {
			common++
		}
	}
	union := len(sa) + len(sb) - common
	return 2*common - union
}
