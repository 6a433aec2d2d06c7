package matcher

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Similarity is the default scorer: the better of TokenSortRatio and
// TokenSetRatio. Case, punctuation and word order do not affect it.
func Similarity(a, b string) int {
	sorted := TokenSortRatio(a, b)
	set := TokenSetRatio(a, b)
	if set > sorted {
		return set
	}
	return sorted
}

// Ratio compares two strings character by character. With d the edit
// distance where a substitution costs two, the score is
// (len(a)+len(b)-d) / (len(a)+len(b)) scaled to 0..100.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 0
	}
	d := levenshtein.DistanceForStrings(ra, rb, levenshtein.DefaultOptions)
	return int(math.Round(float64(total-d) / float64(total) * MaxScore))
}

// TokenSortRatio compares the sorted token sequences of a and b.
func TokenSortRatio(a, b string) int {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	sort.Strings(ta)
	sort.Strings(tb)
	return Ratio(strings.Join(ta, " "), strings.Join(tb, " "))
}

// TokenSetRatio compares the shared tokens of a and b against each side's
// full token set, so a name that is a subset of the other scores high.
func TokenSetRatio(a, b string) int {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var common, onlyA, onlyB []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			common = append(common, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(common, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := Ratio(withA, withB)
	if base != "" {
		if r := Ratio(base, withA); r > best {
			best = r
		}
		if r := Ratio(base, withB); r > best {
			best = r
		}
	}
	return best
}

// tokens splits s into lower-cased runs of letters and digits.
func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokens(s) {
		set[tok] = struct{}{}
	}
	return set
}
