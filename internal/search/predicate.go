package search

import "strings"

// shortVariantLimit separates abbreviation-length variants, which are
// restricted to word starts, from longer variants matched as substrings.
const shortVariantLimit = 3

// VariantMatches reports whether a single variant satisfies a product name.
// Variants of up to three characters must start a word of the name ("FIO"
// must not fire inside "DESAFIO"); longer variants are assumed specific
// enough for plain substring containment. The word-start rule still admits
// false positives like "COR" on "CORTINA"; that tradeoff is kept as is.
func VariantMatches(productName, variant string) bool {
	name := strings.ToUpper(productName)
	v := upper(variant)
	if v == "" {
		return false
	}

	if len(v) <= shortVariantLimit {
		for _, word := range SplitWords(name) {
			if strings.HasPrefix(word, v) {
				return true
			}
		}
		return false
	}

	return strings.Contains(name, v)
}

// MatchesProduct combines per-token variant sets: a product matches iff for
// every set (AND across original query tokens) at least one variant matches
// (OR within the set). An empty condition list never matches.
func MatchesProduct(productName string, tokenConditions [][]string) bool {
	if len(tokenConditions) == 0 {
		return false
	}
	for _, variants := range tokenConditions {
		satisfied := false
		for _, v := range variants {
			if VariantMatches(productName, v) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}
