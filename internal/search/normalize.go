package search

import (
	"regexp"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	curlyQuoteRegex   = regexp.MustCompile("[’´`]")
	gaugeQuoteRegex   = regexp.MustCompile(`(\d)\s*'\s*(\d)`)
	apostropheRegex   = regexp.MustCompile(`'+`)
	multiSpaceRegex   = regexp.MustCompile(`\s+`)
	wordSplitRegex    = regexp.MustCompile(`[\s,]+`)
	decimalCommaRegex = regexp.MustCompile(`(\d),(\d)`)
)

// stopwords are Portuguese prepositions and articles stripped from queries
// before matching.
var stopwords = map[string]bool{
	"DE": true, "DA": true, "DO": true, "PARA": true, "COM": true,
	"EM": true, "P/": true, "O": true, "A": true, "OS": true, "AS": true,
}

// NormalizeQuery upper-cases and cleans a raw search phrase. Curly quotes
// become apostrophes, a quote between digits becomes a decimal comma
// (wire gauges are often written 2'5), remaining quotes are dropped and
// whitespace is collapsed.
func NormalizeQuery(input string) string {
	normalized := strings.ToUpper(strings.TrimSpace(input))
	normalized = curlyQuoteRegex.ReplaceAllString(normalized, "'")
	normalized = gaugeQuoteRegex.ReplaceAllString(normalized, "$1,$2")
	normalized = strings.ReplaceAll(normalized, `"`, "")
	normalized = apostropheRegex.ReplaceAllString(normalized, " ")
	normalized = multiSpaceRegex.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// Tokenize normalizes a phrase and splits it into tokens on whitespace and
// comma runs, discarding empty tokens and stopwords. Decimal commas
// ("2,5") stay inside their token so gauge variants keep working. An input
// that reduces to nothing yields a nil slice; callers must treat that as
// "no match possible", never as match-everything.
func Tokenize(input string) []string {
	normalized := NormalizeQuery(input)
	if normalized == "" {
		return nil
	}

	// Shield decimal commas, split the rest as separators.
	shielded := decimalCommaRegex.ReplaceAllString(normalized, "$1\x00$2")
	shielded = strings.ReplaceAll(shielded, ",", " ")
	shielded = strings.ReplaceAll(shielded, "\x00", ",")

	parts := multiSpaceRegex.Split(shielded, -1)
	var tokens []string
	for _, part := range parts {
		if part == "" || stopwords[part] {
			continue
		}
		tokens = append(tokens, part)
	}
	return tokens
}

// SplitWords breaks a product name into words for the short-variant
// prefix check.
func SplitWords(name string) []string {
	return wordSplitRegex.Split(name, -1)
}
