package search

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// S8 <-> S08 series codes
	seriesCodeRegex = regexp.MustCompile(`^S(0)?(\d+)$`)
	// 2.5MM / 2,5MM gauge suffixes
	gaugeMMRegex = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)MM$`)
)

// Expand returns the variant set for one query token: the token itself,
// its declared abbreviations, every canonical term declaring it, canonical
// terms the token is a prefix of, and pattern-derived variants (series
// codes, decimal separators, gauge suffixes). Deduplicated, sorted.
func (t *Table) Expand(token string) []string {
	normalized := upper(token)
	variants := map[string]struct{}{normalized: {}}

	add := func(vs ...string) {
		for _, v := range vs {
			variants[v] = struct{}{}
		}
	}

	add(t.forward[normalized]...)
	add(t.reverse[normalized]...)

	// Partial canonical-key match: "LUMIN" should reach LUMINARIA.
	if len(normalized) >= 3 {
		for _, key := range t.keys {
			if strings.HasPrefix(key, normalized) {
				add(key)
				add(t.forward[key]...)
			}
		}
	}

	// S8 <-> S08. Two-digit codes (S10) stay as they are.
	if m := seriesCodeRegex.FindStringSubmatch(normalized); m != nil {
		digits := m[2]
		if len(digits) == 1 {
			add("S"+digits, "S0"+digits)
		} else {
			add("S" + digits)
		}
	}

	// 2.5 <-> 2,5
	if strings.ContainsAny(normalized, ".,") {
		add(strings.ReplaceAll(normalized, ",", "."))
		add(strings.ReplaceAll(normalized, ".", ","))
	}

	// 2.5MM -> 2.5 (plus its separator variants) so "cabo 2.5mm" still finds
	// products listing the bare gauge. The reverse (2.5 -> 2.5MM) is not
	// generated: a bare number is too ambiguous.
	if m := gaugeMMRegex.FindStringSubmatch(normalized); m != nil {
		number := m[1]
		add(number)
		add(strings.ReplaceAll(number, ",", "."))
		add(strings.ReplaceAll(number, ".", ","))
	}

	out := make([]string, 0, len(variants))
	for v := range variants {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func upperAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = upper(s)
	}
	return out
}
