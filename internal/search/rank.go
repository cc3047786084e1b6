package search

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/eletrohub/backend/internal/domain"
)

// DefaultResultLimit caps ranked results when the caller passes no limit.
const DefaultResultLimit = 3

// Ranker orders matched candidates: exact name equality with the full
// normalized query first, then query-prefix names, then locale-aware
// lexicographic order. The alphabetic fallback is a known weakness, not a
// relevance signal.
type Ranker struct {
	collator *collate.Collator
}

// NewRanker builds a ranker collating in Brazilian Portuguese.
func NewRanker() *Ranker {
	return &Ranker{collator: collate.New(language.BrazilianPortuguese)}
}

func (r *Ranker) Rank(candidates []domain.ProductRecord, normalizedQuery string, limit int) []domain.ProductRecord {
	if limit <= 0 {
		limit = DefaultResultLimit
	}

	ranked := make([]domain.ProductRecord, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		bi := matchBand(ranked[i].Name, normalizedQuery)
		bj := matchBand(ranked[j].Name, normalizedQuery)
		if bi != bj {
			return bi < bj
		}
		return r.collator.CompareString(ranked[i].Name, ranked[j].Name) < 0
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// matchBand: 0 exact, 1 prefix, 2 everything else.
func matchBand(name, normalizedQuery string) int {
	upperName := strings.ToUpper(name)
	switch {
	case upperName == normalizedQuery:
		return 0
	case strings.HasPrefix(upperName, normalizedQuery):
		return 1
	default:
		return 2
	}
}
