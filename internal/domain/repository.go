package domain

import (
	"context"
	"time"
)

// ProductStore is the persistent product catalog. Substring predicates are
// case-insensitive and apply to the product name; search methods only return
// currently available products.
type ProductStore interface {
	GetByID(ctx context.Context, id string) (*ProductRecord, error)
	GetByCode(ctx context.Context, code int64) (*ProductRecord, error)
	// SearchAllTerms returns the first available product whose name contains
	// every term, or nil when none qualifies.
	SearchAllTerms(ctx context.Context, terms []string) (*ProductRecord, error)
	// SearchAnyTerms returns up to limit available products whose name
	// contains at least one term.
	SearchAnyTerms(ctx context.Context, terms []string, limit int) ([]ProductRecord, error)
	ListAvailable(ctx context.Context) ([]ProductRecord, error)
	// Upsert inserts or updates the given products and stamps each with seenAt.
	Upsert(ctx context.Context, products []ProductRecord, seenAt time.Time) error
	// DisableUnseen flips availability off for products not seen since seenAt.
	// Returns the number of products disabled.
	DisableUnseen(ctx context.Context, seenAt time.Time) (int64, error)
}

// CorrectionStore is the append-only correction memory log.
type CorrectionStore interface {
	Append(ctx context.Context, c Correction) error
	// LatestFixed returns the most recent FIXED correction with a corrected
	// product for the given normalized text, or nil when there is none.
	LatestFixed(ctx context.Context, normalizedText string) (*Correction, error)
}

// FailedSearchStore records catalog queries that returned nothing.
type FailedSearchStore interface {
	LogFailedSearch(ctx context.Context, query string) error
	ListFailedSearches(ctx context.Context, limit int) ([]FailedSearch, error)
}

// SynonymStore provides the approved synonym overlay merged over the static
// abbreviation table at startup.
type SynonymStore interface {
	ApprovedSynonyms(ctx context.Context) (map[string][]string, error)
}

// LineItemParser turns free-form budget text into structured line items.
// It must always return a (possibly empty) slice; malformed upstream output
// is its failure domain, surfaced as ErrParserFailure.
type LineItemParser interface {
	ParseText(ctx context.Context, text string) ([]ParsedLineItem, error)
}

// CacheRepository is a TTL key-value cache, used to memoize search results
// between catalog syncs.
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
