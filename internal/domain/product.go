package domain

import "time"

// ProductRecord is a catalog entry synced from the Sankhya ERP.
// The matcher only reads it; mutation happens in the sync path.
type ProductRecord struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Brand           string    `json:"brand,omitempty"`
	Category        string    `json:"category,omitempty"`
	SankhyaCode     *int64    `json:"sankhyaCode,omitempty"` // unique external reference, nullable
	Price           float64   `json:"price"`
	Unit            string    `json:"unit,omitempty"`
	IsAvailable     bool      `json:"isAvailable"`
	PopularityIndex float64   `json:"popularityIndex,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt,omitempty"`
}

// ParsedLineItem is one structured line produced by the AI parser from a raw
// budget list. Ephemeral: it exists only for the duration of one import.
type ParsedLineItem struct {
	RawText     string  `json:"raw_text"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
	Description string  `json:"description"`
	Brand       string  `json:"brand,omitempty"`
	CodeRef     string  `json:"code_ref,omitempty"`
}

// MatchStatus classifies the outcome of one resolution.
type MatchStatus string

const (
	StatusMatched   MatchStatus = "MATCHED"
	StatusSuggested MatchStatus = "SUGGESTED"
	StatusNotFound  MatchStatus = "NOT_FOUND"
)

// Match scores are fixed bands tied to which strategy resolved the item.
const (
	ScoreExactCode   = 100
	ScoreMemory      = 95
	ScoreStrictMatch = 90
	ScoreSuggestion  = 60
	ScoreNone        = 0
)

// MatchResult pairs a parsed line item with the product (if any) the
// cascading resolver settled on.
type MatchResult struct {
	Parsed     ParsedLineItem `json:"parsed"`
	MatchScore int            `json:"match_score"`
	Status     MatchStatus    `json:"status"`
	Product    *ProductRecord `json:"product,omitempty"`
}

// FailedSearch records a catalog query that returned no results.
type FailedSearch struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"createdAt"`
}
