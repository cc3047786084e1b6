package domain

import "time"

// Correction types. Only FIXED entries are consulted by the resolver.
const (
	CorrectionFixed     = "FIXED"
	CorrectionConfirmed = "CONFIRMED"
)

// Correction is one entry in the append-only correction memory: a human
// overrode (or confirmed) what the automatic cascade suggested for a given
// input text. The latest entry per normalized text wins at read time.
type Correction struct {
	ID                 string    `json:"id"`
	OriginalText       string    `json:"originalText"` // normalized: lower-cased, trimmed
	Description        string    `json:"description,omitempty"`
	ModelTag           string    `json:"modelTag,omitempty"`
	SuggestedProductID string    `json:"suggestedProductId,omitempty"`
	CorrectedProductID string    `json:"correctedProductId,omitempty"`
	CorrectionType     string    `json:"correctionType"`
	CreatedAt          time.Time `json:"createdAt"`
}
