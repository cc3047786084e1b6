package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eletrohub/backend/internal/domain"
)

// ImportService turns free-form budget text into resolved line items and
// records human corrections back into the memory the resolver consults.
type ImportService struct {
	parser      domain.LineItemParser
	resolver    *Resolver
	products    domain.ProductStore
	corrections domain.CorrectionStore
}

// NewImportService creates an import service with dependencies.
func NewImportService(
	parser domain.LineItemParser,
	resolver *Resolver,
	products domain.ProductStore,
	corrections domain.CorrectionStore,
) *ImportService {
	return &ImportService{
		parser:      parser,
		resolver:    resolver,
		products:    products,
		corrections: corrections,
	}
}

// ImportBatch is the outcome of one import request.
type ImportBatch struct {
	BatchID string               `json:"batchId"`
	Results []domain.MatchResult `json:"results"`
}

// ImportText parses the raw text and resolves each line item sequentially.
// Items are independent; a store failure on one item aborts the batch and
// lets the caller decide whether to retry.
func (s *ImportService) ImportText(ctx context.Context, text string) (*ImportBatch, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrInvalidRequest
	}

	items, err := s.parser.ParseText(ctx, text)
	if err != nil {
		return nil, err
	}

	batch := &ImportBatch{
		BatchID: uuid.NewString(),
		Results: make([]domain.MatchResult, 0, len(items)),
	}

	for _, item := range items {
		result, err := s.resolver.Resolve(ctx, item)
		if err != nil {
			return nil, err
		}
		batch.Results = append(batch.Results, result)
	}

	log.Printf("[IMPORT] batch %s: %d items resolved", batch.BatchID, len(batch.Results))
	return batch, nil
}

// CorrectionInput is a human override of an automatic suggestion.
type CorrectionInput struct {
	OriginalText       string `json:"originalText" binding:"required"`
	Description        string `json:"description,omitempty"`
	ModelTag           string `json:"modelTag,omitempty"`
	SuggestedProductID string `json:"suggestedProductId,omitempty"`
	CorrectedProductID string `json:"correctedProductId" binding:"required"`
}

// RecordCorrection appends a FIXED entry to the correction memory after
// checking the corrected product exists. Future imports of the same text
// resolve to it with the memory score.
func (s *ImportService) RecordCorrection(ctx context.Context, input CorrectionInput) error {
	if strings.TrimSpace(input.OriginalText) == "" || input.CorrectedProductID == "" {
		return domain.ErrInvalidRequest
	}

	product, err := s.products.GetByID(ctx, input.CorrectedProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}

	correction := domain.Correction{
		OriginalText:       NormalizeCorrectionText(input.OriginalText),
		Description:        NormalizeCorrectionText(input.Description),
		ModelTag:           input.ModelTag,
		SuggestedProductID: input.SuggestedProductID,
		CorrectedProductID: input.CorrectedProductID,
		CorrectionType:     domain.CorrectionFixed,
		CreatedAt:          time.Now().UTC(),
	}
	return s.corrections.Append(ctx, correction)
}
