package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/eletrohub/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	nonDigitRegex    = regexp.MustCompile(`\D`)
	searchCharsRegex = regexp.MustCompile(`[^a-zA-Z0-9\s\-.]`)
	spaceRunsRegex   = regexp.MustCompile(`\s+`)
)

// fallbackCandidateCap bounds the OR-fallback candidate pool.
const fallbackCandidateCap = 10

// ResolverConfig holds configuration for the cascading resolver.
type ResolverConfig struct {
	LookupTimeout      time.Duration
	EnableDebugLogging bool
}

// Resolver runs the cascading match strategies for one parsed line item:
// correction memory, exact code, strict all-terms search, ranked any-terms
// fallback. First success wins; absence moves to the next strategy, never
// an error. Memory executes before the exact-code lookup, so a learned
// correction wins even when a code would also match; that order is kept
// from the original behavior on purpose.
type Resolver struct {
	products      domain.ProductStore
	corrections   domain.CorrectionStore
	lookupTimeout time.Duration
	debug         bool
}

// NewResolver creates a resolver over the given stores.
func NewResolver(products domain.ProductStore, corrections domain.CorrectionStore, config ResolverConfig) *Resolver {
	timeout := config.LookupTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{
		products:      products,
		corrections:   corrections,
		lookupTimeout: timeout,
		debug:         config.EnableDebugLogging,
	}
}

// strategy attempts one resolution step. resolved=false means "continue
// with the next strategy"; a non-nil error aborts the whole cascade.
type strategy func(ctx context.Context, item domain.ParsedLineItem) (domain.MatchResult, bool, error)

// Resolve runs the strategies strictly in order and returns the first
// resolved result, or the terminal NOT_FOUND.
func (r *Resolver) Resolve(ctx context.Context, item domain.ParsedLineItem) (domain.MatchResult, error) {
	strategies := []strategy{
		r.fromCorrectionMemory,
		r.byExactCode,
		r.byStrictSearch,
		r.byFallbackSearch,
	}

	for _, attempt := range strategies {
		result, resolved, err := attempt(ctx, item)
		if err != nil {
			return domain.MatchResult{}, err
		}
		if resolved {
			return result, nil
		}
	}

	return notFound(item), nil
}

// fromCorrectionMemory consults the learned-correction log for the
// normalized raw text or description. A hit only resolves when the
// corrected product still exists in the catalog.
func (r *Resolver) fromCorrectionMemory(ctx context.Context, item domain.ParsedLineItem) (domain.MatchResult, bool, error) {
	keys := []string{NormalizeCorrectionText(item.RawText)}
	if desc := NormalizeCorrectionText(item.Description); desc != "" && desc != keys[0] {
		keys = append(keys, desc)
	}

	for _, key := range keys {
		if key == "" {
			continue
		}
		correction, err := r.latestFixed(ctx, key)
		if err != nil {
			return domain.MatchResult{}, false, err
		}
		if correction == nil || correction.CorrectedProductID == "" {
			continue
		}

		product, err := r.productByID(ctx, correction.CorrectedProductID)
		if err != nil {
			return domain.MatchResult{}, false, err
		}
		if product == nil {
			// Product vanished since the correction was recorded.
			continue
		}

		if r.debug {
			log.Printf("[RESOLVE] memory hit for %q -> %s", key, product.ID)
		}
		return domain.MatchResult{
			Parsed:     item,
			MatchScore: domain.ScoreMemory,
			Status:     domain.StatusMatched,
			Product:    product,
		}, true, nil
	}

	return domain.MatchResult{}, false, nil
}

// byExactCode resolves through the external reference code: strip
// non-digits, parse, exact lookup. Highest confidence of any strategy.
func (r *Resolver) byExactCode(ctx context.Context, item domain.ParsedLineItem) (domain.MatchResult, bool, error) {
	if item.CodeRef == "" {
		return domain.MatchResult{}, false, nil
	}

	digits := nonDigitRegex.ReplaceAllString(item.CodeRef, "")
	if digits == "" {
		return domain.MatchResult{}, false, nil
	}
	code, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return domain.MatchResult{}, false, nil
	}

	product, err := r.productByCode(ctx, code)
	if err != nil {
		return domain.MatchResult{}, false, err
	}
	if product == nil {
		return domain.MatchResult{}, false, nil
	}

	if r.debug {
		log.Printf("[RESOLVE] exact code %d -> %s", code, product.ID)
	}
	return domain.MatchResult{
		Parsed:     item,
		MatchScore: domain.ScoreExactCode,
		Status:     domain.StatusMatched,
		Product:    product,
	}, true, nil
}

// byStrictSearch requires every description term to appear in the product
// name. No usable terms is a terminal NOT_FOUND, not a pass-through.
func (r *Resolver) byStrictSearch(ctx context.Context, item domain.ParsedLineItem) (domain.MatchResult, bool, error) {
	terms := SearchTerms(item.Description)
	if len(terms) == 0 {
		return notFound(item), true, nil
	}

	product, err := r.searchAllTerms(ctx, terms)
	if err != nil {
		return domain.MatchResult{}, false, err
	}
	if product == nil {
		return domain.MatchResult{}, false, nil
	}

	if r.debug {
		log.Printf("[RESOLVE] strict match %v -> %s", terms, product.ID)
	}
	return domain.MatchResult{
		Parsed:     item,
		MatchScore: domain.ScoreStrictMatch,
		Status:     domain.StatusMatched,
		Product:    product,
	}, true, nil
}

// byFallbackSearch takes any-term candidates and keeps the one containing
// the most terms. A best count of zero falls through to NOT_FOUND.
func (r *Resolver) byFallbackSearch(ctx context.Context, item domain.ParsedLineItem) (domain.MatchResult, bool, error) {
	terms := SearchTerms(item.Description)
	if len(terms) == 0 {
		return domain.MatchResult{}, false, nil
	}

	candidates, err := r.searchAnyTerms(ctx, terms, fallbackCandidateCap)
	if err != nil {
		return domain.MatchResult{}, false, err
	}

	var best *domain.ProductRecord
	bestCount := 0
	for i := range candidates {
		count := containedTermCount(candidates[i].Name, terms)
		if count > bestCount {
			bestCount = count
			best = &candidates[i]
		}
	}
	if best == nil {
		return domain.MatchResult{}, false, nil
	}

	if r.debug {
		log.Printf("[RESOLVE] fallback %v -> %s (%d/%d terms)", terms, best.ID, bestCount, len(terms))
	}
	return domain.MatchResult{
		Parsed:     item,
		MatchScore: domain.ScoreSuggestion,
		Status:     domain.StatusSuggested,
		Product:    best,
	}, true, nil
}

func notFound(item domain.ParsedLineItem) domain.MatchResult {
	return domain.MatchResult{
		Parsed:     item,
		MatchScore: domain.ScoreNone,
		Status:     domain.StatusNotFound,
	}
}

// SearchTerms extracts pushdown search terms from a description: keep
// alphanumerics, spaces, dashes and dots; split on whitespace; drop terms
// shorter than two characters.
func SearchTerms(description string) []string {
	cleaned := searchCharsRegex.ReplaceAllString(description, " ")
	var terms []string
	for _, term := range strings.Fields(cleaned) {
		if len(term) < 2 {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// NormalizeCorrectionText produces the correction-memory key: lower-cased,
// trimmed, whitespace collapsed.
func NormalizeCorrectionText(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	return spaceRunsRegex.ReplaceAllString(normalized, " ")
}

func containedTermCount(name string, terms []string) int {
	upperName := strings.ToUpper(name)
	count := 0
	for _, term := range terms {
		if strings.Contains(upperName, strings.ToUpper(term)) {
			count++
		}
	}
	return count
}

// Store round-trips run under a per-lookup deadline so a stuck store
// surfaces as ErrLookupTimeout instead of hanging the import.

func (r *Resolver) latestFixed(ctx context.Context, key string) (*domain.Correction, error) {
	lctx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()
	correction, err := r.corrections.LatestFixed(lctx, key)
	return correction, wrapLookupErr(err)
}

func (r *Resolver) productByID(ctx context.Context, id string) (*domain.ProductRecord, error) {
	lctx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()
	product, err := r.products.GetByID(lctx, id)
	return product, wrapLookupErr(err)
}

func (r *Resolver) productByCode(ctx context.Context, code int64) (*domain.ProductRecord, error) {
	lctx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()
	product, err := r.products.GetByCode(lctx, code)
	return product, wrapLookupErr(err)
}

func (r *Resolver) searchAllTerms(ctx context.Context, terms []string) (*domain.ProductRecord, error) {
	lctx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()
	product, err := r.products.SearchAllTerms(lctx, terms)
	return product, wrapLookupErr(err)
}

func (r *Resolver) searchAnyTerms(ctx context.Context, terms []string, limit int) ([]domain.ProductRecord, error) {
	lctx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()
	candidates, err := r.products.SearchAnyTerms(lctx, terms, limit)
	return candidates, wrapLookupErr(err)
}

func wrapLookupErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrLookupTimeout, err)
	}
	return err
}
