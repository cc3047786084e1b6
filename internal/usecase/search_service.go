package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/eletrohub/backend/internal/domain"
	"github.com/eletrohub/backend/internal/search"
)

// ProductSearcher is the matcher behind the public search endpoint.
type ProductSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.ProductRecord, error)
}

// SearchService fronts the search engine with a TTL cache and logs
// queries that come back empty so the synonym table can be grown later.
type SearchService struct {
	engine       ProductSearcher
	cache        domain.CacheRepository
	failures     domain.FailedSearchStore
	cacheTTL     time.Duration
	defaultLimit int
}

func NewSearchService(engine ProductSearcher, cache domain.CacheRepository, failures domain.FailedSearchStore, cacheTTL time.Duration, defaultLimit int) *SearchService {
	if defaultLimit < 1 {
		defaultLimit = search.DefaultResultLimit
	}
	return &SearchService{
		engine:       engine,
		cache:        cache,
		failures:     failures,
		cacheTTL:     cacheTTL,
		defaultLimit: defaultLimit,
	}
}

// SearchResponse is the payload returned by the search endpoint.
type SearchResponse struct {
	Query    string                 `json:"query"`
	Results  []domain.ProductRecord `json:"results"`
	Total    int                    `json:"total"`
	CacheHit bool                   `json:"cache_hit"`
}

func searchCacheKey(normalizedQuery string, limit int) string {
	return fmt.Sprintf("search:%s:%d", normalizedQuery, limit)
}

// Search runs a product search, serving from cache when possible.
func (s *SearchService) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	normalized := search.NormalizeQuery(query)
	key := searchCacheKey(normalized, limit)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		if resp, ok := decodeCachedResponse(cached); ok {
			resp.CacheHit = true
			return resp, nil
		}
		// Unusable cached shape, drop it and fall through.
		_ = s.cache.Delete(ctx, key)
	}

	results, err := s.engine.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	resp := &SearchResponse{
		Query:   query,
		Results: results,
		Total:   len(results),
	}

	// Very short queries are noise, not synonym-table candidates.
	if len(results) == 0 && len(normalized) > 2 {
		if err := s.failures.LogFailedSearch(ctx, normalized); err != nil {
			log.Printf("[SEARCH] Failed to log empty search %q: %v", normalized, err)
		}
	}

	if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
		log.Printf("[SEARCH] Cache write failed for %q: %v", key, err)
	}

	return resp, nil
}

// decodeCachedResponse rebuilds a SearchResponse from the cache's JSON
// round-tripped representation.
func decodeCachedResponse(v any) (*SearchResponse, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}

	resp := &SearchResponse{}
	resp.Query, _ = m["query"].(string)
	if total, ok := m["total"].(float64); ok {
		resp.Total = int(total)
	}

	rawResults, ok := m["results"].([]any)
	if !ok {
		if m["results"] == nil {
			return resp, true
		}
		return nil, false
	}

	for _, raw := range rawResults {
		rm, ok := raw.(map[string]any)
		if !ok {
			return nil, false
		}
		var p domain.ProductRecord
		p.ID, _ = rm["id"].(string)
		p.Name, _ = rm["name"].(string)
		p.Brand, _ = rm["brand"].(string)
		p.Category, _ = rm["category"].(string)
		p.Unit, _ = rm["unit"].(string)
		p.IsAvailable, _ = rm["isAvailable"].(bool)
		if price, ok := rm["price"].(float64); ok {
			p.Price = price
		}
		if pop, ok := rm["popularityIndex"].(float64); ok {
			p.PopularityIndex = pop
		}
		if code, ok := rm["sankhyaCode"].(float64); ok {
			c := int64(code)
			p.SankhyaCode = &c
		}
		resp.Results = append(resp.Results, p)
	}
	return resp, true
}
