package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eletrohub/backend/internal/domain"
)

type stubSearcher struct {
	results []domain.ProductRecord
	err     error
	calls   int
}

func (s *stubSearcher) Search(ctx context.Context, query string, limit int) ([]domain.ProductRecord, error) {
	s.calls++
	return s.results, s.err
}

type stubCache struct {
	data map[string]any
	sets int
}

func newStubCache() *stubCache { return &stubCache{data: map[string]any{}} }

func (c *stubCache) Get(ctx context.Context, key string) (any, error) {
	v, ok := c.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (c *stubCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.sets++
	// Mimic the memory cache's JSON round-trip shape.
	if resp, ok := value.(*SearchResponse); ok {
		results := make([]any, 0, len(resp.Results))
		for _, p := range resp.Results {
			m := map[string]any{
				"id": p.ID, "name": p.Name, "brand": p.Brand,
				"price": p.Price, "isAvailable": p.IsAvailable,
			}
			if p.SankhyaCode != nil {
				m["sankhyaCode"] = float64(*p.SankhyaCode)
			}
			results = append(results, m)
		}
		c.data[key] = map[string]any{
			"query": resp.Query, "total": float64(resp.Total), "results": results,
		}
		return nil
	}
	c.data[key] = value
	return nil
}

func (c *stubCache) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *stubCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.data[key]
	return ok, nil
}

type stubFailures struct {
	logged []string
}

func (f *stubFailures) LogFailedSearch(ctx context.Context, query string) error {
	f.logged = append(f.logged, query)
	return nil
}

func (f *stubFailures) ListFailedSearches(ctx context.Context, limit int) ([]domain.FailedSearch, error) {
	return nil, nil
}

func TestSearchServiceCachesResults(t *testing.T) {
	engine := &stubSearcher{results: []domain.ProductRecord{{ID: "p1", Name: "TOMADA DUPLA 10A"}}}
	cache := newStubCache()
	svc := NewSearchService(engine, cache, &stubFailures{}, time.Minute, 3)
	ctx := context.Background()

	first, err := svc.Search(ctx, "tomada dupla", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if first.CacheHit {
		t.Errorf("first Search() CacheHit = true, want false")
	}
	if first.Total != 1 {
		t.Errorf("first Search() Total = %d, want 1", first.Total)
	}

	second, err := svc.Search(ctx, "tomada dupla", 3)
	if err != nil {
		t.Fatalf("second Search() error = %v", err)
	}
	if !second.CacheHit {
		t.Errorf("second Search() CacheHit = false, want true")
	}
	if engine.calls != 1 {
		t.Errorf("engine called %d times, want 1", engine.calls)
	}
	if len(second.Results) != 1 || second.Results[0].Name != "TOMADA DUPLA 10A" {
		t.Errorf("cached results = %+v, want original product back", second.Results)
	}
}

func TestSearchServiceNormalizesCacheKey(t *testing.T) {
	engine := &stubSearcher{results: []domain.ProductRecord{{ID: "p1", Name: "X"}}}
	svc := NewSearchService(engine, newStubCache(), &stubFailures{}, time.Minute, 3)
	ctx := context.Background()

	if _, err := svc.Search(ctx, "tomada  dupla", 3); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	resp, err := svc.Search(ctx, "TOMADA DUPLA", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !resp.CacheHit {
		t.Errorf("equivalent query missed cache, want hit")
	}
}

func TestSearchServiceLogsEmptySearches(t *testing.T) {
	failures := &stubFailures{}
	svc := NewSearchService(&stubSearcher{}, newStubCache(), failures, time.Minute, 3)

	resp, err := svc.Search(context.Background(), "parafuso sextavado", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.Total != 0 {
		t.Errorf("Total = %d, want 0", resp.Total)
	}
	if len(failures.logged) != 1 || failures.logged[0] != "PARAFUSO SEXTAVADO" {
		t.Errorf("logged = %v, want one normalized entry", failures.logged)
	}
}

func TestSearchServiceSkipsLoggingShortQueries(t *testing.T) {
	failures := &stubFailures{}
	svc := NewSearchService(&stubSearcher{}, newStubCache(), failures, time.Minute, 3)

	if _, err := svc.Search(context.Background(), "ab", 3); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(failures.logged) != 0 {
		t.Errorf("logged = %v, want no entries for a 2-char query", failures.logged)
	}
}

func TestSearchServiceEngineErrorPropagates(t *testing.T) {
	engineErr := errors.New("store down")
	svc := NewSearchService(&stubSearcher{err: engineErr}, newStubCache(), &stubFailures{}, time.Minute, 3)

	if _, err := svc.Search(context.Background(), "tomada", 3); !errors.Is(err, engineErr) {
		t.Errorf("Search() error = %v, want %v", err, engineErr)
	}
}
