package search

import (
	"context"
	"log"

	"github.com/eletrohub/backend/internal/domain"
)

// Engine is the in-memory variant-expansion matcher used for direct user
// search: it expands abbreviations client-side and evaluates the AND/OR
// predicate over the available catalog, unlike the import resolver which
// pushes plain terms down to the store.
type Engine struct {
	store  domain.ProductStore
	table  *Table
	ranker *Ranker
	debug  bool
}

// NewEngine creates a search engine over the given catalog store. The table
// must already be fully built; the engine never mutates it.
func NewEngine(store domain.ProductStore, table *Table, debug bool) *Engine {
	return &Engine{
		store:  store,
		table:  table,
		ranker: NewRanker(),
		debug:  debug,
	}
}

// Search returns up to limit products matching the query, ranked. An empty
// or stopword-only query returns no results without touching the store.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]domain.ProductRecord, error) {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	conditions := make([][]string, len(tokens))
	for i, token := range tokens {
		conditions[i] = e.table.Expand(token)
		if e.debug {
			log.Printf("[SEARCH] token %q -> %d variants", token, len(conditions[i]))
		}
	}

	products, err := e.store.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	var matched []domain.ProductRecord
	for _, p := range products {
		if MatchesProduct(p.Name, conditions) {
			matched = append(matched, p)
		}
	}

	if e.debug {
		log.Printf("[SEARCH] query %q matched %d of %d products", query, len(matched), len(products))
	}

	return e.ranker.Rank(matched, NormalizeQuery(query), limit), nil
}
