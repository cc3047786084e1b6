package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eletrohub/backend/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "eletrohub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedProducts(t *testing.T, db *DB, products []domain.ProductRecord) {
	t.Helper()
	require.NoError(t, db.Upsert(context.Background(), products, time.Now()))
}

func code(v int64) *int64 { return &v }

func TestUpsertAndGetByCode(t *testing.T) {
	db := openTestDB(t)
	seedProducts(t, db, []domain.ProductRecord{
		{ID: "p1", Name: "TOMADA DUPLA 10A", Brand: "TRAMONTINA", SankhyaCode: code(12345), Price: 18.9, Unit: "UN", IsAvailable: true},
	})

	got, err := db.GetByCode(context.Background(), 12345)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, "TOMADA DUPLA 10A", got.Name)
	assert.True(t, got.IsAvailable)
}

func TestGetByCodeMissingReturnsNilNil(t *testing.T) {
	db := openTestDB(t)

	got, err := db.GetByCode(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpsertUpdatesExistingRow(t *testing.T) {
	db := openTestDB(t)
	seedProducts(t, db, []domain.ProductRecord{
		{ID: "p1", Name: "CABO FLEX 2,5MM AZUL", Price: 2.1, IsAvailable: true},
	})
	seedProducts(t, db, []domain.ProductRecord{
		{ID: "p1", Name: "CABO FLEX 2,5MM AZUL", Price: 2.5, IsAvailable: true},
	})

	got, err := db.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2.5, got.Price)

	all, err := db.ListAvailable(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSearchAllTermsRequiresEveryTerm(t *testing.T) {
	db := openTestDB(t)
	seedProducts(t, db, []domain.ProductRecord{
		{ID: "p1", Name: "CABO FLEX 2,5MM AZUL", IsAvailable: true},
		{ID: "p2", Name: "CABO FLEX 4MM AZUL", IsAvailable: true},
	})

	got, err := db.SearchAllTerms(context.Background(), []string{"cabo", "2,5", "azul"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.ID)

	got, err = db.SearchAllTerms(context.Background(), []string{"cabo", "verde"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSearchAnyTermsExcludesUnavailable(t *testing.T) {
	db := openTestDB(t)
	seedProducts(t, db, []domain.ProductRecord{
		{ID: "p1", Name: "DISJUNTOR 20A", IsAvailable: true},
		{ID: "p2", Name: "DISJUNTOR 32A", IsAvailable: false},
	})

	got, err := db.SearchAnyTerms(context.Background(), []string{"disjuntor"}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
}

func TestDisableUnseenFlipsAvailability(t *testing.T) {
	db := openTestDB(t)
	firstSync := time.Now().Add(-time.Hour)
	require.NoError(t, db.Upsert(context.Background(), []domain.ProductRecord{
		{ID: "old", Name: "LUMINARIA ANTIGA", IsAvailable: true},
	}, firstSync))

	secondSync := time.Now()
	require.NoError(t, db.Upsert(context.Background(), []domain.ProductRecord{
		{ID: "new", Name: "LUMINARIA NOVA", IsAvailable: true},
	}, secondSync))

	n, err := db.DisableUnseen(context.Background(), secondSync)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	old, err := db.GetByID(context.Background(), "old")
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.False(t, old.IsAvailable)
}

func TestLatestFixedPicksNewestEntry(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, db.Append(ctx, domain.Correction{
		OriginalText:       "10m cabo pp",
		CorrectedProductID: "p-old",
		CorrectionType:     domain.CorrectionFixed,
		CreatedAt:          base,
	}))
	require.NoError(t, db.Append(ctx, domain.Correction{
		OriginalText:       "10m cabo pp",
		CorrectedProductID: "p-new",
		CorrectionType:     domain.CorrectionFixed,
		CreatedAt:          base.Add(time.Minute),
	}))
	require.NoError(t, db.Append(ctx, domain.Correction{
		OriginalText:   "10m cabo pp",
		CorrectionType: domain.CorrectionConfirmed,
		CreatedAt:      base.Add(2 * time.Minute),
	}))

	got, err := db.LatestFixed(ctx, "10m cabo pp")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "p-new", got.CorrectedProductID)
}

func TestLatestFixedMissReturnsNilNil(t *testing.T) {
	db := openTestDB(t)

	got, err := db.LatestFixed(context.Background(), "nunca visto")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFailedSearchLogRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.LogFailedSearch(ctx, "PARAFUSO SEXTAVADO 3/4"))
	require.NoError(t, db.LogFailedSearch(ctx, "BUCHA 8"))

	got, err := db.ListFailedSearches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "BUCHA 8", got[0].Query)
}

func TestApprovedSynonymsSkipsUnapproved(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveSynonym(ctx, "BENJAMIN", []string{"ADAPTADOR"}))
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO search_synonyms (term, synonyms_json, approved) VALUES ('PENDENTE', '["X"]', 0)`)
	require.NoError(t, err)

	overlay, err := db.ApprovedSynonyms(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"BENJAMIN": {"ADAPTADOR"}}, overlay)
}
