package sankhya

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/eletrohub/backend/internal/domain"
)

// ProductFetcher is the slice of Client the sync service needs.
type ProductFetcher interface {
	FetchAllProducts(ctx context.Context) ([]json.RawMessage, error)
}

// SyncService mirrors the ERP product view into the local catalog.
// Products absent from the current snapshot are disabled, not deleted.
type SyncService struct {
	fetcher ProductFetcher
	store   domain.ProductStore
}

func NewSyncService(fetcher ProductFetcher, store domain.ProductStore) *SyncService {
	return &SyncService{fetcher: fetcher, store: store}
}

// SyncReport summarizes one catalog sync run.
type SyncReport struct {
	Fetched  int           `json:"fetched"`
	Upserted int           `json:"upserted"`
	Disabled int64         `json:"disabled"`
	Took     time.Duration `json:"-"`
	TookMS   int64         `json:"took_ms"`
}

// SyncProducts pulls the full ERP snapshot and reconciles the catalog.
func (s *SyncService) SyncProducts(ctx context.Context) (*SyncReport, error) {
	start := time.Now()
	log.Printf("[SANKHYA] Starting product sync")

	rows, err := s.fetcher.FetchAllProducts(ctx)
	if err != nil {
		return nil, err
	}

	products := MapProducts(rows)
	seenAt := time.Now().UTC()

	if err := s.store.Upsert(ctx, products, seenAt); err != nil {
		return nil, err
	}

	disabled, err := s.store.DisableUnseen(ctx, seenAt)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{
		Fetched:  len(rows),
		Upserted: len(products),
		Disabled: disabled,
		Took:     time.Since(start),
		TookMS:   time.Since(start).Milliseconds(),
	}
	log.Printf("[SANKHYA] Sync done: fetched=%d upserted=%d disabled=%d in %s",
		report.Fetched, report.Upserted, report.Disabled, report.Took)
	return report, nil
}
