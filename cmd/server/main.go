package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/eletrohub/backend/config"
	httpDelivery "github.com/eletrohub/backend/internal/delivery/http"
	"github.com/eletrohub/backend/internal/infrastructure/cache"
	"github.com/eletrohub/backend/internal/infrastructure/openai"
	"github.com/eletrohub/backend/internal/infrastructure/sankhya"
	"github.com/eletrohub/backend/internal/infrastructure/store"
	"github.com/eletrohub/backend/internal/search"
	"github.com/eletrohub/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting EletroHub Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Open the catalog store
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open store at %s: %v", cfg.Store.Path, err)
	}
	defer db.Close()
	log.Printf("Store: %s", cfg.Store.Path)

	// Synonym overlay is read once; the merged table is immutable after this.
	overlay, err := db.ApprovedSynonyms(context.Background())
	if err != nil {
		log.Fatalf("Failed to load synonym overlay: %v", err)
	}
	table := search.NewTable(overlay)
	log.Printf("Synonym overlay: %d approved terms", len(overlay))

	// Search stack
	memoryCache := cache.NewMemoryCache()
	engine := search.NewEngine(db, table, cfg.Matching.DebugLogging)
	searchService := usecase.NewSearchService(engine, memoryCache, db, cfg.Cache.TTL, cfg.Matching.ResultLimit)

	// Import stack
	resolver := usecase.NewResolver(db, db, usecase.ResolverConfig{
		LookupTimeout:      cfg.Matching.LookupTimeout,
		EnableDebugLogging: cfg.Matching.DebugLogging,
	})

	parser := openai.NewParser(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
	if cfg.OpenAI.APIKey == "" {
		log.Printf("WARNING: OpenAI API key not configured - budget imports will fail!")
	}

	importService := usecase.NewImportService(parser, resolver, db, db)

	// ERP sync stack
	erpClient := sankhya.NewClient(
		cfg.Sankhya.BaseURL,
		cfg.Sankhya.ClientID,
		cfg.Sankhya.ClientSecret,
		cfg.Sankhya.XToken,
		cfg.Sankhya.Timeout,
		cfg.Sankhya.Rate,
	)
	syncService := sankhya.NewSyncService(erpClient, db)
	if cfg.Sankhya.ClientID == "" {
		log.Printf("WARNING: Sankhya credentials not configured - catalog sync will fail!")
	}

	syncFn := func(ctx context.Context) (any, error) {
		return syncService.SyncProducts(ctx)
	}

	log.Printf("Matching: result_limit=%d, lookup_timeout=%s, debug=%v",
		cfg.Matching.ResultLimit, cfg.Matching.LookupTimeout, cfg.Matching.DebugLogging)

	// Create HTTP handler with dependencies. The cache is flushed after
	// every sync so search never serves stale availability.
	handler := httpDelivery.NewHandler(searchService, importService, db, syncFn, memoryCache.Clear)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
