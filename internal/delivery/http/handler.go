package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eletrohub/backend/internal/domain"
	"github.com/eletrohub/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search      *usecase.SearchService
	importer    *usecase.ImportService
	failures    domain.FailedSearchStore
	syncFn      func(ctx context.Context) (any, error)
	postSyncFns []func()
}

// NewHandler creates a new HTTP handler. syncFn runs a catalog sync and
// returns its report; postSyncFns run after a successful sync (cache
// invalidation lives there).
func NewHandler(
	search *usecase.SearchService,
	importer *usecase.ImportService,
	failures domain.FailedSearchStore,
	syncFn func(ctx context.Context) (any, error),
	postSyncFns ...func(),
) *Handler {
	return &Handler{
		search:      search,
		importer:    importer,
		failures:    failures,
		syncFn:      syncFn,
		postSyncFns: postSyncFns,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "eletrohub-backend",
		"version": "1.0.0",
	})
}

// SearchProducts handles GET /api/v1/products/search?q=...&limit=...
func (h *Handler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 50"})
			return
		}
		limit = parsed
	}

	resp, err := h.search.Search(c.Request.Context(), query, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type importRequest struct {
	Text string `json:"text" binding:"required"`
}

// ImportBudget handles POST /api/v1/budgets/import
func (h *Handler) ImportBudget(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field 'text' is required"})
		return
	}

	batch, err := h.importer.ImportText(c.Request.Context(), req.Text)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

// RecordCorrection handles POST /api/v1/corrections
func (h *Handler) RecordCorrection(c *gin.Context) {
	var input usecase.CorrectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fields 'originalText' and 'correctedProductId' are required"})
		return
	}

	if err := h.importer.RecordCorrection(c.Request.Context(), input); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "recorded"})
}

// ListFailedSearches handles GET /api/v1/admin/failed-searches
func (h *Handler) ListFailedSearches(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 200"})
			return
		}
		limit = parsed
	}

	searches, err := h.failures.ListFailedSearches(c.Request.Context(), limit)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if searches == nil {
		searches = []domain.FailedSearch{}
	}

	c.JSON(http.StatusOK, gin.H{"failed_searches": searches, "total": len(searches)})
}

// SyncProducts handles POST /api/v1/sync/products
func (h *Handler) SyncProducts(c *gin.Context) {
	report, err := h.syncFn(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}

	for _, fn := range h.postSyncFns {
		fn()
	}

	c.JSON(http.StatusOK, gin.H{"status": "completed", "report": report})
}

// renderError maps domain sentinels to HTTP status codes.
func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrLookupTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrParserFailure), errors.Is(err, domain.ErrERPFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
