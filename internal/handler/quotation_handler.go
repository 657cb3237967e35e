package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/balloon_quote/internal/models"
	"github.com/GTDGit/balloon_quote/internal/repository"
	"github.com/GTDGit/balloon_quote/internal/service"
	"github.com/GTDGit/balloon_quote/internal/sse"
	"github.com/GTDGit/balloon_quote/internal/utils"
)

// QuotationHandler manages saved quotations.
type QuotationHandler struct {
	persistence *service.PersistenceService
	documents   *service.DocumentService
	catalogs    *repository.CatalogRepository
	notifier    sse.SessionNotifier
}

// NewQuotationHandler constructs a QuotationHandler.
func NewQuotationHandler(
	persistence *service.PersistenceService,
	documents *service.DocumentService,
	catalogs *repository.CatalogRepository,
	notifier sse.SessionNotifier,
) *QuotationHandler {
	return &QuotationHandler{
		persistence: persistence,
		documents:   documents,
		catalogs:    catalogs,
		notifier:    notifier,
	}
}

// List returns saved quotations, newest first, optionally filtered by
// vendor.
func (h *QuotationHandler) List(c *gin.Context) {
	page := 1
	limit := 50
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	all, err := h.persistence.List(c.Request.Context())
	if err != nil {
		utils.Error(c, 503, "STORE_UNAVAILABLE", "Failed to list quotations")
		return
	}
	if vendorID := c.Query("vendorId"); vendorID != "" {
		filtered := all[:0]
		for _, q := range all {
			if q.VendorID == vendorID {
				filtered = append(filtered, q)
			}
		}
		all = filtered
	}

	start := min((page-1)*limit, len(all))
	end := min(start+limit, len(all))
	quotations := all[start:end]
	if quotations == nil {
		quotations = []models.Quotation{}
	}

	utils.SuccessWithPagination(c, 200, "Quotations retrieved successfully", gin.H{
		"quotations": quotations,
	}, page, limit, len(all))
}

func (h *QuotationHandler) Get(c *gin.Context) {
	q, err := h.persistence.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		utils.FromError(c, err, "Failed to get quotation")
		return
	}
	utils.Success(c, 200, "Quotation retrieved successfully", q)
}

func (h *QuotationHandler) Delete(c *gin.Context) {
	number := c.Param("number")
	if err := h.persistence.Delete(c.Request.Context(), number); err != nil {
		utils.FromError(c, err, "Failed to delete quotation")
		return
	}
	h.notifier.NotifyQuotationDeleted(number)
	utils.Success(c, 200, "Quotation deleted", nil)
}

// Document renders a saved quotation as PDF. The vendor block falls back to
// the stored vendor name when the vendor no longer exists.
func (h *QuotationHandler) Document(c *gin.Context) {
	q, err := h.persistence.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		utils.FromError(c, err, "Failed to get quotation")
		return
	}
	vendor, err := h.catalogs.Vendor(q.VendorID)
	if err != nil {
		vendor = models.Vendor{ID: q.VendorID, Name: q.VendorName}
	}
	writeDocument(c, h.documents, *q, vendor)
}
