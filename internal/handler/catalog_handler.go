package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/balloon_quote/internal/configurator"
	"github.com/GTDGit/balloon_quote/internal/repository"
	"github.com/GTDGit/balloon_quote/internal/utils"
)

// CatalogHandler serves vendors, their catalogs and predefined kits.
type CatalogHandler struct {
	catalogs *repository.CatalogRepository
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalogs *repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{catalogs: catalogs}
}

// ListVendors returns every vendor.
func (h *CatalogHandler) ListVendors(c *gin.Context) {
	utils.Success(c, 200, "Vendors retrieved successfully", gin.H{
		"vendors": h.catalogs.Vendors(),
	})
}

type categoryResponse struct {
	Name     string                `json:"name"`
	Behavior configurator.Behavior `json:"behavior"`
	Items    any                   `json:"items"`
}

// GetCatalog returns the full catalog of a vendor with each category's
// selection behavior.
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	vendorID := c.Param("vendorId")
	vendor, err := h.catalogs.Vendor(vendorID)
	if err != nil {
		utils.FromError(c, err, "Failed to get vendor")
		return
	}
	catalog, err := h.catalogs.Catalog(vendorID)
	if err != nil {
		utils.FromError(c, err, "Failed to get catalog")
		return
	}

	categories := make([]categoryResponse, 0, len(catalog.Categories))
	for _, cat := range catalog.Categories {
		categories = append(categories, categoryResponse{
			Name:     cat.Name,
			Behavior: configurator.ResolveBehavior(cat.Name),
			Items:    cat.Items,
		})
	}

	utils.Success(c, 200, "Catalog retrieved successfully", gin.H{
		"vendor":     vendor,
		"categories": categories,
	})
}

// ListKits returns the predefined kits of a vendor.
func (h *CatalogHandler) ListKits(c *gin.Context) {
	vendorID := c.Param("vendorId")
	if _, err := h.catalogs.Vendor(vendorID); err != nil {
		utils.FromError(c, err, "Failed to get vendor")
		return
	}
	utils.Success(c, 200, "Kits retrieved successfully", gin.H{
		"kits": h.catalogs.Kits(vendorID),
	})
}
