package handler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/balloon_quote/internal/middleware"
	"github.com/GTDGit/balloon_quote/internal/models"
	"github.com/GTDGit/balloon_quote/internal/service"
	"github.com/GTDGit/balloon_quote/internal/utils"
)

// SessionHandler exposes the configuration session operations.
type SessionHandler struct {
	sessions  *service.SessionService
	documents *service.DocumentService
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(sessions *service.SessionService, documents *service.DocumentService) *SessionHandler {
	return &SessionHandler{sessions: sessions, documents: documents}
}

// RequireOwner rejects requests for a session opened by another operator.
// Routes without a session id pass through.
func (h *SessionHandler) RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.Next()
			return
		}
		if err := h.sessions.Authorize(id, c.GetInt(middleware.OperatorIDKey)); err != nil {
			utils.FromError(c, err, "Session not accessible")
			c.Abort()
			return
		}
		c.Next()
	}
}

// valueRequest carries raw operator input. The value may be sent as a JSON
// string or number; it is handed to the service as typed.
type valueRequest struct {
	Value json.RawMessage `json:"value"`
}

func (r valueRequest) raw() string {
	if len(r.Value) == 0 || string(r.Value) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Value, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(r.Value))
}

func bindValue(c *gin.Context) (string, bool) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return "", false
	}
	return req.raw(), true
}

func (h *SessionHandler) respond(c *gin.Context, message string, view *service.SessionView, err error) {
	if err != nil {
		utils.FromError(c, err, "Failed to update session")
		return
	}
	utils.Success(c, 200, message, view)
}

// Create starts a session for a vendor.
func (h *SessionHandler) Create(c *gin.Context) {
	var req struct {
		VendorID string `json:"vendorId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "vendorId is required")
		return
	}

	view, err := h.sessions.Start(c.GetInt(middleware.OperatorIDKey), req.VendorID)
	if err != nil {
		utils.FromError(c, err, "Failed to start session")
		return
	}
	utils.Success(c, 201, "Session started", view)
}

func (h *SessionHandler) Get(c *gin.Context) {
	view, err := h.sessions.Get(c.Param("id"))
	h.respond(c, "Session retrieved successfully", view, err)
}

func (h *SessionHandler) Close(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		utils.FromError(c, err, "Failed to close session")
		return
	}
	utils.Success(c, 200, "Session closed", nil)
}

// Categories returns the session catalog filtered by the current selection.
func (h *SessionHandler) Categories(c *gin.Context) {
	cats, err := h.sessions.Categories(c.Param("id"))
	if err != nil {
		utils.FromError(c, err, "Failed to get categories")
		return
	}
	utils.Success(c, 200, "Categories retrieved successfully", gin.H{"categories": cats})
}

func (h *SessionHandler) SetVendor(c *gin.Context) {
	var req struct {
		VendorID string `json:"vendorId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "vendorId is required")
		return
	}
	view, err := h.sessions.SetVendor(c.Param("id"), req.VendorID)
	h.respond(c, "Vendor changed", view, err)
}

func (h *SessionHandler) Select(c *gin.Context) {
	var req struct {
		ItemID            string           `json:"itemId" binding:"required"`
		Quantity          int              `json:"quantity"`
		CustomPrice       *decimal.Decimal `json:"customPrice"`
		CustomDescription *string          `json:"customDescription"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	view, err := h.sessions.Select(c.Param("id"), service.SelectInput{
		ItemID:            req.ItemID,
		Quantity:          req.Quantity,
		CustomPrice:       req.CustomPrice,
		CustomDescription: req.CustomDescription,
	})
	h.respond(c, "Item selected", view, err)
}

func (h *SessionHandler) Remove(c *gin.Context) {
	view, err := h.sessions.Remove(c.Param("id"), c.Param("itemId"))
	h.respond(c, "Item removed", view, err)
}

func (h *SessionHandler) SetQuantity(c *gin.Context) {
	raw, ok := bindValue(c)
	if !ok {
		return
	}
	view, err := h.sessions.SetQuantity(c.Param("id"), c.Param("itemId"), raw)
	h.respond(c, "Quantity updated", view, err)
}

func (h *SessionHandler) CommitQuantity(c *gin.Context) {
	view, err := h.sessions.CommitQuantity(c.Param("id"), c.Param("itemId"))
	h.respond(c, "Quantity committed", view, err)
}

func (h *SessionHandler) SetCustomPrice(c *gin.Context) {
	raw, ok := bindValue(c)
	if !ok {
		return
	}
	view, err := h.sessions.SetCustomPrice(c.Param("id"), c.Param("itemId"), raw)
	h.respond(c, "Price updated", view, err)
}

func (h *SessionHandler) SetCustomDescription(c *gin.Context) {
	raw, ok := bindValue(c)
	if !ok {
		return
	}
	view, err := h.sessions.SetCustomDescription(c.Param("id"), c.Param("itemId"), raw)
	h.respond(c, "Description updated", view, err)
}

func (h *SessionHandler) AddCustomItem(c *gin.Context) {
	var req struct {
		Name        string          `json:"name" binding:"required"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		utils.Error(c, 400, "INVALID_REQUEST", "name is required")
		return
	}
	view, err := h.sessions.AddCustomItem(c.Param("id"), req.Name, req.Description, req.Price)
	h.respond(c, "Custom item added", view, err)
}

func (h *SessionHandler) LoadKit(c *gin.Context) {
	view, missing, err := h.sessions.LoadKit(c.Param("id"), c.Param("kitId"))
	if err != nil {
		utils.FromError(c, err, "Failed to load kit")
		return
	}
	if missing == nil {
		missing = []string{}
	}
	utils.Success(c, 200, "Kit loaded", gin.H{
		"session": view,
		"missing": missing,
	})
}

func (h *SessionHandler) SetDiscount(c *gin.Context) {
	raw, ok := bindValue(c)
	if !ok {
		return
	}
	view, err := h.sessions.SetDiscount(c.Param("id"), raw)
	h.respond(c, "Discount updated", view, err)
}

func (h *SessionHandler) SetClient(c *gin.Context) {
	var req struct {
		Name    string `json:"name"`
		Country string `json:"country"`
		Phone   string `json:"phone"`
		Email   string `json:"email" binding:"omitempty,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid client details")
		return
	}
	view, err := h.sessions.SetClient(c.Param("id"), models.ClientDetails{
		Name:    strings.TrimSpace(req.Name),
		Country: strings.TrimSpace(req.Country),
		Phone:   strings.TrimSpace(req.Phone),
		Email:   strings.TrimSpace(req.Email),
	})
	h.respond(c, "Client updated", view, err)
}

func (h *SessionHandler) SetPaymentTerms(c *gin.Context) {
	raw, ok := bindValue(c)
	if !ok {
		return
	}
	view, err := h.sessions.SetPaymentTerms(c.Param("id"), raw)
	h.respond(c, "Payment terms updated", view, err)
}

// LoadQuotation replaces the session with a saved quotation.
func (h *SessionHandler) LoadQuotation(c *gin.Context) {
	view, err := h.sessions.LoadQuotation(c.Request.Context(), c.Param("id"), c.Param("number"))
	h.respond(c, "Quotation loaded", view, err)
}

// Document renders the session's quotation as PDF.
func (h *SessionHandler) Document(c *gin.Context) {
	q, vendor, err := h.sessions.Snapshot(c.Param("id"))
	if err != nil {
		utils.FromError(c, err, "Failed to build quotation")
		return
	}
	writeDocument(c, h.documents, q, vendor)
}

func writeDocument(c *gin.Context, documents *service.DocumentService, q models.Quotation, vendor models.Vendor) {
	doc, err := documents.Export(c.Request.Context(), q, vendor)
	if err != nil {
		utils.FromError(c, err, "Failed to render quotation")
		return
	}
	if doc.URL != "" {
		c.Header("X-Document-Url", doc.URL)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(200, "application/pdf", doc.Content)
}
