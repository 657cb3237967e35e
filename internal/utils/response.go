package utils

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response defines the standard API response envelope.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// ErrorInfo provides details for error responses.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta contains request-scoped metadata.
type Meta struct {
	RequestID  string      `json:"requestId"`
	Timestamp  string      `json:"timestamp"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Success writes a success response with the standard envelope.
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
		Meta: Meta{
			RequestID: getRequestID(c),
			Timestamp: time.Now().Format(time.RFC3339),
		},
	})
}

// SuccessWithPagination writes a success response with pagination metadata.
func SuccessWithPagination(c *gin.Context, code int, message string, data interface{}, page, limit, totalItems int) {
	// safety defaults
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (totalItems + limit - 1) / limit
	}
	c.JSON(code, Response{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
		Meta: Meta{
			RequestID: getRequestID(c),
			Timestamp: time.Now().Format(time.RFC3339),
			Pagination: &Pagination{
				Page:       page,
				Limit:      limit,
				TotalItems: totalItems,
				TotalPages: totalPages,
			},
		},
	})
}

// Error writes an error response with provided API error code and message.
func Error(c *gin.Context, code int, errCode, message string) {
	c.JSON(code, Response{
		Success: false,
		Code:    code,
		Message: message,
		Error: &ErrorInfo{
			Code:    errCode,
			Message: message,
		},
		Meta: Meta{
			RequestID: getRequestID(c),
			Timestamp: time.Now().Format(time.RFC3339),
		},
	})
}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return uuid.New().String()[:8]
}

// FromError writes an error response for a known application error and falls
// back to a 500 for anything else.
func FromError(c *gin.Context, err error, fallback string) {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			Error(c, m.status, m.err.Error(), m.message)
			return
		}
	}
	Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
}

var errorStatus = []struct {
	err     error
	status  int
	message string
}{
	{ErrVendorNotFound, http.StatusNotFound, "Vendor not found"},
	{ErrCatalogUnavailable, http.StatusServiceUnavailable, "Vendor catalog unavailable"},
	{ErrSessionNotFound, http.StatusNotFound, "Session not found"},
	{ErrSessionForbidden, http.StatusForbidden, "Session belongs to another operator"},
	{ErrItemNotFound, http.StatusNotFound, "Item not found in catalog"},
	{ErrItemNotSelected, http.StatusConflict, "Item is not selected"},
	{ErrItemNotSelectable, http.StatusConflict, "Item is not compatible with the current selection"},
	{ErrNotCustomizable, http.StatusUnprocessableEntity, "Item does not accept a custom price or description"},
	{ErrFixedQuantity, http.StatusUnprocessableEntity, "Item quantity is fixed at one"},
	{ErrKitNotFound, http.StatusNotFound, "Kit not found"},
	{ErrQuotationNotFound, http.StatusNotFound, "Quotation not found"},
	{ErrEmptyQuotation, http.StatusUnprocessableEntity, "Quotation has no items"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{ErrInactiveOperator, http.StatusForbidden, "Account is inactive"},
}
