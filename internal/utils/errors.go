package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrInactiveOperator   = errors.New("OPERATOR_INACTIVE")
	ErrVendorNotFound     = errors.New("VENDOR_NOT_FOUND")
	ErrCatalogUnavailable = errors.New("CATALOG_UNAVAILABLE")
	ErrSessionNotFound    = errors.New("SESSION_NOT_FOUND")
	ErrSessionForbidden   = errors.New("SESSION_FORBIDDEN")
	ErrItemNotFound       = errors.New("ITEM_NOT_FOUND")
	ErrItemNotSelected    = errors.New("ITEM_NOT_SELECTED")
	ErrItemNotSelectable  = errors.New("ITEM_NOT_SELECTABLE")
	ErrNotCustomizable    = errors.New("ITEM_NOT_CUSTOMIZABLE")
	ErrFixedQuantity      = errors.New("QUANTITY_FIXED")
	ErrKitNotFound        = errors.New("KIT_NOT_FOUND")
	ErrQuotationNotFound  = errors.New("QUOTATION_NOT_FOUND")
	ErrEmptyQuotation     = errors.New("EMPTY_QUOTATION")
)
