package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ClientDetails holds the contact fields of the quoted customer.
type ClientDetails struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Value implements driver.Valuer so the struct is stored as JSONB.
func (c ClientDetails) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB columns.
func (c *ClientDetails) Scan(src any) error {
	return scanJSON(src, c)
}

// QuotationItem is a denormalized selection line. It carries enough data to
// price and render the line without the catalog.
type QuotationItem struct {
	ItemID            string           `json:"itemId"`
	ItemName          string           `json:"itemName"`
	Category          string           `json:"category"`
	Description       string           `json:"description,omitempty"`
	Quantity          int              `json:"quantity"`
	Price             decimal.Decimal  `json:"price"`
	CustomPrice       *decimal.Decimal `json:"customPrice,omitempty"`
	CustomDescription *string          `json:"customDescription,omitempty"`
}

// QuotationItems is the JSONB representation of all lines of a quotation.
type QuotationItems []QuotationItem

// Value implements driver.Valuer.
func (q QuotationItems) Value() (driver.Value, error) {
	if q == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(q)
}

// Scan implements sql.Scanner.
func (q *QuotationItems) Scan(src any) error {
	return scanJSON(src, q)
}

// Quotation is the persisted snapshot of a configuration session. The
// quotation number is the idempotency key for every save.
type Quotation struct {
	QuotationNumber string          `db:"quotation_number" json:"quotationNumber"`
	VendorID        string          `db:"vendor_id" json:"vendorId"`
	VendorName      string          `db:"vendor_name" json:"vendorName"`
	ClientName      string          `db:"client_name" json:"clientName"`
	ClientDetails   ClientDetails   `db:"client_details" json:"clientDetails"`
	Items           QuotationItems  `db:"items" json:"items"`
	Discount        decimal.Decimal `db:"discount" json:"discount"`
	Total           decimal.Decimal `db:"total" json:"total"`
	PaymentTerms    string          `db:"payment_terms" json:"paymentTerms"`
	Date            time.Time       `db:"date" json:"date"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return errors.New("unsupported JSON column type")
	}
}
