package configurator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/balloon_quote/internal/models"
)

// Metadata is the session data stored next to the selections.
type Metadata struct {
	QuotationNumber string
	Vendor          models.Vendor
	Client          models.ClientDetails
	Discount        decimal.Decimal
	PaymentTerms    string
	Now             time.Time
}

// Snapshot projects a store and its metadata onto a persistable quotation.
// The store is not modified.
func Snapshot(store *SelectionStore, meta Metadata) models.Quotation {
	entries := store.Entries()
	items := make(models.QuotationItems, 0, len(entries))
	for _, e := range entries {
		category := e.Category
		if category == "" {
			category = "UNKNOWN"
		}
		items = append(items, models.QuotationItem{
			ItemID:            e.Item.ID,
			ItemName:          e.Item.Name,
			Category:          category,
			Description:       e.Item.Description,
			Quantity:          e.Quantity,
			Price:             e.Item.Price,
			CustomPrice:       e.CustomPrice,
			CustomDescription: e.CustomDescription,
		})
	}

	now := meta.Now
	if now.IsZero() {
		now = time.Now()
	}

	return models.Quotation{
		QuotationNumber: meta.QuotationNumber,
		VendorID:        meta.Vendor.ID,
		VendorName:      meta.Vendor.Name,
		ClientName:      meta.Client.Name,
		ClientDetails:   meta.Client,
		Items:           items,
		Discount:        meta.Discount,
		Total:           ComputeTotal(entries, meta.Discount),
		PaymentTerms:    meta.PaymentTerms,
		Date:            now.UTC(),
	}
}

// Restore rebuilds a store from a quotation against the current catalog.
// Lines whose item no longer exists are dropped; custom lines are rebuilt
// from their stored fields. Lines go through Select, so a single category
// keeps only its last line, and a stored quantity below one comes back as
// one.
func Restore(q models.Quotation, catalog *models.Catalog) *SelectionStore {
	store := NewSelectionStore(catalog)
	for _, line := range q.Items {
		item, _, ok := catalog.FindItem(line.ItemID)
		if !ok {
			if !strings.EqualFold(line.Category, CategoryCustom) {
				continue
			}
			item = models.CatalogItem{
				ID:          line.ItemID,
				Name:        line.ItemName,
				Description: line.Description,
				Price:       line.Price,
				Category:    CategoryCustom,
			}
		}
		store.Select(item, max(line.Quantity, 1), line.CustomPrice, line.CustomDescription)
	}
	return store
}

// EntriesFromItems turns stored lines back into priced entries without a
// catalog. Used when rendering a saved quotation.
func EntriesFromItems(items models.QuotationItems) []Entry {
	out := make([]Entry, 0, len(items))
	for _, line := range items {
		out = append(out, Entry{
			Item: models.CatalogItem{
				ID:          line.ItemID,
				Name:        line.ItemName,
				Description: line.Description,
				Price:       line.Price,
				Category:    line.Category,
			},
			Category:          line.Category,
			Quantity:          line.Quantity,
			CustomPrice:       line.CustomPrice,
			CustomDescription: line.CustomDescription,
		})
	}
	return out
}

// NewQuotationNumber returns a number of the form YYYY-NNN with NNN in
// [100, 999].
func NewQuotationNumber(now time.Time) string {
	return fmt.Sprintf("%d-%d", now.Year(), 100+rand.Intn(900))
}
