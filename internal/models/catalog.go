package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CatalogItem is immutable reference data for a single piece of equipment.
type CatalogItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category,omitempty"`
}

// CatalogCategory is a named, ordered group of catalog items.
type CatalogCategory struct {
	Name  string        `json:"name"`
	Items []CatalogItem `json:"items"`
}

// Catalog is the read-only product tree of a single vendor.
type Catalog struct {
	Categories []CatalogCategory `json:"categories"`
}

// Category returns the category whose name matches case-insensitively.
func (c *Catalog) Category(name string) (*CatalogCategory, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Categories {
		if strings.EqualFold(strings.TrimSpace(c.Categories[i].Name), strings.TrimSpace(name)) {
			return &c.Categories[i], true
		}
	}
	return nil, false
}

// FindItem looks an item up by id and returns it together with the name of
// the category that owns it.
func (c *Catalog) FindItem(id string) (CatalogItem, string, bool) {
	if c == nil {
		return CatalogItem{}, "", false
	}
	for _, cat := range c.Categories {
		for _, it := range cat.Items {
			if it.ID == id {
				return it, cat.Name, true
			}
		}
	}
	return CatalogItem{}, "", false
}

// FindByName returns the item with an exact name inside the given category.
func (c *Catalog) FindByName(category, name string) (CatalogItem, bool) {
	cat, ok := c.Category(category)
	if !ok {
		return CatalogItem{}, false
	}
	for _, it := range cat.Items {
		if it.Name == name {
			return it, true
		}
	}
	return CatalogItem{}, false
}

// Vendor describes a balloon manufacturer and where its catalog lives.
type Vendor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	CatalogFile string `json:"catalogFile"`
}

// Kit is a predefined envelope + basket + burner bundle.
type Kit struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Envelope    string `json:"envelope"`
	Basket      string `json:"basket"`
	Burner      string `json:"burner"`
	Description string `json:"description"`
}
