package configurator

import (
	"github.com/shopspring/decimal"

	"github.com/GTDGit/balloon_quote/internal/models"
)

func item(id, name string, price int64) models.CatalogItem {
	return models.CatalogItem{ID: id, Name: name, Description: name + " description", Price: decimal.NewFromInt(price)}
}

func testCatalog() *models.Catalog {
	return &models.Catalog{Categories: []models.CatalogCategory{
		{Name: "Envelope", Items: []models.CatalogItem{
			item("env-77", "Classic 77", 20000),
			item("env-90", "Classic 90", 24000),
			item("env-x", "Experimental", 30000),
		}},
		{Name: "Basket", Items: []models.CatalogItem{
			item("bsk-s", "Wicker S", 4000),
			item("bsk-m", "Wicker M", 5000),
			item("bsk-l", "Wicker L", 6000),
		}},
		{Name: "Burner", Items: []models.CatalogItem{
			item("brn-d", "Double Burner", 7000),
			item("brn-t", "Triple Burner", 9000),
			item("brn-q", "Quad Burner", 11000),
			item("brn-s", "Single Burner", 5000),
		}},
		{Name: "Burner Frame", Items: []models.CatalogItem{
			item("frm-d", "Frame for DOUBLE", 800),
			item("frm-t", "Frame for TRIPLE", 900),
			item("frm-q", "Frame for QUADRUPLE", 1000),
		}},
		{Name: "Ancillary", Items: []models.CatalogItem{
			item("anc-fan", "Inflation Fan", 1500),
			item("anc-art", "Artwork", 0),
		}},
		{Name: "Supplements", Items: []models.CatalogItem{
			item("sup-1", "Pilot bag", 100),
			item("sup-2", "Logbook", 20),
		}},
	}}
}

func testTable() CompatibilityTable {
	return CompatibilityTable{
		"schroeder": {
			"Classic 77": {Baskets: []string{"Wicker S", "Wicker M"}, Burners: []string{"Double Burner"}},
			"Classic 90": {Baskets: []string{"Wicker L"}, Burners: []string{"Triple Burner", "Quad Burner"}},
		},
	}
}

func mustFind(c *models.Catalog, id string) models.CatalogItem {
	it, _, ok := c.FindItem(id)
	if !ok {
		panic("fixture item missing: " + id)
	}
	return it
}

func names(items []models.CatalogItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}
