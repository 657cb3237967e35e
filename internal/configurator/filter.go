package configurator

import (
	"slices"
	"strings"

	"github.com/GTDGit/balloon_quote/internal/models"
)

// FilterSelectable narrows the items of a category to those selectable with
// the current selections.
//
// BASKET and BURNER are restricted to the compatibility rule of the selected
// envelope; a missing rule leaves nothing selectable. BURNER FRAME is
// narrowed by the frame type inferred from the selected burner, whether or
// not an envelope is selected. Every other category is returned unfiltered.
func FilterSelectable(category *models.CatalogCategory, store *SelectionStore, table CompatibilityTable, vendorID string) []models.CatalogItem {
	if category == nil {
		return nil
	}

	envelope, hasEnvelope := store.SelectedName(CategoryEnvelope)

	switch normalizeCategory(category.Name) {
	case CategoryBasket:
		if !hasEnvelope {
			return category.Items
		}
		return keepNamed(category.Items, table.Baskets(vendorID, envelope))
	case CategoryBurner:
		if !hasEnvelope {
			return category.Items
		}
		return keepNamed(category.Items, table.Burners(vendorID, envelope))
	case CategoryBurnerFrame:
		burner, ok := store.SelectedName(CategoryBurner)
		if !ok {
			return category.Items
		}
		frameType := FrameTypeFor(burner)
		if frameType == "" {
			return category.Items
		}
		out := make([]models.CatalogItem, 0, len(category.Items))
		for _, it := range category.Items {
			if strings.Contains(strings.ToUpper(it.Name), frameType) {
				out = append(out, it)
			}
		}
		return out
	default:
		return category.Items
	}
}

// FrameTypeFor infers the burner frame type token from a burner name. QUAD
// and QUADRUPLE both map to QUADRUPLE. It returns "" when no type matches.
func FrameTypeFor(burnerName string) string {
	upper := strings.ToUpper(burnerName)
	switch {
	case strings.Contains(upper, "DOUBLE"):
		return "DOUBLE"
	case strings.Contains(upper, "TRIPLE"):
		return "TRIPLE"
	case strings.Contains(upper, "QUAD"):
		return "QUADRUPLE"
	default:
		return ""
	}
}

func keepNamed(items []models.CatalogItem, names []string) []models.CatalogItem {
	out := make([]models.CatalogItem, 0, len(names))
	for _, it := range items {
		if slices.Contains(names, it.Name) {
			out = append(out, it)
		}
	}
	return out
}
