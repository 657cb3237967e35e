// Package configurator holds the selection rules of the balloon configurator:
// category behaviors, compatibility filtering, the selection store, pricing
// and quotation snapshots. It performs no I/O.
package configurator

import "strings"

// Behavior is the selection cardinality policy of a catalog category.
type Behavior string

const (
	// BehaviorSingle allows at most one selected item in the category.
	BehaviorSingle Behavior = "single"
	// BehaviorMultiQty allows many items, each with its own quantity.
	BehaviorMultiQty Behavior = "multi-qty"
	// BehaviorMultiFixed allows many items with a fixed quantity of one.
	BehaviorMultiFixed Behavior = "multi-fixed"
)

// Well-known category names.
const (
	CategoryEnvelope    = "ENVELOPE"
	CategoryBasket      = "BASKET"
	CategoryBurner      = "BURNER"
	CategoryBurnerFrame = "BURNER FRAME"
	CategoryFuelTank    = "FUELTANK"
	CategoryAncillary   = "ANCILLARY"
	CategoryAccessories = "ACCESSORIES"
	CategoryCustom      = "CUSTOM"
)

var singleCategories = map[string]bool{
	CategoryEnvelope:    true,
	CategoryBasket:      true,
	CategoryBurner:      true,
	CategoryBurnerFrame: true,
}

var quantityCategories = map[string]bool{
	CategoryFuelTank:    true,
	CategoryAncillary:   true,
	CategoryAccessories: true,
}

// quantityTokens mark items that always get a quantity input, whatever the
// behavior of their category. VENTILADOR is the Spanish catalog name for fans.
var quantityTokens = []string{"FAN", "FUEL", "TANK", "VENTILADOR"}

// ResolveBehavior classifies a category name. Unknown or empty names fall
// back to BehaviorMultiFixed.
func ResolveBehavior(categoryName string) Behavior {
	switch upper := normalizeCategory(categoryName); {
	case singleCategories[upper]:
		return BehaviorSingle
	case quantityCategories[upper]:
		return BehaviorMultiQty
	default:
		return BehaviorMultiFixed
	}
}

// NeedsQuantitySelector reports whether an item needs a quantity input
// regardless of its category. It does not change selection cardinality.
func NeedsQuantitySelector(itemName string) bool {
	upper := strings.ToUpper(itemName)
	for _, token := range quantityTokens {
		if strings.Contains(upper, token) {
			return true
		}
	}
	return false
}

// ShowsQuantity combines the category policy with the item-level override.
func ShowsQuantity(categoryName, itemName string) bool {
	return ResolveBehavior(categoryName) == BehaviorMultiQty || NeedsQuantitySelector(itemName)
}

// AcceptsCustomPrice reports whether the item is priced per order (artwork).
func AcceptsCustomPrice(itemName string) bool {
	return strings.Contains(strings.ToUpper(itemName), "ARTWORK")
}

// AcceptsCustomDescription reports whether the item description may be
// overridden per order.
func AcceptsCustomDescription(itemName string) bool {
	upper := strings.ToUpper(itemName)
	return strings.Contains(upper, "ARTWORK") ||
		strings.Contains(upper, "HYPERLAST CONFIGURATION") ||
		strings.Contains(upper, "100% HYPERLAST PANEL")
}

// normalizeCategory upper-cases and trims a catalog category name so it can
// be compared with the category constants.
func normalizeCategory(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
