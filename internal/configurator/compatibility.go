package configurator

import "slices"

// CompatibilityRule lists the baskets and burners allowed with an envelope.
type CompatibilityRule struct {
	Baskets []string `json:"baskets"`
	Burners []string `json:"burners"`
}

// CompatibilityTable maps vendor id -> envelope name -> rule. It is loaded
// once and never mutated.
type CompatibilityTable map[string]map[string]CompatibilityRule

// Rule returns the rule for an envelope of a vendor.
func (t CompatibilityTable) Rule(vendorID, envelopeName string) (CompatibilityRule, bool) {
	vendorRules, ok := t[vendorID]
	if !ok {
		return CompatibilityRule{}, false
	}
	rule, ok := vendorRules[envelopeName]
	return rule, ok
}

// Baskets returns the basket names allowed with the envelope. A missing rule
// yields an empty list.
func (t CompatibilityTable) Baskets(vendorID, envelopeName string) []string {
	rule, _ := t.Rule(vendorID, envelopeName)
	return rule.Baskets
}

// Burners returns the burner names allowed with the envelope.
func (t CompatibilityTable) Burners(vendorID, envelopeName string) []string {
	rule, _ := t.Rule(vendorID, envelopeName)
	return rule.Burners
}

// IsBasketCompatible reports whether the basket may accompany the envelope.
func (t CompatibilityTable) IsBasketCompatible(vendorID, envelopeName, basketName string) bool {
	return slices.Contains(t.Baskets(vendorID, envelopeName), basketName)
}

// IsBurnerCompatible reports whether the burner may accompany the envelope.
func (t CompatibilityTable) IsBurnerCompatible(vendorID, envelopeName, burnerName string) bool {
	return slices.Contains(t.Burners(vendorID, envelopeName), burnerName)
}
