package configurator

import "testing"

func TestResolveBehavior(t *testing.T) {
	tests := []struct {
		category string
		want     Behavior
	}{
		{"ENVELOPE", BehaviorSingle},
		{"envelope", BehaviorSingle},
		{"Basket", BehaviorSingle},
		{"BURNER", BehaviorSingle},
		{"Burner Frame", BehaviorSingle},
		{"FUELTANK", BehaviorMultiQty},
		{"Ancillary", BehaviorMultiQty},
		{"accessories", BehaviorMultiQty},
		{"Supplements", BehaviorMultiFixed},
		{"", BehaviorMultiFixed},
		{"BURNER FRAMES", BehaviorMultiFixed},
	}
	for _, tt := range tests {
		if got := ResolveBehavior(tt.category); got != tt.want {
			t.Errorf("ResolveBehavior(%q) = %s, want %s", tt.category, got, tt.want)
		}
	}
}

func TestNeedsQuantitySelector(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Inflation Fan 6.5HP", true},
		{"Fuel cylinder 40L", true},
		{"Stainless tank", true},
		{"Ventilador de inflado", true},
		{"Wicker basket", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := NeedsQuantitySelector(tt.name); got != tt.want {
			t.Errorf("NeedsQuantitySelector(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestShowsQuantityLayersItemOverride(t *testing.T) {
	if !ShowsQuantity("Supplements", "Spare fuel tank") {
		t.Fatal("item override should show quantity in a multi-fixed category")
	}
	if ResolveBehavior("Supplements") != BehaviorMultiFixed {
		t.Fatal("item override must not change category cardinality")
	}
	if !ShowsQuantity("ACCESSORIES", "Carabiner") {
		t.Fatal("multi-qty category should show quantity")
	}
	if ShowsQuantity("ENVELOPE", "Classic 77") {
		t.Fatal("single category without override should not show quantity")
	}
}

func TestCustomFieldClassifiers(t *testing.T) {
	if !AcceptsCustomPrice("Custom Artwork") || AcceptsCustomPrice("Hyperlast configuration") {
		t.Fatal("custom price applies to artwork only")
	}
	for _, n := range []string{"Artwork", "HYPERLAST CONFIGURATION A", "100% Hyperlast panel"} {
		if !AcceptsCustomDescription(n) {
			t.Errorf("AcceptsCustomDescription(%q) = false", n)
		}
	}
}
