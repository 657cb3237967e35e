package configurator

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/balloon_quote/internal/models"
)

// ErrNotSelected is returned when a mutation targets an item that has no
// entry in the store.
var ErrNotSelected = errors.New("item is not selected")

// Entry is the chosen state of one item.
type Entry struct {
	Item              models.CatalogItem
	Category          string
	Quantity          int
	CustomPrice       *decimal.Decimal
	CustomDescription *string
}

// UnitPrice is the custom price when set, the catalog price otherwise.
func (e Entry) UnitPrice() decimal.Decimal {
	if e.CustomPrice != nil {
		return *e.CustomPrice
	}
	return e.Item.Price
}

// LineTotal is the unit price times the quantity.
func (e Entry) LineTotal() decimal.Decimal {
	return e.UnitPrice().Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Description is the custom description when set, the catalog one otherwise.
func (e Entry) Description() string {
	if e.CustomDescription != nil {
		return *e.CustomDescription
	}
	return e.Item.Description
}

// SelectionStore maps item ids to entries for one configuration session. An
// item is selected if and only if it has an entry. Entries keep insertion
// order for rendering. A store is not safe for concurrent use.
type SelectionStore struct {
	catalog *models.Catalog
	entries map[string]*Entry
	order   []string
}

// NewSelectionStore returns an empty store bound to a catalog. The catalog
// is used to derive item categories.
func NewSelectionStore(catalog *models.Catalog) *SelectionStore {
	return &SelectionStore{
		catalog: catalog,
		entries: make(map[string]*Entry),
	}
}

// Catalog returns the catalog the store resolves categories against.
func (s *SelectionStore) Catalog() *models.Catalog {
	return s.catalog
}

// categoryOf joins the item against the catalog. Items that are not part of
// the catalog (custom lines) keep the category they were created with.
func (s *SelectionStore) categoryOf(item models.CatalogItem) string {
	if _, name, ok := s.catalog.FindItem(item.ID); ok {
		return name
	}
	return item.Category
}

// Select upserts the entry for item.ID. For single-behavior categories every
// other entry of the same category is removed first.
func (s *SelectionStore) Select(item models.CatalogItem, quantity int, customPrice *decimal.Decimal, customDescription *string) Entry {
	category := s.categoryOf(item)
	if ResolveBehavior(category) == BehaviorSingle {
		for _, id := range slices.Clone(s.order) {
			if id != item.ID && normalizeCategory(s.entries[id].Category) == normalizeCategory(category) {
				s.Remove(id)
			}
		}
	}
	if quantity < 0 {
		quantity = 0
	}

	entry := &Entry{
		Item:              item,
		Category:          category,
		Quantity:          quantity,
		CustomPrice:       customPrice,
		CustomDescription: customDescription,
	}
	s.put(entry)
	return *entry
}

func (s *SelectionStore) put(entry *Entry) {
	if _, exists := s.entries[entry.Item.ID]; !exists {
		s.order = append(s.order, entry.Item.ID)
	}
	s.entries[entry.Item.ID] = entry
}

// Remove deletes an entry. Removing an absent item is a no-op.
func (s *SelectionStore) Remove(itemID string) bool {
	if _, ok := s.entries[itemID]; !ok {
		return false
	}
	delete(s.entries, itemID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == itemID })
	return true
}

// Clear removes every entry.
func (s *SelectionStore) Clear() {
	s.entries = make(map[string]*Entry)
	s.order = nil
}

// Get returns a copy of the entry for an item.
func (s *SelectionStore) Get(itemID string) (Entry, bool) {
	e, ok := s.entries[itemID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len returns the number of selected items.
func (s *SelectionStore) Len() int {
	return len(s.entries)
}

// Entries returns copies of all entries in insertion order.
func (s *SelectionStore) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.entries[id])
	}
	return out
}

// SelectedName returns the name of the first selected item that belongs to
// the named catalog category.
func (s *SelectionStore) SelectedName(category string) (string, bool) {
	cat, ok := s.catalog.Category(category)
	if !ok {
		return "", false
	}
	for _, id := range s.order {
		for _, it := range cat.Items {
			if it.ID == id {
				return it.Name, true
			}
		}
	}
	return "", false
}

// SetQuantity applies raw quantity input. An empty value stores the
// transient quantity 0, unparseable input leaves the entry unchanged.
func (s *SelectionStore) SetQuantity(itemID, raw string) (bool, error) {
	e, ok := s.entries[itemID]
	if !ok {
		return false, ErrNotSelected
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		e.Quantity = 0
		return true, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return false, nil
	}
	e.Quantity = max(n, 0)
	return true, nil
}

// CommitQuantity reconciles a quantity below one to one. It runs when the
// quantity input is committed (blur).
func (s *SelectionStore) CommitQuantity(itemID string) error {
	e, ok := s.entries[itemID]
	if !ok {
		return ErrNotSelected
	}
	if e.Quantity < 1 {
		e.Quantity = 1
	}
	return nil
}

// SetCustomPrice applies raw price input. An empty value is a zero price,
// unparseable input leaves the entry unchanged.
func (s *SelectionStore) SetCustomPrice(itemID, raw string) (bool, error) {
	e, ok := s.entries[itemID]
	if !ok {
		return false, ErrNotSelected
	}
	raw = strings.TrimSpace(raw)
	price := decimal.Zero
	if raw != "" {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			return false, nil
		}
		if p.IsPositive() {
			price = p
		}
	}
	e.CustomPrice = &price
	return true, nil
}

// SetCustomDescription overrides the catalog description of an entry.
func (s *SelectionStore) SetCustomDescription(itemID, text string) error {
	e, ok := s.entries[itemID]
	if !ok {
		return ErrNotSelected
	}
	e.CustomDescription = &text
	return nil
}

// AddCustomItem synthesizes a non-catalog line and selects it with
// quantity one.
func (s *SelectionStore) AddCustomItem(name, description string, price decimal.Decimal) Entry {
	if price.IsNegative() {
		price = decimal.Zero
	}
	item := models.CatalogItem{
		ID:          "custom_" + uuid.NewString(),
		Name:        name,
		Description: description,
		Price:       price,
		Category:    CategoryCustom,
	}
	return s.Select(item, 1, nil, nil)
}

// LoadKit replaces the whole selection with the kit's envelope, basket and
// burner, applied in that order. It returns the kit names that could not be
// resolved in the catalog.
func (s *SelectionStore) LoadKit(kit models.Kit) []string {
	s.Clear()

	var missing []string
	steps := []struct{ category, name string }{
		{CategoryEnvelope, kit.Envelope},
		{CategoryBasket, kit.Basket},
		{CategoryBurner, kit.Burner},
	}
	for _, step := range steps {
		item, ok := s.catalog.FindByName(step.category, step.name)
		if !ok {
			missing = append(missing, step.name)
			continue
		}
		s.Select(item, 1, nil, nil)
	}
	return missing
}
