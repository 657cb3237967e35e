package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/balloon_quote/internal/configurator"
	"github.com/GTDGit/balloon_quote/internal/models"
	"github.com/GTDGit/balloon_quote/internal/utils"
)

func item(id, name string, price int64) models.CatalogItem {
	return models.CatalogItem{ID: id, Name: name, Description: name + " description", Price: decimal.NewFromInt(price)}
}

var testVendors = map[string]models.Vendor{
	"pasha": {ID: "pasha", Name: "Pasha Balloons", City: "Nevsehir"},
	"other": {ID: "other", Name: "Other Vendor"},
}

var testCatalogs = map[string]*models.Catalog{
	"pasha": {Categories: []models.CatalogCategory{
		{Name: "Envelope", Items: []models.CatalogItem{item("env-77", "Classic 77", 17500), item("env-105", "Classic 105", 24500)}},
		{Name: "Basket", Items: []models.CatalogItem{item("bsk-s", "Wicker S", 4100), item("bsk-xl", "Wicker XL", 9800)}},
		{Name: "Burner", Items: []models.CatalogItem{item("brn-d", "Double Burner P2", 8200), item("brn-q", "Quad Burner P4", 16900)}},
		{Name: "Burner Frame", Items: []models.CatalogItem{item("frm-d", "Frame DOUBLE", 900), item("frm-q", "Frame QUADRUPLE", 1700)}},
		{Name: "Ancillary", Items: []models.CatalogItem{item("anc-fan", "Inflation Fan", 1650), item("anc-art", "Artwork", 0)}},
		{Name: "Supplements", Items: []models.CatalogItem{item("sup-bag", "Envelope bag", 350)}},
	}},
	"other": {Categories: []models.CatalogCategory{
		{Name: "Envelope", Items: []models.CatalogItem{item("o-env", "Other Envelope", 1000)}},
	}},
}

type fakeCatalogs struct{}

func (fakeCatalogs) Vendor(id string) (models.Vendor, error) {
	v, ok := testVendors[id]
	if !ok {
		return models.Vendor{}, utils.ErrVendorNotFound
	}
	return v, nil
}

func (fakeCatalogs) Catalog(vendorID string) (*models.Catalog, error) {
	c, ok := testCatalogs[vendorID]
	if !ok {
		return nil, utils.ErrVendorNotFound
	}
	return c, nil
}

func (fakeCatalogs) Compatibility() configurator.CompatibilityTable {
	return configurator.CompatibilityTable{
		"pasha": {
			"Classic 77":  {Baskets: []string{"Wicker S"}, Burners: []string{"Double Burner P2"}},
			"Classic 105": {Baskets: []string{"Wicker XL"}, Burners: []string{"Double Burner P2", "Quad Burner P4"}},
		},
	}
}

func (fakeCatalogs) Kit(vendorID, kitID string) (models.Kit, error) {
	if vendorID == "pasha" && kitID == "tourist" {
		return models.Kit{ID: "tourist", Envelope: "Classic 105", Basket: "Wicker XL", Burner: "Quad Burner P4"}, nil
	}
	if vendorID == "pasha" && kitID == "broken" {
		return models.Kit{ID: "broken", Envelope: "Classic 77", Basket: "Wicker Gone", Burner: "Double Burner P2"}, nil
	}
	return models.Kit{}, utils.ErrKitNotFound
}

// memStore is an in-memory QuotationStore.
type memStore struct {
	mu      sync.Mutex
	items   map[string]models.Quotation
	err     error
	upserts int
}

func newMemStore() *memStore {
	return &memStore{items: map[string]models.Quotation{}}
}

func (m *memStore) Upsert(_ context.Context, q *models.Quotation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if m.err != nil {
		return m.err
	}
	m.items[q.QuotationNumber] = *q
	return nil
}

func (m *memStore) Get(_ context.Context, number string) (*models.Quotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	q, ok := m.items[number]
	if !ok {
		return nil, utils.ErrQuotationNotFound
	}
	return &q, nil
}

func (m *memStore) List(context.Context) ([]models.Quotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Quotation, 0, len(m.items))
	for _, q := range m.items {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *memStore) Delete(_ context.Context, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.items[number]; !ok {
		return utils.ErrQuotationNotFound
	}
	delete(m.items, number)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

var errStoreDown = errors.New("store down")

// manualSaver records scheduled saves and runs them on demand.
type manualSaver struct {
	mu      sync.Mutex
	pending map[string]func()
	total   int
}

func newManualSaver() *manualSaver {
	return &manualSaver{pending: map[string]func(){}}
}

func (s *manualSaver) Schedule(key string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[key] = fn
	s.total++
}

func (s *manualSaver) FlushKey(key string) bool {
	s.mu.Lock()
	fn, ok := s.pending[key]
	delete(s.pending, key)
	s.mu.Unlock()
	if ok {
		fn()
	}
	return ok
}

func (s *manualSaver) runAll() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.pending))
	for k, fn := range s.pending {
		fns = append(fns, fn)
		delete(s.pending, k)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *manualSaver) scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}
