package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/balloon_quote/internal/configurator"
	"github.com/GTDGit/balloon_quote/internal/models"
	"github.com/GTDGit/balloon_quote/internal/utils"
)

// Static data files inside the data directory.
const (
	VendorsFile       = "vendors.json"
	CompatibilityFile = "compatibility-rules.json"
	KitsFile          = "predefined-kits.json"
)

// CatalogRepository serves the read-only vendor data: vendors, their
// catalogs, compatibility rules and predefined kits. Catalogs are read
// lazily and kept in memory for the life of the process.
type CatalogRepository struct {
	dir     string
	vendors map[string]models.Vendor
	rules   configurator.CompatibilityTable
	kits    map[string][]models.Kit

	mu       sync.RWMutex
	catalogs map[string]*models.Catalog
}

// NewCatalogRepository loads vendors, compatibility rules and kits from dir.
// The vendors file is required; missing or malformed rules and kits degrade
// to empty tables.
func NewCatalogRepository(dir string) (*CatalogRepository, error) {
	r := &CatalogRepository{
		dir:      dir,
		vendors:  map[string]models.Vendor{},
		rules:    configurator.CompatibilityTable{},
		kits:     map[string][]models.Kit{},
		catalogs: map[string]*models.Catalog{},
	}

	if err := readJSON(filepath.Join(dir, VendorsFile), &r.vendors); err != nil {
		return nil, fmt.Errorf("failed to load vendors: %w", err)
	}
	for id, v := range r.vendors {
		v.ID = id
		r.vendors[id] = v
	}

	if err := readJSON(filepath.Join(dir, CompatibilityFile), &r.rules); err != nil {
		log.Warn().Err(err).Msg("Compatibility rules unavailable - baskets and burners will not be selectable once an envelope is chosen")
		r.rules = configurator.CompatibilityTable{}
	}
	if err := readJSON(filepath.Join(dir, KitsFile), &r.kits); err != nil {
		log.Warn().Err(err).Msg("Predefined kits unavailable")
		r.kits = map[string][]models.Kit{}
	}

	log.Info().Int("vendors", len(r.vendors)).Int("rule_vendors", len(r.rules)).Msg("Vendor data loaded")
	return r, nil
}

// Vendors returns all vendors ordered by id.
func (r *CatalogRepository) Vendors() []models.Vendor {
	out := make([]models.Vendor, 0, len(r.vendors))
	for _, v := range r.vendors {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Vendor returns a vendor by id.
func (r *CatalogRepository) Vendor(id string) (models.Vendor, error) {
	v, ok := r.vendors[id]
	if !ok {
		return models.Vendor{}, utils.ErrVendorNotFound
	}
	return v, nil
}

// Catalog returns the catalog of a vendor, reading it on first use.
func (r *CatalogRepository) Catalog(vendorID string) (*models.Catalog, error) {
	r.mu.RLock()
	c, ok := r.catalogs[vendorID]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	v, err := r.Vendor(vendorID)
	if err != nil {
		return nil, err
	}

	var catalog models.Catalog
	if err := readJSON(filepath.Join(r.dir, v.CatalogFile), &catalog); err != nil {
		log.Error().Err(err).Str("vendor_id", vendorID).Str("file", v.CatalogFile).Msg("Failed to load catalog")
		return nil, fmt.Errorf("%w: %v", utils.ErrCatalogUnavailable, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.catalogs[vendorID]; ok {
		return existing, nil
	}
	r.catalogs[vendorID] = &catalog
	return &catalog, nil
}

// Compatibility returns the compatibility table of all vendors.
func (r *CatalogRepository) Compatibility() configurator.CompatibilityTable {
	return r.rules
}

// Kits returns the predefined kits of a vendor.
func (r *CatalogRepository) Kits(vendorID string) []models.Kit {
	kits := r.kits[vendorID]
	if kits == nil {
		return []models.Kit{}
	}
	return kits
}

// Kit returns one predefined kit of a vendor.
func (r *CatalogRepository) Kit(vendorID, kitID string) (models.Kit, error) {
	for _, k := range r.kits[vendorID] {
		if k.ID == kitID {
			return k, nil
		}
	}
	return models.Kit{}, utils.ErrKitNotFound
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("empty file")
	}
	return json.Unmarshal(data, dst)
}
