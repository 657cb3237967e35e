package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/balloon_quote/internal/configurator"
	"github.com/GTDGit/balloon_quote/internal/models"
	"github.com/GTDGit/balloon_quote/internal/sse"
	"github.com/GTDGit/balloon_quote/internal/utils"
)

// CatalogSource provides the read-only vendor data.
type CatalogSource interface {
	Vendor(id string) (models.Vendor, error)
	Catalog(vendorID string) (*models.Catalog, error)
	Compatibility() configurator.CompatibilityTable
	Kit(vendorID, kitID string) (models.Kit, error)
}

// SaveScheduler debounces saves per key and runs the saves of one key one
// at a time.
type SaveScheduler interface {
	Schedule(key string, fn func())
	FlushKey(key string) bool
}

// Session is one operator's in-progress quotation. All access goes through
// the SessionService, which serializes mutations with the session lock.
type Session struct {
	ID         string
	OperatorID int

	mu           sync.Mutex
	vendor       models.Vendor
	catalog      *models.Catalog
	store        *configurator.SelectionStore
	discount     decimal.Decimal
	client       models.ClientDetails
	paymentTerms string
	number       string
	createdAt    time.Time
	lastActive   time.Time
}

// LineView is a selected line as shown to the operator.
type LineView struct {
	ItemID                   string           `json:"itemId"`
	Name                     string           `json:"name"`
	Category                 string           `json:"category"`
	Description              string           `json:"description"`
	Quantity                 int              `json:"quantity"`
	UnitPrice                decimal.Decimal  `json:"unitPrice"`
	LineTotal                decimal.Decimal  `json:"lineTotal"`
	CustomPrice              *decimal.Decimal `json:"customPrice,omitempty"`
	CustomDescription        *string          `json:"customDescription,omitempty"`
	ShowsQuantity            bool             `json:"showsQuantity"`
	AcceptsCustomPrice       bool             `json:"acceptsCustomPrice"`
	AcceptsCustomDescription bool             `json:"acceptsCustomDescription"`
}

// SessionView is the state of a session after an operation.
type SessionView struct {
	ID              string                 `json:"id"`
	QuotationNumber string                 `json:"quotationNumber,omitempty"`
	Vendor          models.Vendor          `json:"vendor"`
	Client          models.ClientDetails   `json:"client"`
	PaymentTerms    string                 `json:"paymentTerms"`
	Lines           []LineView             `json:"lines"`
	Totals          configurator.Breakdown `json:"totals"`
	TotalFormatted  string                 `json:"totalFormatted"`
	CreatedAt       time.Time              `json:"createdAt"`
	LastActive      time.Time              `json:"lastActive"`
}

// ItemView is a catalog item that can currently be chosen.
type ItemView struct {
	models.CatalogItem
	Selected      bool `json:"selected"`
	ShowsQuantity bool `json:"showsQuantity"`
}

// CategoryView is a catalog category with its selection behavior and the
// items the compatibility rules currently allow.
type CategoryView struct {
	Name     string                `json:"name"`
	Behavior configurator.Behavior `json:"behavior"`
	Items    []ItemView            `json:"items"`
}

// SelectInput is the payload of a selection.
type SelectInput struct {
	ItemID            string
	Quantity          int
	CustomPrice       *decimal.Decimal
	CustomDescription *string
}

// SessionService owns the configuration sessions and applies every
// operation to them.
type SessionService struct {
	catalogs     CatalogSource
	persistence  *PersistenceService
	saver        SaveScheduler
	notifier     sse.SessionNotifier
	paymentTerms string
	writeTimeout time.Duration
	now          func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionService constructs a SessionService.
func NewSessionService(
	catalogs CatalogSource,
	persistence *PersistenceService,
	saver SaveScheduler,
	notifier sse.SessionNotifier,
	paymentTerms string,
	writeTimeout time.Duration,
) *SessionService {
	if notifier == nil {
		notifier = sse.NopNotifier{}
	}
	return &SessionService{
		catalogs:     catalogs,
		persistence:  persistence,
		saver:        saver,
		notifier:     notifier,
		paymentTerms: paymentTerms,
		writeTimeout: writeTimeout,
		now:          time.Now,
		sessions:     make(map[string]*Session),
	}
}

// Start opens a session on the catalog of a vendor.
func (s *SessionService) Start(operatorID int, vendorID string) (*SessionView, error) {
	vendor, catalog, err := s.loadVendor(vendorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := &Session{
		ID:           uuid.NewString(),
		OperatorID:   operatorID,
		vendor:       vendor,
		catalog:      catalog,
		store:        configurator.NewSelectionStore(catalog),
		discount:     decimal.Zero,
		paymentTerms: s.paymentTerms,
		createdAt:    now,
		lastActive:   now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	log.Info().Str("session_id", sess.ID).Str("vendor_id", vendorID).Int("operator_id", operatorID).Msg("Session started")

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.view(sess), nil
}

// Authorize checks that a session exists and belongs to the operator.
func (s *SessionService) Authorize(id string, operatorID int) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	if sess.OperatorID != operatorID {
		log.Warn().Str("session_id", id).Int("operator_id", operatorID).Msg("Session owned by another operator")
		return utils.ErrSessionForbidden
	}
	return nil
}

// Get returns the current state of a session.
func (s *SessionService) Get(id string) (*SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.view(sess), nil
}

// Categories returns the catalog of a session with the items each category
// currently allows.
func (s *SessionService) Categories(id string) ([]CategoryView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	table := s.catalogs.Compatibility()
	out := make([]CategoryView, 0, len(sess.catalog.Categories))
	for i := range sess.catalog.Categories {
		cat := &sess.catalog.Categories[i]
		items := configurator.FilterSelectable(cat, sess.store, table, sess.vendor.ID)
		views := make([]ItemView, 0, len(items))
		for _, it := range items {
			_, selected := sess.store.Get(it.ID)
			views = append(views, ItemView{
				CatalogItem:   it,
				Selected:      selected,
				ShowsQuantity: configurator.ShowsQuantity(cat.Name, it.Name),
			})
		}
		out = append(out, CategoryView{
			Name:     cat.Name,
			Behavior: configurator.ResolveBehavior(cat.Name),
			Items:    views,
		})
	}
	return out, nil
}

// SetVendor switches the session to another vendor. The selection belongs
// to the previous catalog and is cleared.
func (s *SessionService) SetVendor(id, vendorID string) (*SessionView, error) {
	vendor, catalog, err := s.loadVendor(vendorID)
	if err != nil {
		return nil, err
	}
	return s.mutate(id, func(sess *Session) error {
		sess.vendor = vendor
		sess.catalog = catalog
		sess.store = configurator.NewSelectionStore(catalog)
		return nil
	})
}

// Select adds or updates a catalog item. The item must be allowed by the
// current selection.
func (s *SessionService) Select(id string, in SelectInput) (*SessionView, error) {
	return s.mutate(id, func(sess *Session) error {
		item, categoryName, ok := sess.catalog.FindItem(in.ItemID)
		if !ok {
			return utils.ErrItemNotFound
		}
		category, _ := sess.catalog.Category(categoryName)
		allowed := configurator.FilterSelectable(category, sess.store, s.catalogs.Compatibility(), sess.vendor.ID)
		if !slices.ContainsFunc(allowed, func(it models.CatalogItem) bool { return it.ID == item.ID }) {
			return utils.ErrItemNotSelectable
		}
		if in.CustomPrice != nil && !configurator.AcceptsCustomPrice(item.Name) {
			return utils.ErrNotCustomizable
		}
		if in.CustomDescription != nil && !configurator.AcceptsCustomDescription(item.Name) {
			return utils.ErrNotCustomizable
		}

		quantity := in.Quantity
		if quantity < 1 || !configurator.ShowsQuantity(categoryName, item.Name) {
			quantity = 1
		}
		customPrice := in.CustomPrice
		if customPrice != nil && customPrice.IsNegative() {
			zero := decimal.Zero
			customPrice = &zero
		}
		sess.store.Select(item, quantity, customPrice, in.CustomDescription)
		return nil
	})
}

// Remove deselects an item. Removing an item that is not selected is a
// no-op.
func (s *SessionService) Remove(id, itemID string) (*SessionView, error) {
	return s.mutate(id, func(sess *Session) error {
		sess.store.Remove(itemID)
		return nil
	})
}

// SetQuantity applies raw quantity input to a selected item. Items without
// a quantity input keep a quantity of one.
func (s *SessionService) SetQuantity(id, itemID, raw string) (*SessionView, error) {
	return s.mutate(id, func(sess *Session) error {
		entry, ok := sess.store.Get(itemID)
		if !ok {
			return utils.ErrItemNotSelected
		}
		if !configurator.ShowsQuantity(entry.Category, entry.Item.Name) {
			return utils.ErrFixedQuantity
		}
		_, err := sess.store.SetQuantity(itemID, raw)
		return storeError(err)
	})
}

// CommitQuantity reconciles a transient quantity below one to one.
func (s *SessionService) CommitQuantity(id, itemID string) (*SessionView, error) {
	return s.mutate(id, func(sess *Session) error {
		return storeError(sess.store.CommitQuantity(itemID))
	})
}

// SetCustomPrice applies raw price input to a variable-cost item.
func (s *SessionService) SetCustomPrice(id, itemID, raw string) (*SessionView, error) {
	return s.mutate(id, func(sess *Session) error {
		entry, ok := sess.store.Get(itemID)
		if !ok {
			return utils.ErrItemNotSelected
		}
		if !configurator.AcceptsCustomPrice(entry.Item.Name) {
			return utils.ErrNotCustomizable
		}
		_, err := sess.store.SetCustomPrice(itemID, raw)
		return storeError(err)
	})
}

// SetCustomDescription overrides the description of a variable-cost item.
func (s *SessionService) SetCustomDescription(id, itemID, text string) (*SessionView, error) {
	return s.mutate(id, func(sess *Session) error {
		entry, ok := sess.store.Get(itemID)
		if !ok {
			return utils.ErrItemNotSelected
		}
		if !configurator.AcceptsCustomDescription(entry.Item.Name) {
			return utils.ErrNotCustomizable
		}
		return storeError(sess.store.SetCustomDescription(itemID, text))
	})
}

// AddCustomItem adds an ad-hoc line that is not part of the catalog.
func (s *SessionService) AddCustomItem(id, name, description string, price decimal.Decimal) (*SessionView, error) {
	return s.mutate(id, func(sess *Session) error {
		sess.store.AddCustomItem(strings.TrimSpace(name), description, price)
		return nil
	})
}

// LoadKit replaces the selection with a predefined kit. It returns the kit
// components the catalog could not resolve.
func (s *SessionService) LoadKit(id, kitID string) (*SessionView, []string, error) {
	var missing []string
	view, err := s.mutate(id, func(sess *Session) error {
		kit, err := s.catalogs.Kit(sess.vendor.ID, kitID)
		if err != nil {
			return err
		}
		missing = sess.store.LoadKit(kit)
		if len(missing) > 0 {
			log.Warn().Str("session_id", sess.ID).Str("kit_id", kitID).Strs("missing", missing).Msg("Kit components not found in catalog")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return view, missing, nil
}

// SetDiscount applies raw discount input, clamped to [0, 100].
func (s *SessionService) SetDiscount(id, raw string) (*SessionView, error) {
	return s.mutate(id, func(sess *Session) error {
		sess.discount = configurator.ParseDiscount(raw)
		return nil
	})
}

// SetClient replaces the client contact details.
func (s *SessionService) SetClient(id string, client models.ClientDetails) (*SessionView, error) {
	return s.mutate(id, func(sess *Session) error {
		sess.client = client
		return nil
	})
}

// SetPaymentTerms replaces the payment terms text.
func (s *SessionService) SetPaymentTerms(id, terms string) (*SessionView, error) {
	return s.mutate(id, func(sess *Session) error {
		sess.paymentTerms = terms
		return nil
	})
}

// LoadQuotation replaces the session state with a saved quotation. The
// session takes over the quotation number so later saves update it.
func (s *SessionService) LoadQuotation(ctx context.Context, id, number string) (*SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	q, err := s.persistence.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	vendor, catalog, err := s.loadVendor(q.VendorID)
	if err != nil {
		return nil, err
	}

	// Edits made before the load belong to the previous quotation.
	s.saver.FlushKey(sess.ID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.vendor = vendor
	sess.catalog = catalog
	sess.store = configurator.Restore(*q, catalog)
	sess.discount = configurator.ClampDiscount(q.Discount)
	sess.client = q.ClientDetails
	if sess.client.Name == "" {
		sess.client.Name = q.ClientName
	}
	sess.paymentTerms = q.PaymentTerms
	if sess.paymentTerms == "" {
		sess.paymentTerms = s.paymentTerms
	}
	sess.number = q.QuotationNumber
	sess.lastActive = s.now()

	if dropped := len(q.Items) - sess.store.Len(); dropped > 0 {
		log.Warn().Str("quotation_number", number).Int("dropped", dropped).Msg("Quotation lines no longer in catalog")
	}
	log.Info().Str("session_id", sess.ID).Str("quotation_number", number).Msg("Quotation loaded")

	view := s.view(sess)
	s.notifier.NotifySessionUpdated(sess.OperatorID, sess.ID, sess.number, len(view.Lines), view.Totals.Total)
	return view, nil
}

// Snapshot returns the persistable quotation of a session along with its
// vendor. A session with no lines yields ErrEmptyQuotation.
func (s *SessionService) Snapshot(id string) (models.Quotation, models.Vendor, error) {
	sess, err := s.session(id)
	if err != nil {
		return models.Quotation{}, models.Vendor{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.store.Len() == 0 {
		return models.Quotation{}, models.Vendor{}, utils.ErrEmptyQuotation
	}
	s.ensureNumber(sess)
	return s.snapshot(sess), sess.vendor, nil
}

// Close ends a session, running its pending save first.
func (s *SessionService) Close(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return utils.ErrSessionNotFound
	}

	s.saver.FlushKey(id)
	log.Info().Str("session_id", id).Msg("Session closed")
	return nil
}

// SweepIdle closes sessions not used since cutoff and returns how many were
// closed.
func (s *SessionService) SweepIdle(cutoff time.Time) int {
	s.mu.RLock()
	var idle []string
	for id, sess := range s.sessions {
		sess.mu.Lock()
		if sess.lastActive.Before(cutoff) {
			idle = append(idle, id)
		}
		sess.mu.Unlock()
	}
	s.mu.RUnlock()

	closed := 0
	for _, id := range idle {
		if err := s.Close(id); err == nil {
			closed++
		}
	}
	return closed
}

// Count returns the number of open sessions.
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionService) session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, utils.ErrSessionNotFound
	}
	return sess, nil
}

func (s *SessionService) loadVendor(vendorID string) (models.Vendor, *models.Catalog, error) {
	vendor, err := s.catalogs.Vendor(vendorID)
	if err != nil {
		return models.Vendor{}, nil, err
	}
	catalog, err := s.catalogs.Catalog(vendorID)
	if err != nil {
		return models.Vendor{}, nil, err
	}
	return vendor, catalog, nil
}

// mutate applies fn under the session lock, then schedules a save and
// notifies listeners. A failing fn leaves nothing scheduled.
func (s *SessionService) mutate(id string, fn func(sess *Session) error) (*SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.lastActive = s.now()

	if sess.store.Len() > 0 {
		s.ensureNumber(sess)
		s.saver.Schedule(sess.ID, func() { s.saveNow(sess) })
	}

	view := s.view(sess)
	s.notifier.NotifySessionUpdated(sess.OperatorID, sess.ID, sess.number, len(view.Lines), view.Totals.Total)
	return view, nil
}

// saveNow persists the current state of the session. Empty sessions are
// not saved.
func (s *SessionService) saveNow(sess *Session) {
	sess.mu.Lock()
	if sess.store.Len() == 0 {
		sess.mu.Unlock()
		return
	}
	s.ensureNumber(sess)
	q := s.snapshot(sess)
	sess.mu.Unlock()

	ctx := context.Background()
	if s.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.writeTimeout)
		defer cancel()
	}
	if s.persistence.Save(ctx, &q) {
		s.notifier.NotifyQuotationSaved(sess.OperatorID, sess.ID, &q)
	}
}

func (s *SessionService) ensureNumber(sess *Session) {
	if sess.number == "" {
		sess.number = configurator.NewQuotationNumber(s.now())
	}
}

func (s *SessionService) snapshot(sess *Session) models.Quotation {
	return configurator.Snapshot(sess.store, configurator.Metadata{
		QuotationNumber: sess.number,
		Vendor:          sess.vendor,
		Client:          sess.client,
		Discount:        sess.discount,
		PaymentTerms:    sess.paymentTerms,
		Now:             s.now(),
	})
}

func (s *SessionService) view(sess *Session) *SessionView {
	entries := sess.store.Entries()
	lines := make([]LineView, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, LineView{
			ItemID:                   e.Item.ID,
			Name:                     e.Item.Name,
			Category:                 e.Category,
			Description:              e.Description(),
			Quantity:                 e.Quantity,
			UnitPrice:                e.UnitPrice(),
			LineTotal:                e.LineTotal(),
			CustomPrice:              e.CustomPrice,
			CustomDescription:        e.CustomDescription,
			ShowsQuantity:            configurator.ShowsQuantity(e.Category, e.Item.Name),
			AcceptsCustomPrice:       configurator.AcceptsCustomPrice(e.Item.Name),
			AcceptsCustomDescription: configurator.AcceptsCustomDescription(e.Item.Name),
		})
	}
	totals := configurator.Compute(entries, sess.discount)
	return &SessionView{
		ID:              sess.ID,
		QuotationNumber: sess.number,
		Vendor:          sess.vendor,
		Client:          sess.client,
		PaymentTerms:    sess.paymentTerms,
		Lines:           lines,
		Totals:          totals,
		TotalFormatted:  configurator.FormatEUR(totals.Total),
		CreatedAt:       sess.createdAt,
		LastActive:      sess.lastActive,
	}
}

func storeError(err error) error {
	if errors.Is(err, configurator.ErrNotSelected) {
		return utils.ErrItemNotSelected
	}
	return err
}
