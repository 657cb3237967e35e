package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/balloon_quote/internal/models"
	"github.com/GTDGit/balloon_quote/internal/repository"
	"github.com/GTDGit/balloon_quote/internal/service"
	"github.com/GTDGit/balloon_quote/internal/sse"
	"github.com/GTDGit/balloon_quote/internal/utils"
	"github.com/GTDGit/balloon_quote/internal/worker"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memStore struct {
	mu    sync.Mutex
	items map[string]models.Quotation
}

func newMemStore() *memStore {
	return &memStore{items: map[string]models.Quotation{}}
}

func (m *memStore) Upsert(_ context.Context, q *models.Quotation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[q.QuotationNumber] = *q
	return nil
}

func (m *memStore) Get(_ context.Context, number string) (*models.Quotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.items[number]
	if !ok {
		return nil, utils.ErrQuotationNotFound
	}
	return &q, nil
}

func (m *memStore) List(context.Context) ([]models.Quotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Quotation, 0, len(m.items))
	for _, q := range m.items {
		out = append(out, q)
	}
	return out, nil
}

func (m *memStore) Delete(_ context.Context, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[number]; !ok {
		return utils.ErrQuotationNotFound
	}
	delete(m.items, number)
	return nil
}

type testServer struct {
	router   *gin.Engine
	saver    *worker.SaveDebouncer
	remote   *memStore
	sessions *service.SessionService
}

func writeData(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		repository.VendorsFile: `{"pasha": {"name": "Pasha Balloons", "catalogFile": "pasha.json"}}`,
		"pasha.json": `{"categories": [
			{"name": "Envelope", "items": [{"id": "env-77", "name": "Classic 77", "price": 17500}]},
			{"name": "Basket", "items": [{"id": "bsk-s", "name": "Wicker S", "price": 4100}, {"id": "bsk-xl", "name": "Wicker XL", "price": 9800}]},
			{"name": "Burner", "items": [{"id": "brn-d", "name": "Double Burner P2", "price": 8200}]},
			{"name": "Ancillary", "items": [{"id": "anc-fan", "name": "Inflation Fan", "price": 1650}, {"id": "anc-art", "name": "Artwork", "price": 0}]}
		]}`,
		repository.CompatibilityFile: `{"pasha": {"Classic 77": {"baskets": ["Wicker S"], "burners": ["Double Burner P2"]}}}`,
		repository.KitsFile:          `{"pasha": [{"id": "starter", "name": "Starter", "envelope": "Classic 77", "basket": "Wicker S", "burner": "Double Burner P2"}]}`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	catalogs, err := repository.NewCatalogRepository(writeData(t))
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}

	local, remote := newMemStore(), newMemStore()
	persistence := service.NewPersistenceService(local, remote)
	saver := worker.NewSaveDebouncer(time.Hour)
	notifier := sse.NopNotifier{}
	sessions := service.NewSessionService(catalogs, persistence, saver, notifier, "50% deposit, 50% before delivery", time.Second)
	documents := service.NewDocumentService(30, nil)

	sh := NewSessionHandler(sessions, documents)
	qh := NewQuotationHandler(persistence, documents, catalogs, notifier)
	ch := NewCatalogHandler(catalogs)

	r := gin.New()
	v1 := r.Group("/v1")
	v1.GET("/vendors", ch.ListVendors)
	v1.GET("/vendors/:vendorId/catalog", ch.GetCatalog)
	v1.GET("/vendors/:vendorId/kits", ch.ListKits)

	s := v1.Group("/sessions")
	s.Use(sh.RequireOwner())
	s.POST("", sh.Create)
	s.GET("/:id", sh.Get)
	s.DELETE("/:id", sh.Close)
	s.GET("/:id/categories", sh.Categories)
	s.POST("/:id/selections", sh.Select)
	s.DELETE("/:id/selections/:itemId", sh.Remove)
	s.PUT("/:id/selections/:itemId/quantity", sh.SetQuantity)
	s.POST("/:id/selections/:itemId/commit", sh.CommitQuantity)
	s.PUT("/:id/selections/:itemId/price", sh.SetCustomPrice)
	s.POST("/:id/custom-items", sh.AddCustomItem)
	s.POST("/:id/kits/:kitId", sh.LoadKit)
	s.PUT("/:id/discount", sh.SetDiscount)
	s.PUT("/:id/client", sh.SetClient)
	s.POST("/:id/load/:number", sh.LoadQuotation)
	s.GET("/:id/document", sh.Document)

	q := v1.Group("/quotations")
	q.GET("", qh.List)
	q.GET("/:number", qh.Get)
	q.DELETE("/:number", qh.Delete)
	q.GET("/:number/document", qh.Document)

	return &testServer{router: r, saver: saver, remote: remote, sessions: sessions}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "application/pdf" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func decodeView(t *testing.T, env envelope) service.SessionView {
	t.Helper()
	var view service.SessionView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode view: %v (%s)", err, env.Data)
	}
	return view
}
