package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
)

func startSession(t *testing.T, s *testServer) string {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/v1/sessions", map[string]string{"vendorId": "pasha"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: %d %s", w.Code, w.Body.String())
	}
	return decodeView(t, env).ID
}

func TestSessionHandler_CreateValidation(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/v1/sessions", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	w, env := s.do(t, http.MethodPost, "/v1/sessions", map[string]string{"vendorId": "nope"})
	if w.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != "VENDOR_NOT_FOUND" {
		t.Fatalf("expected VENDOR_NOT_FOUND, got %d %s", w.Code, w.Body.String())
	}
	w, _ = s.do(t, http.MethodGet, "/v1/sessions/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSessionHandler_OtherOperatorsSession(t *testing.T) {
	s := newTestServer(t)
	foreign, err := s.sessions.Start(9, "pasha")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	w, env := s.do(t, http.MethodGet, "/v1/sessions/"+foreign.ID, nil)
	if w.Code != http.StatusForbidden || env.Error == nil || env.Error.Code != "SESSION_FORBIDDEN" {
		t.Fatalf("expected SESSION_FORBIDDEN, got %d %s", w.Code, w.Body.String())
	}
	w, _ = s.do(t, http.MethodDelete, "/v1/sessions/"+foreign.ID, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on close, got %d", w.Code)
	}
	if s.sessions.Count() != 1 {
		t.Fatal("another operator's session must stay open")
	}
}

func TestSessionHandler_ConfigureAndPrice(t *testing.T) {
	s := newTestServer(t)
	id := startSession(t, s)
	base := "/v1/sessions/" + id

	w, _ := s.do(t, http.MethodPost, base+"/selections", map[string]any{"itemId": "env-77"})
	if w.Code != http.StatusOK {
		t.Fatalf("select envelope: %d %s", w.Code, w.Body.String())
	}

	w, env := s.do(t, http.MethodPost, base+"/selections", map[string]any{"itemId": "bsk-xl"})
	if w.Code != http.StatusConflict || env.Error.Code != "ITEM_NOT_SELECTABLE" {
		t.Fatalf("expected incompatible basket to be rejected, got %d %s", w.Code, w.Body.String())
	}

	s.do(t, http.MethodPost, base+"/selections", map[string]any{"itemId": "anc-fan", "quantity": 2})
	w, env = s.do(t, http.MethodPut, base+"/selections/anc-fan/quantity", map[string]any{"value": 3})
	if w.Code != http.StatusOK {
		t.Fatalf("set quantity: %d %s", w.Code, w.Body.String())
	}
	view := decodeView(t, env)
	if view.Lines[1].Quantity != 3 {
		t.Fatalf("quantity = %d", view.Lines[1].Quantity)
	}

	_, env = s.do(t, http.MethodPut, base+"/selections/anc-fan/quantity", map[string]any{"value": ""})
	if decodeView(t, env).Lines[1].Quantity != 0 {
		t.Fatal("empty quantity should be transient zero")
	}
	_, env = s.do(t, http.MethodPost, base+"/selections/anc-fan/commit", nil)
	if decodeView(t, env).Lines[1].Quantity != 1 {
		t.Fatal("commit should force quantity 1")
	}

	_, env = s.do(t, http.MethodPut, base+"/discount", map[string]any{"value": "10"})
	view = decodeView(t, env)
	// (17500 + 1650) * 0.9
	if !view.Totals.Total.Equal(decimal.RequireFromString("17235")) || view.TotalFormatted != "€17,235.00" {
		t.Fatalf("unexpected totals %+v %s", view.Totals, view.TotalFormatted)
	}

	w, env = s.do(t, http.MethodPut, base+"/selections/anc-fan/price", map[string]any{"value": "10"})
	if w.Code != http.StatusUnprocessableEntity || env.Error.Code != "ITEM_NOT_CUSTOMIZABLE" {
		t.Fatalf("expected fan price override to be rejected, got %d %s", w.Code, w.Body.String())
	}

	w, _ = s.do(t, http.MethodDelete, base+"/selections/anc-fan", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove: %d", w.Code)
	}
	w, _ = s.do(t, http.MethodDelete, base+"/selections/anc-fan", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove must be idempotent, got %d", w.Code)
	}
}

func TestSessionHandler_KitAndCategories(t *testing.T) {
	s := newTestServer(t)
	id := startSession(t, s)
	base := "/v1/sessions/" + id

	w, env := s.do(t, http.MethodPost, base+"/kits/starter", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("load kit: %d %s", w.Code, w.Body.String())
	}
	var kit struct {
		Missing []string `json:"missing"`
	}
	_ = json.Unmarshal(env.Data, &kit)
	if kit.Missing == nil || len(kit.Missing) != 0 {
		t.Fatalf("expected empty missing list, got %v", kit.Missing)
	}

	w, env = s.do(t, http.MethodGet, base+"/categories", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("categories: %d", w.Code)
	}
	var body struct {
		Categories []struct {
			Name  string `json:"name"`
			Items []struct {
				ID       string `json:"id"`
				Selected bool   `json:"selected"`
			} `json:"items"`
		} `json:"categories"`
	}
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatal(err)
	}
	for _, c := range body.Categories {
		if c.Name == "Basket" && (len(c.Items) != 1 || c.Items[0].ID != "bsk-s" || !c.Items[0].Selected) {
			t.Fatalf("unexpected basket category %+v", c)
		}
	}

	w, _ = s.do(t, http.MethodPost, base+"/kits/pro", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown kit, got %d", w.Code)
	}
}

func TestSessionHandler_SaveLoadAndDocument(t *testing.T) {
	s := newTestServer(t)
	id := startSession(t, s)
	base := "/v1/sessions/" + id

	w, _ := s.do(t, http.MethodGet, base+"/document", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected empty quotation to be rejected, got %d", w.Code)
	}

	s.do(t, http.MethodPut, base+"/client", map[string]string{"name": "Ana", "email": "ana@example.com"})
	_, env := s.do(t, http.MethodPost, base+"/custom-items", map[string]any{"name": "Transport", "price": 800})
	number := decodeView(t, env).QuotationNumber
	s.saver.Flush()

	if _, err := s.remote.Get(context.Background(), number); err != nil {
		t.Fatalf("expected quotation %s to be saved: %v", number, err)
	}

	w, _ = s.do(t, http.MethodGet, base+"/document", nil)
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("document: %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="Quotation_`+number+`.pdf"` {
		t.Errorf("unexpected disposition %q", got)
	}

	other := startSession(t, s)
	w, env = s.do(t, http.MethodPost, "/v1/sessions/"+other+"/load/"+number, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("load: %d %s", w.Code, w.Body.String())
	}
	view := decodeView(t, env)
	if view.QuotationNumber != number || len(view.Lines) != 1 || view.Client.Name != "Ana" {
		t.Fatalf("unexpected loaded view %+v", view)
	}

	w, _ = s.do(t, http.MethodPut, base+"/client", map[string]string{"email": "not-an-email"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad email, got %d", w.Code)
	}

	w, _ = s.do(t, http.MethodDelete, base, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("close: %d", w.Code)
	}
}
