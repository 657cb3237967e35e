package sse

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/balloon_quote/internal/models"
)

func receive(t *testing.T, c *Client) *SessionEvent {
	t.Helper()
	select {
	case data := <-c.Events:
		var ev SessionEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		return &ev
	default:
		return nil
	}
}

func TestHub_RoutesBySession(t *testing.T) {
	hub := NewHub()
	a := hub.Register("c1", "session-a", 7)
	b := hub.Register("c2", "session-b", 7)
	all := hub.Register("c3", "", 7)

	n := NewHubNotifier(hub)
	n.NotifySessionUpdated(7, "session-a", "2026-123", 2, decimal.NewFromInt(8500))

	ev := receive(t, a)
	if ev == nil || ev.Event != EventSessionUpdated || ev.Total != "8500" || ev.Items != 2 {
		t.Fatalf("unexpected event for session-a: %+v", ev)
	}
	if ev := receive(t, b); ev != nil {
		t.Fatalf("session-b should not receive session-a events: %+v", ev)
	}
	if ev := receive(t, all); ev == nil {
		t.Fatal("unscoped client should receive every event")
	}
}

func TestHub_ScopesEventsToOperator(t *testing.T) {
	hub := NewHub()
	own := hub.Register("c1", "", 7)
	other := hub.Register("c2", "", 8)
	n := NewHubNotifier(hub)

	n.NotifySessionUpdated(7, "session-a", "2026-123", 1, decimal.NewFromInt(100))
	if ev := receive(t, own); ev == nil || ev.SessionID != "session-a" {
		t.Fatalf("owner should receive its session events: %+v", ev)
	}
	if ev := receive(t, other); ev != nil {
		t.Fatalf("another operator must not receive the event: %+v", ev)
	}

	n.NotifyQuotationDeleted("2026-123")
	if receive(t, own) == nil || receive(t, other) == nil {
		t.Fatal("deletions of saved quotations reach every operator")
	}
}

func TestHub_QuotationEvents(t *testing.T) {
	hub := NewHub()
	all := hub.Register("c1", "", 7)
	n := NewHubNotifier(hub)

	n.NotifyQuotationSaved(7, "session-a", &models.Quotation{QuotationNumber: "2026-321", Total: decimal.NewFromInt(10)})
	if ev := receive(t, all); ev == nil || ev.Event != EventQuotationSaved || ev.QuotationNumber != "2026-321" {
		t.Fatalf("unexpected saved event: %+v", ev)
	}

	n.NotifyQuotationDeleted("2026-321")
	if ev := receive(t, all); ev == nil || ev.Event != EventQuotationDeleted {
		t.Fatalf("unexpected deleted event: %+v", ev)
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()
	c := hub.Register("c1", "", 7)
	hub.Unregister("c1")
	hub.Unregister("c1")

	if hub.ClientCount() != 0 {
		t.Fatalf("expected no clients, got %d", hub.ClientCount())
	}
	if _, ok := <-c.Events; ok {
		t.Fatal("expected closed channel")
	}
}

func TestHub_DropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	c := hub.Register("c1", "", 7)
	for i := 0; i < cap(c.Events)+10; i++ {
		hub.Broadcast(&SessionEvent{Event: EventSessionUpdated})
	}
	if len(c.Events) != cap(c.Events) {
		t.Fatalf("expected a full buffer, got %d", len(c.Events))
	}
}
