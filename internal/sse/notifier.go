package sse

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/balloon_quote/internal/models"
)

// SessionNotifier is the interface services use to emit session events.
type SessionNotifier interface {
	NotifySessionUpdated(operatorID int, sessionID, quotationNumber string, items int, total decimal.Decimal)
	NotifyQuotationSaved(operatorID int, sessionID string, q *models.Quotation)
	NotifyQuotationDeleted(number string)
}

// HubNotifier implements SessionNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifySessionUpdated(operatorID int, sessionID, quotationNumber string, items int, total decimal.Decimal) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&SessionEvent{
		Event:           EventSessionUpdated,
		OperatorID:      operatorID,
		SessionID:       sessionID,
		QuotationNumber: quotationNumber,
		Items:           items,
		Total:           total.String(),
		Timestamp:       time.Now(),
	})
}

func (n *HubNotifier) NotifyQuotationSaved(operatorID int, sessionID string, q *models.Quotation) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&SessionEvent{
		Event:           EventQuotationSaved,
		OperatorID:      operatorID,
		SessionID:       sessionID,
		QuotationNumber: q.QuotationNumber,
		Items:           len(q.Items),
		Total:           q.Total.String(),
		Timestamp:       time.Now(),
	})
}

func (n *HubNotifier) NotifyQuotationDeleted(number string) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&SessionEvent{
		Event:           EventQuotationDeleted,
		QuotationNumber: number,
		Timestamp:       time.Now(),
	})
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (NopNotifier) NotifySessionUpdated(int, string, string, int, decimal.Decimal) {}
func (NopNotifier) NotifyQuotationSaved(int, string, *models.Quotation)            {}
func (NopNotifier) NotifyQuotationDeleted(string)                                  {}
