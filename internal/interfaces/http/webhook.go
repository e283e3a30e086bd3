package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"fresco/internal/domain/banking"
	"fresco/internal/domain/workspace"
	"fresco/internal/infrastructure/bankfeed"
)

// WorkspaceSyncer runs a full reconciliation pass for one workspace.
type WorkspaceSyncer interface {
	SyncWorkspace(ctx context.Context, workspaceID string) (*banking.SyncResult, error)
}

// WebhookHandler receives aggregator event notifications and turns them
// into synchronous reconciliation passes.
type WebhookHandler struct {
	syncer     WorkspaceSyncer
	workspaces workspace.Repository
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(syncer WorkspaceSyncer, workspaces workspace.Repository) *WebhookHandler {
	return &WebhookHandler{syncer: syncer, workspaces: workspaces}
}

// webhookPayload is the subset of the aggregator event body we act on.
// Event types are ignored: every notification means "resync this customer".
type webhookPayload struct {
	CustomerID bankfeed.FlexID `json:"customerId"`
	EventType  string          `json:"eventType"`
}

// HandleBankEvent processes POST /api/webhooks/bank
func (h *WebhookHandler) HandleBankEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// A panicking sync pass must not take the server down; the aggregator
	// retries on 5xx.
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Webhook: panic during sync: %v", rec)
			http.Error(w, "Sync failed", http.StatusInternalServerError)
		}
	}()

	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Printf("Webhook: unreadable payload: %v", err)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	customerID := string(payload.CustomerID)
	if customerID == "" {
		// Lifecycle noise (ping, created, discovery events) carries no
		// customer id; acknowledge and move on.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ws, err := h.workspaces.FindByBankCustomerID(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, workspace.ErrNotFound) {
			log.Printf("Webhook: no workspace for customer %s", customerID)
			http.Error(w, "Unknown customer", http.StatusNotFound)
			return
		}
		log.Printf("Webhook: workspace lookup failed for customer %s: %v", customerID, err)
		http.Error(w, "Sync failed", http.StatusInternalServerError)
		return
	}

	result, err := h.syncer.SyncWorkspace(r.Context(), ws.ID)
	if err != nil {
		log.Printf("Workspace %s: webhook sync failed: %v", ws.ID, err)
		http.Error(w, "Sync failed", http.StatusInternalServerError)
		return
	}

	log.Printf("Workspace %s: webhook sync done (event=%s, accounts=%d, created=%d, updated=%d, deleted=%d)",
		ws.ID, payload.EventType, result.AccountsFound, result.Created, result.Updated, result.Deleted)
	w.WriteHeader(http.StatusNoContent)
}
