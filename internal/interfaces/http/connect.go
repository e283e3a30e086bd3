package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"fresco/internal/domain/workspace"
	"fresco/internal/infrastructure/bankfeed"
)

// CustomerEnsurer provisions (or looks up) the aggregator customer for a
// workspace.
type CustomerEnsurer interface {
	EnsureCustomer(ctx context.Context, workspaceID, token string) (string, error)
}

// TokenIssuer hands out a valid partner access token.
type TokenIssuer interface {
	Token(ctx context.Context) (string, error)
}

// ConnectHandler is the UI-facing entry point for linking a workspace to
// its bank for the first time.
type ConnectHandler struct {
	tokens      TokenIssuer
	provisioner CustomerEnsurer
}

// NewConnectHandler creates a new connect handler
func NewConnectHandler(tokens TokenIssuer, provisioner CustomerEnsurer) *ConnectHandler {
	return &ConnectHandler{tokens: tokens, provisioner: provisioner}
}

type connectRequest struct {
	WorkspaceID string `json:"workspaceId"`
}

type connectResponse struct {
	WorkspaceID string `json:"workspaceId"`
	CustomerID  string `json:"customerId"`
}

// HandleConnect processes POST /api/bank/connect
func (h *ConnectHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.WorkspaceID == "" {
		http.Error(w, "workspaceId is required", http.StatusBadRequest)
		return
	}

	token, err := h.tokens.Token(r.Context())
	if err != nil {
		if errors.Is(err, bankfeed.ErrMissingCredentials) {
			log.Printf("Workspace %s: connect refused, aggregator credentials not configured", req.WorkspaceID)
			http.Error(w, "Bank aggregation is not configured", http.StatusServiceUnavailable)
			return
		}
		log.Printf("Workspace %s: connect token request failed: %v", req.WorkspaceID, err)
		http.Error(w, "Failed to authenticate with aggregator", http.StatusBadGateway)
		return
	}

	customerID, err := h.provisioner.EnsureCustomer(r.Context(), req.WorkspaceID, token)
	if err != nil {
		if errors.Is(err, workspace.ErrNotFound) {
			http.Error(w, "Workspace not found", http.StatusNotFound)
			return
		}
		log.Printf("Workspace %s: customer provisioning failed: %v", req.WorkspaceID, err)
		http.Error(w, "Failed to provision customer", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(connectResponse{
		WorkspaceID: req.WorkspaceID,
		CustomerID:  customerID,
	})
}
