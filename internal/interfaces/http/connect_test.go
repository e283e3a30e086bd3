package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fresco/internal/domain/workspace"
	"fresco/internal/infrastructure/bankfeed"
)

type mockTokenIssuer struct {
	TokenFunc func(ctx context.Context) (string, error)
}

func (m *mockTokenIssuer) Token(ctx context.Context) (string, error) {
	return m.TokenFunc(ctx)
}

type mockProvisioner struct {
	EnsureCustomerFunc func(ctx context.Context, workspaceID, token string) (string, error)
}

func (m *mockProvisioner) EnsureCustomer(ctx context.Context, workspaceID, token string) (string, error) {
	return m.EnsureCustomerFunc(ctx, workspaceID, token)
}

func postConnect(t *testing.T, handler *ConnectHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/bank/connect", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.HandleConnect(rr, req)
	return rr
}

func TestHandleConnect_Success(t *testing.T) {
	tokens := &mockTokenIssuer{
		TokenFunc: func(ctx context.Context) (string, error) { return "tok-abc", nil },
	}
	provisioner := &mockProvisioner{
		EnsureCustomerFunc: func(ctx context.Context, workspaceID, token string) (string, error) {
			if workspaceID != "ws-1" {
				t.Errorf("workspaceID = %q, want ws-1", workspaceID)
			}
			if token != "tok-abc" {
				t.Errorf("token = %q, want the issued token", token)
			}
			return "cust-9", nil
		},
	}

	rr := postConnect(t, NewConnectHandler(tokens, provisioner), `{"workspaceId":"ws-1"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp connectResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.CustomerID != "cust-9" {
		t.Errorf("customerId = %q, want cust-9", resp.CustomerID)
	}
	if resp.WorkspaceID != "ws-1" {
		t.Errorf("workspaceId = %q, want ws-1", resp.WorkspaceID)
	}
}

func TestHandleConnect_MissingWorkspaceID(t *testing.T) {
	handler := NewConnectHandler(&mockTokenIssuer{}, &mockProvisioner{})

	rr := postConnect(t, handler, `{}`)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestHandleConnect_CredentialsNotConfigured(t *testing.T) {
	tokens := &mockTokenIssuer{
		TokenFunc: func(ctx context.Context) (string, error) { return "", bankfeed.ErrMissingCredentials },
	}

	rr := postConnect(t, NewConnectHandler(tokens, &mockProvisioner{}), `{"workspaceId":"ws-1"}`)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestHandleConnect_WorkspaceNotFound(t *testing.T) {
	tokens := &mockTokenIssuer{
		TokenFunc: func(ctx context.Context) (string, error) { return "tok", nil },
	}
	provisioner := &mockProvisioner{
		EnsureCustomerFunc: func(ctx context.Context, workspaceID, token string) (string, error) {
			return "", workspace.ErrNotFound
		},
	}

	rr := postConnect(t, NewConnectHandler(tokens, provisioner), `{"workspaceId":"ghost"}`)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
