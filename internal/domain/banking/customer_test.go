package banking

import (
	"context"
	"errors"
	"testing"

	"fresco/internal/domain/workspace"
)

func TestEnsureCustomerIdempotent(t *testing.T) {
	ctx := context.Background()

	repo := &MockWorkspaceRepo{
		Workspaces: map[string]*workspace.Workspace{
			"ws-1": {ID: "ws-1", OwnerEmail: "owner@example.com"},
		},
	}
	client := &MockClient{
		CreateCustomerFunc: func(ctx context.Context, token, username string) (string, error) {
			if username != "owner@example.com" {
				t.Errorf("username = %q, want owner email", username)
			}
			return "cust-42", nil
		},
	}

	provisioner := NewCustomerProvisioner(client, repo)

	first, err := provisioner.EnsureCustomer(ctx, "ws-1", "tok")
	if err != nil {
		t.Fatalf("EnsureCustomer() unexpected error: %v", err)
	}
	second, err := provisioner.EnsureCustomer(ctx, "ws-1", "tok")
	if err != nil {
		t.Fatalf("EnsureCustomer() unexpected error: %v", err)
	}

	if first != "cust-42" || second != "cust-42" {
		t.Errorf("customer ids = %q, %q, want cust-42 both times", first, second)
	}
	if client.CreateCustomerCalls != 1 {
		t.Errorf("CreateCustomer calls = %d, want 1", client.CreateCustomerCalls)
	}
	if repo.SetBankCustomerIDCalls != 1 {
		t.Errorf("SetBankCustomerID calls = %d, want 1", repo.SetBankCustomerIDCalls)
	}
}

func TestEnsureCustomerUsernameFallback(t *testing.T) {
	ctx := context.Background()

	repo := &MockWorkspaceRepo{
		Workspaces: map[string]*workspace.Workspace{
			"ws-2": {ID: "ws-2"}, // no owner email known
		},
	}

	var gotUsername string
	client := &MockClient{
		CreateCustomerFunc: func(ctx context.Context, token, username string) (string, error) {
			gotUsername = username
			return "cust-7", nil
		},
	}

	provisioner := NewCustomerProvisioner(client, repo)

	if _, err := provisioner.EnsureCustomer(ctx, "ws-2", "tok"); err != nil {
		t.Fatalf("EnsureCustomer() unexpected error: %v", err)
	}
	if gotUsername != "workspace-ws-2" {
		t.Errorf("username = %q, want workspace-ws-2", gotUsername)
	}
}

func TestEnsureCustomerMappingNotPersistedOnCreateFailure(t *testing.T) {
	ctx := context.Background()

	repo := &MockWorkspaceRepo{
		Workspaces: map[string]*workspace.Workspace{
			"ws-1": {ID: "ws-1", OwnerEmail: "owner@example.com"},
		},
	}
	client := &MockClient{
		CreateCustomerFunc: func(ctx context.Context, token, username string) (string, error) {
			return "", errors.New("aggregator rejected customer")
		},
	}

	provisioner := NewCustomerProvisioner(client, repo)

	if _, err := provisioner.EnsureCustomer(ctx, "ws-1", "tok"); err == nil {
		t.Fatal("EnsureCustomer() expected error, got nil")
	}
	if repo.SetBankCustomerIDCalls != 0 {
		t.Errorf("SetBankCustomerID calls = %d, want 0", repo.SetBankCustomerIDCalls)
	}
	if repo.Workspaces["ws-1"].BankCustomerID != "" {
		t.Error("mapping persisted despite creation failure")
	}
}
