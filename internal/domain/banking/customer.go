package banking

import (
	"context"
	"fmt"
	"log"

	"fresco/internal/domain/workspace"
	"fresco/internal/infrastructure/bankfeed"
)

// CustomerProvisioner maps a workspace to an aggregator customer record,
// creating one on first use. The persisted mapping on the workspace record
// is the source of truth for idempotency: repeated calls never create
// duplicate remote customers.
type CustomerProvisioner struct {
	client        bankfeed.ClientInterface
	workspaceRepo workspace.Repository
}

// NewCustomerProvisioner creates a new customer provisioner
func NewCustomerProvisioner(client bankfeed.ClientInterface, workspaceRepo workspace.Repository) *CustomerProvisioner {
	return &CustomerProvisioner{
		client:        client,
		workspaceRepo: workspaceRepo,
	}
}

// EnsureCustomer returns the aggregator customer id for a workspace,
// creating and persisting one if the workspace has never been connected.
// When the mapping already exists no network call is made.
func (p *CustomerProvisioner) EnsureCustomer(ctx context.Context, workspaceID, token string) (string, error) {
	ws, err := p.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return "", fmt.Errorf("failed to get workspace %s: %w", workspaceID, err)
	}

	if ws.BankCustomerID != "" {
		return ws.BankCustomerID, nil
	}

	customerID, err := p.client.CreateCustomer(ctx, token, ws.Username())
	if err != nil {
		return "", fmt.Errorf("failed to create aggregator customer for workspace %s: %w", workspaceID, err)
	}

	if err := p.workspaceRepo.SetBankCustomerID(ctx, workspaceID, customerID); err != nil {
		return "", fmt.Errorf("failed to persist customer mapping for workspace %s: %w", workspaceID, err)
	}

	log.Printf("Workspace %s: Provisioned aggregator customer %s", workspaceID, customerID)

	return customerID, nil
}
