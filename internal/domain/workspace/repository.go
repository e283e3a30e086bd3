package workspace

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no workspace matches the lookup.
var ErrNotFound = errors.New("workspace not found")

// Repository defines the interface for workspace data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// GetByID retrieves a workspace by its ID
	GetByID(ctx context.Context, id string) (*Workspace, error)

	// FindByBankCustomerID finds the single workspace whose stored bank
	// customer mapping matches the given aggregator customer id
	FindByBankCustomerID(ctx context.Context, customerID string) (*Workspace, error)

	// SetBankCustomerID persists the aggregator customer id onto the
	// workspace record with a merge write (never overwrites other fields)
	SetBankCustomerID(ctx context.Context, workspaceID, customerID string) error

	// ListBankLinked lists all workspaces with a bank customer mapping
	ListBankLinked(ctx context.Context) ([]*Workspace, error)
}
