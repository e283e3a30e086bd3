package firebase

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fresco/internal/domain/workspace"
)

// WorkspaceRepository implements workspace.Repository on Firestore
type WorkspaceRepository struct {
	client *Client
}

var _ workspace.Repository = (*WorkspaceRepository)(nil)

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(client *Client) *WorkspaceRepository {
	return &WorkspaceRepository{client: client}
}

// GetByID retrieves a workspace by its document id
func (r *WorkspaceRepository) GetByID(ctx context.Context, id string) (*workspace.Workspace, error) {
	doc, err := r.client.fs.Collection(workspacesCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, workspace.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get workspace %s: %w", id, err)
	}

	return docToWorkspace(doc)
}

// FindByBankCustomerID finds the workspace whose mapping matches the given
// aggregator customer id. At most one workspace carries any given mapping.
func (r *WorkspaceRepository) FindByBankCustomerID(ctx context.Context, customerID string) (*workspace.Workspace, error) {
	iter := r.client.fs.Collection(workspacesCollection).
		Where("bankCustomerId", "==", customerID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, workspace.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query workspace by customer id: %w", err)
	}

	return docToWorkspace(doc)
}

// SetBankCustomerID persists the customer mapping with a merge write so the
// rest of the workspace record is untouched.
func (r *WorkspaceRepository) SetBankCustomerID(ctx context.Context, workspaceID, customerID string) error {
	ref := r.client.fs.Collection(workspacesCollection).Doc(workspaceID)

	_, err := ref.Set(ctx, map[string]interface{}{
		"bankCustomerId": customerID,
		"bankLinked":     true,
		"updatedAt":      time.Now(),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to set customer mapping for workspace %s: %w", workspaceID, err)
	}

	return nil
}

// ListBankLinked lists every workspace with a bank customer mapping
func (r *WorkspaceRepository) ListBankLinked(ctx context.Context) ([]*workspace.Workspace, error) {
	iter := r.client.fs.Collection(workspacesCollection).
		Where("bankLinked", "==", true).
		Documents(ctx)
	defer iter.Stop()

	var out []*workspace.Workspace
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list bank-linked workspaces: %w", err)
		}

		ws, err := docToWorkspace(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, ws)
	}

	return out, nil
}

func docToWorkspace(doc *firestore.DocumentSnapshot) (*workspace.Workspace, error) {
	var ws workspace.Workspace
	if err := doc.DataTo(&ws); err != nil {
		return nil, fmt.Errorf("failed to decode workspace %s: %w", doc.Ref.ID, err)
	}
	ws.ID = doc.Ref.ID
	return &ws, nil
}
