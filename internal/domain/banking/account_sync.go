package banking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"fresco/internal/infrastructure/bankfeed"
)

// SyncResult contains the results of one reconciliation pass
type SyncResult struct {
	RunID         string
	WorkspaceID   string
	AccountsFound int
	Created       int
	Updated       int
	Deleted       int
}

// Reconciler performs full reconciliation passes: it diffs the remote
// account list against the local mirror and re-ingests transaction history,
// committing everything in a single atomic batch.
//
// Concurrent passes for the same workspace are not mutually excluded; each
// pass diffs a fresh snapshot and commits atomically, so the worst outcome
// of a race is a transient lost update, with the later commit winning.
type Reconciler struct {
	client      bankfeed.ClientInterface
	tokens      *TokenSource
	provisioner *CustomerProvisioner
	ingester    *TransactionIngester
	store       Store

	now func() time.Time // injectable clock for tests
}

// NewReconciler creates a new account reconciler
func NewReconciler(
	client bankfeed.ClientInterface,
	tokens *TokenSource,
	provisioner *CustomerProvisioner,
	ingester *TransactionIngester,
	store Store,
) *Reconciler {
	return &Reconciler{
		client:      client,
		tokens:      tokens,
		provisioner: provisioner,
		ingester:    ingester,
		store:       store,
		now:         time.Now,
	}
}

// SyncWorkspace runs one full reconciliation pass for a workspace.
//
// The remote account listing anchors the pass: if it fails, nothing is
// written. Accounts absent from the listing are deleted, every listed
// account is upserted (createdAt only when new, updatedAt always), and the
// transaction ingester adds its upserts to the same batch. The batch commits
// once; a failed commit leaves no partial state.
func (r *Reconciler) SyncWorkspace(ctx context.Context, workspaceID string) (*SyncResult, error) {
	result := &SyncResult{
		RunID:       uuid.NewString(),
		WorkspaceID: workspaceID,
	}

	token, err := r.tokens.Token(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to obtain aggregator token: %w", err)
	}

	customerID, err := r.provisioner.EnsureCustomer(ctx, workspaceID, token)
	if err != nil {
		return result, fmt.Errorf("failed to resolve aggregator customer: %w", err)
	}

	remote, err := r.client.GetCustomerAccounts(ctx, token, customerID)
	if err != nil {
		// Accounts are the anchor of the sync: without a fresh listing the
		// diff would delete accounts that still exist remotely.
		log.Printf("Workspace %s: Account listing failed, aborting pass %s: %v", workspaceID, result.RunID, err)
		return result, fmt.Errorf("failed to list remote accounts: %w", err)
	}
	result.AccountsFound = len(remote)

	localIDs, err := r.store.ListAccountIDs(ctx, workspaceID)
	if err != nil {
		return result, fmt.Errorf("failed to list mirrored accounts: %w", err)
	}

	remoteIDs := make(map[string]bool, len(remote))
	for i := range remote {
		remoteIDs[remote[i].ID.String()] = true
	}
	localSet := make(map[string]bool, len(localIDs))
	for _, id := range localIDs {
		localSet[id] = true
	}

	batch := r.store.NewBatch()
	now := r.now()

	for _, id := range localIDs {
		if !remoteIDs[id] {
			batch.DeleteAccount(id)
			result.Deleted++
		}
	}

	for i := range remote {
		isNew := !localSet[remote[i].ID.String()]
		batch.PutAccount(mapAccount(&remote[i], workspaceID, now), isNew)
		if isNew {
			result.Created++
		} else {
			result.Updated++
		}
	}

	r.ingester.Ingest(ctx, workspaceID, customerID, token, batch)

	if err := batch.Commit(ctx); err != nil {
		return result, fmt.Errorf("failed to commit sync batch: %w", err)
	}

	log.Printf("Workspace %s: Pass %s complete - Remote: %d, Created: %d, Updated: %d, Deleted: %d",
		workspaceID, result.RunID, result.AccountsFound, result.Created, result.Updated, result.Deleted)

	return result, nil
}

// mapAccount converts an aggregator account to the local mirror shape.
// CreatedAt is populated here but only written for new records.
func mapAccount(acc *bankfeed.Account, workspaceID string, now time.Time) *Account {
	return &Account{
		ID:           acc.ID.String(),
		WorkspaceID:  workspaceID,
		Name:         acc.Name,
		OfficialName: acc.OfficialName,
		MaskedNumber: acc.Number,
		Type:         acc.Type,
		Subtype:      acc.Subtype(),
		Balance:      acc.Balance,
		Provider:     ProviderName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
