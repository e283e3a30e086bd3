package banking

import (
	"context"
)

// Batch stages mirror writes for one reconciliation pass. All staged writes
// commit atomically or not at all: an observer must never see accounts
// deleted without their replacement set, nor transactions for an account
// that was deleted in the same pass.
type Batch interface {
	// PutAccount stages a merge upsert for an account. When isNew is false
	// the stored createdAt is left untouched.
	PutAccount(acc *Account, isNew bool)

	// DeleteAccount stages the removal of a mirrored account
	DeleteAccount(id string)

	// PutTransaction stages an idempotent upsert keyed by the transaction id
	PutTransaction(tx *Transaction)

	// Commit applies every staged write in one atomic operation
	Commit(ctx context.Context) error
}

// Store defines the interface the sync engine needs from the document store.
// This interface is defined in the domain layer, but implemented in the
// infrastructure layer. The batch returned by NewBatch is this subsystem's
// sole transaction boundary.
type Store interface {
	// NewBatch opens an empty atomic write batch
	NewBatch() Batch

	// ListAccountIDs returns the ids of all mirrored accounts for a workspace
	ListAccountIDs(ctx context.Context, workspaceID string) ([]string, error)
}
