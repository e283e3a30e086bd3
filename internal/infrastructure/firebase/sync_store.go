package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"fresco/internal/domain/banking"
)

// SyncStore implements banking.Store on Firestore. Every mirror mutation
// flows through a single WriteBatch, Firestore's atomic multi-document
// write, so one reconciliation pass commits all-or-nothing.
type SyncStore struct {
	client *Client
}

var _ banking.Store = (*SyncStore)(nil)

// NewSyncStore creates a new sync store
func NewSyncStore(client *Client) *SyncStore {
	return &SyncStore{client: client}
}

// NewBatch opens an empty atomic write batch
func (s *SyncStore) NewBatch() banking.Batch {
	return &syncBatch{
		fs:    s.client.fs,
		batch: s.client.fs.Batch(),
	}
}

// ListAccountIDs returns the ids of all mirrored accounts for a workspace.
// Keys-only query: the diff needs ids, not documents.
func (s *SyncStore) ListAccountIDs(ctx context.Context, workspaceID string) ([]string, error) {
	iter := s.client.fs.Collection(bankAccountsCollection).
		Where("workspaceId", "==", workspaceID).
		Select().
		Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list account ids for workspace %s: %w", workspaceID, err)
		}
		ids = append(ids, doc.Ref.ID)
	}

	return ids, nil
}

type syncBatch struct {
	fs    *firestore.Client
	batch *firestore.WriteBatch
}

var _ banking.Batch = (*syncBatch)(nil)

// PutAccount stages a merge upsert. createdAt is written only for new
// records; merge semantics leave the stored value alone otherwise.
// TODO: split passes exceeding Firestore's 500-write batch ceiling.
func (b *syncBatch) PutAccount(acc *banking.Account, isNew bool) {
	ref := b.fs.Collection(bankAccountsCollection).Doc(acc.ID)

	data := map[string]interface{}{
		"id":           acc.ID,
		"workspaceId":  acc.WorkspaceID,
		"name":         acc.Name,
		"officialName": acc.OfficialName,
		"maskedNumber": acc.MaskedNumber,
		"type":         acc.Type,
		"subtype":      acc.Subtype,
		"balance":      acc.Balance,
		"provider":     acc.Provider,
		"updatedAt":    acc.UpdatedAt,
	}
	if isNew {
		data["createdAt"] = acc.CreatedAt
	}

	b.batch.Set(ref, data, firestore.MergeAll)
}

// DeleteAccount stages the removal of a mirrored account
func (b *syncBatch) DeleteAccount(id string) {
	b.batch.Delete(b.fs.Collection(bankAccountsCollection).Doc(id))
}

// PutTransaction stages an idempotent upsert keyed by the transaction id
func (b *syncBatch) PutTransaction(tx *banking.Transaction) {
	ref := b.fs.Collection(bankTransactionsCollection).Doc(tx.ID)

	b.batch.Set(ref, map[string]interface{}{
		"id":          tx.ID,
		"workspaceId": tx.WorkspaceID,
		"accountId":   tx.AccountID,
		"postedAt":    tx.PostedAt,
		"description": tx.Description,
		"amount":      tx.Amount,
		"currency":    tx.Currency,
		"createdAt":   tx.CreatedAt,
	}, firestore.MergeAll)
}

// Commit applies every staged write atomically
func (b *syncBatch) Commit(ctx context.Context) error {
	if _, err := b.batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit write batch: %w", err)
	}
	return nil
}
