package scheduler

import (
	"context"
	"fmt"
	"log"

	"fresco/internal/domain/banking"
	"fresco/internal/domain/workspace"
)

// WorkspaceSyncer runs a full reconciliation pass for one workspace.
type WorkspaceSyncer interface {
	SyncWorkspace(ctx context.Context, workspaceID string) (*banking.SyncResult, error)
}

// WorkspaceSyncJob implements the Job interface for a full workspace
// reconciliation pass.
type WorkspaceSyncJob struct {
	workspaceID string
	syncer      WorkspaceSyncer
}

// NewWorkspaceSyncJob creates a new sync job for a workspace
func NewWorkspaceSyncJob(workspaceID string, syncer WorkspaceSyncer) *WorkspaceSyncJob {
	return &WorkspaceSyncJob{
		workspaceID: workspaceID,
		syncer:      syncer,
	}
}

// Execute runs the reconciliation pass
func (j *WorkspaceSyncJob) Execute(ctx context.Context) error {
	result, err := j.syncer.SyncWorkspace(ctx, j.workspaceID)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	log.Printf("Workspace %s: Scheduled sync complete - Accounts: %d, Created: %d, Updated: %d, Deleted: %d",
		j.workspaceID, result.AccountsFound, result.Created, result.Updated, result.Deleted)

	return nil
}

// WorkspaceID returns the workspace this job operates on
func (j *WorkspaceSyncJob) WorkspaceID() string {
	return j.workspaceID
}

// Description returns a human-readable description of the job
func (j *WorkspaceSyncJob) Description() string {
	return fmt.Sprintf("Bank sync for workspace %s", j.workspaceID)
}

// NewLinkedWorkspaceJobProvider returns a job provider that enqueues one
// sync job for every workspace with a bank customer mapping.
func NewLinkedWorkspaceJobProvider(repo workspace.Repository, syncer WorkspaceSyncer) func(context.Context) ([]Job, error) {
	return func(ctx context.Context) ([]Job, error) {
		workspaces, err := repo.ListBankLinked(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list bank-linked workspaces: %w", err)
		}

		jobs := make([]Job, 0, len(workspaces))
		for _, ws := range workspaces {
			jobs = append(jobs, NewWorkspaceSyncJob(ws.ID, syncer))
		}

		return jobs, nil
	}
}
