package scheduler

import "context"

// Job represents a unit of work that can be executed by the worker pool.
type Job interface {
	// Execute runs the job with the given context.
	// Context should be respected for cancellation and timeouts.
	Execute(ctx context.Context) error

	// WorkspaceID returns the workspace this job operates on, for logging
	// and tracking.
	WorkspaceID() string

	// Description returns a human-readable description of the job.
	Description() string
}
