package repository

import (
	"context"

	"karmahub/internal/domain"
)

// JobRepository defines operations for jobs. Conditional updates return
// repository.ErrConditionFailed when the stored job does not satisfy the predicate.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, jobID string) (*domain.Job, error)

	// Listings are ordered by created_at descending
	ListByStatus(ctx context.Context, status domain.JobStatus) ([]*domain.Job, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*domain.Job, error)

	// Assign moves an open job owned by creatorID to in_progress and sets the acceptance marker
	Assign(ctx context.Context, jobID, creatorID, applicantID, applicationID string, now int64) error
	// ClearAcceptanceMarker removes the marker if it still names applicationID
	ClearAcceptanceMarker(ctx context.Context, jobID, applicationID string, now int64) error
	// Complete moves an in_progress job assigned to assigneeID to completed; completed jobs pass unchanged
	Complete(ctx context.Context, jobID, assigneeID string, now int64) error
	// Cancel moves an open job owned by creatorID to cancelled
	Cancel(ctx context.Context, jobID, creatorID string, now int64) error

	// ListPendingAcceptances returns in_progress jobs whose marker was set at or before markedBefore
	ListPendingAcceptances(ctx context.Context, markedBefore int64) ([]*domain.Job, error)
}
