package repository

import (
	"context"

	"karmahub/internal/domain"
)

// ApplicationRepository defines operations for job applications
type ApplicationRepository interface {
	// Create returns repository.ErrAlreadyExists when the applicant already applied to the job
	Create(ctx context.Context, application *domain.JobApplication) error
	GetByID(ctx context.Context, applicationID string) (*domain.JobApplication, error)
	ListByJob(ctx context.Context, jobID string) ([]*domain.JobApplication, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]*domain.JobApplication, error)

	// Accept marks a pending (or already accepted) application of jobID as accepted
	Accept(ctx context.Context, applicationID, jobID string, now int64) error
	// Reject marks an application of jobID as rejected unless it was accepted
	Reject(ctx context.Context, applicationID, jobID string, now int64) error
}
