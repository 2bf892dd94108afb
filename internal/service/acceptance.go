package service

import (
	"context"
	"fmt"

	"karmahub/internal/domain"
	"karmahub/internal/logger"
	"karmahub/internal/metrics"
	"karmahub/internal/repository"
)

// AcceptanceResult is the end state of a finished acceptance
type AcceptanceResult struct {
	Job         *domain.Job            `json:"job"`
	Application *domain.JobApplication `json:"application"`
	Ticket      *domain.JobTicket      `json:"ticket"`
}

type acceptanceStep struct {
	name string
	run  func(ctx context.Context) error
}

// AcceptApplication assigns the job to the applicant and then runs the
// remaining acceptance steps. Once the job is assigned, any later failure is
// returned as a *domain.PartialAcceptanceError and can be resumed.
func (e *lifecycleEngine) AcceptApplication(ctx context.Context, actorID, jobID, applicationID, applicantID string) (result *AcceptanceResult, err error) {
	defer observe("accept_application", &err)

	if actorID == "" {
		return nil, domain.ErrAuthentication
	}
	if applicationID == "" || applicantID == "" {
		return nil, domain.ValidationError("application_id and applicant_id are required")
	}

	job, err := loadJob(ctx, e.stores.Jobs, e.logger, jobID)
	if err != nil {
		return nil, err
	}
	if job.CreatorID != actorID {
		return nil, domain.AuthorizationError("job %s belongs to another user", jobID)
	}
	if job.Status != domain.JobStatusOpen {
		return nil, domain.StateConflictError("job %s is %s", jobID, job.Status)
	}

	application, err := e.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if application.JobID != jobID {
		return nil, domain.ValidationError("application %s does not belong to job %s", applicationID, jobID)
	}
	if application.ApplicantID != applicantID {
		return nil, domain.ValidationError("application %s was not submitted by %s", applicationID, applicantID)
	}
	if application.Status != domain.ApplicationStatusPending {
		return nil, domain.StateConflictError("application %s is %s", applicationID, application.Status)
	}

	// the store predicate re-checks owner and status, so a concurrent accept fails here
	now := nowMillis()
	if err := e.stores.Jobs.Assign(ctx, jobID, actorID, applicantID, applicationID, now); err != nil {
		if repository.IsConditionFailedError(err) {
			return nil, e.classifyJobConflict(ctx, actorID, jobID)
		}
		return nil, storeFailure(ctx, e.logger, "assign_job", err)
	}

	job.Status = domain.JobStatusInProgress
	job.AssignedTo = applicantID
	job.PendingAcceptanceID = applicationID
	job.PendingAcceptanceAt = now
	job.UpdatedAt = now

	return e.finishAcceptance(ctx, job, application)
}

// ResumeAcceptance re-runs the steps after assignment for a job whose
// acceptance marker is still set. Every step is idempotent.
func (e *lifecycleEngine) ResumeAcceptance(ctx context.Context, actorID, jobID string) (result *AcceptanceResult, err error) {
	defer observe("resume_acceptance", &err)

	if actorID == "" {
		return nil, domain.ErrAuthentication
	}

	job, err := loadJob(ctx, e.stores.Jobs, e.logger, jobID)
	if err != nil {
		return nil, err
	}
	if job.CreatorID != actorID {
		return nil, domain.AuthorizationError("job %s belongs to another user", jobID)
	}
	if !job.HasPendingAcceptance() {
		return nil, domain.StateConflictError("job %s has no pending acceptance", jobID)
	}

	application, err := e.stores.Applications.GetByID(ctx, job.PendingAcceptanceID)
	if err != nil {
		return nil, e.partialAcceptance(ctx, job, job.PendingAcceptanceID, domain.StepAcceptApplication, err)
	}

	e.logger.WithContext(ctx).Info("resuming acceptance",
		logger.String("job_id", jobID),
		logger.String("application_id", application.ApplicationID))

	return e.finishAcceptance(ctx, job, application)
}

// finishAcceptance runs the steps after assign_job in order, stopping at the first failure
func (e *lifecycleEngine) finishAcceptance(ctx context.Context, job *domain.Job, application *domain.JobApplication) (*AcceptanceResult, error) {
	jobID := job.JobID
	applicationID := application.ApplicationID
	applicantID := job.AssignedTo
	now := nowMillis()

	var ticket *domain.JobTicket

	steps := []acceptanceStep{
		{
			name: domain.StepAcceptApplication,
			run: func(ctx context.Context) error {
				return e.stores.Applications.Accept(ctx, applicationID, jobID, now)
			},
		},
		{
			name: domain.StepRejectSiblings,
			run: func(ctx context.Context) error {
				return e.rejectSiblings(ctx, jobID, applicationID, now)
			},
		},
		{
			name: domain.StepOpenTicket,
			run: func(ctx context.Context) error {
				var err error
				ticket, err = e.openTicket(ctx, jobID, applicationID, applicantID)
				return err
			},
		},
		{
			name: domain.StepClearMarker,
			run: func(ctx context.Context) error {
				return e.stores.Jobs.ClearAcceptanceMarker(ctx, jobID, applicationID, now)
			},
		},
	}

	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			return nil, e.partialAcceptance(ctx, job, applicationID, step.name, err)
		}
	}

	application.Status = domain.ApplicationStatusAccepted
	application.UpdatedAt = now
	job.PendingAcceptanceID = ""
	job.PendingAcceptanceAt = 0
	job.UpdatedAt = now

	e.logger.WithContext(ctx).Info("application accepted",
		logger.String("job_id", jobID),
		logger.String("application_id", applicationID),
		logger.String("ticket_id", ticket.TicketID))

	return &AcceptanceResult{
		Job:         job,
		Application: application,
		Ticket:      ticket,
	}, nil
}

// rejectSiblings rejects every other application of the job that is not rejected yet
func (e *lifecycleEngine) rejectSiblings(ctx context.Context, jobID, acceptedID string, now int64) error {
	// the job index is eventually consistent; an application landing just before this read stays pending
	applications, err := e.stores.Applications.ListByJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to list applications: %w", err)
	}

	for _, application := range applications {
		if application.ApplicationID == acceptedID || application.Status == domain.ApplicationStatusRejected {
			continue
		}
		if err := e.stores.Applications.Reject(ctx, application.ApplicationID, jobID, now); err != nil {
			return fmt.Errorf("failed to reject application %s: %w", application.ApplicationID, err)
		}
	}

	return nil
}

// openTicket creates the ticket of the accepted application, or returns the existing one
func (e *lifecycleEngine) openTicket(ctx context.Context, jobID, applicationID, applicantID string) (*domain.JobTicket, error) {
	ticket := domain.NewJobTicket(jobID, applicationID, applicantID)

	err := e.stores.Tickets.Create(ctx, ticket)
	if err == nil {
		return ticket, nil
	}
	if !repository.IsAlreadyExistsError(err) {
		return nil, err
	}

	existing, err := e.stores.Tickets.GetByID(ctx, ticket.TicketID)
	if err != nil {
		return nil, fmt.Errorf("failed to read existing ticket: %w", err)
	}
	return existing, nil
}

func (e *lifecycleEngine) partialAcceptance(ctx context.Context, job *domain.Job, applicationID, step string, err error) error {
	e.logger.WithContext(ctx).Error("acceptance interrupted after assignment",
		logger.String("job_id", job.JobID),
		logger.String("application_id", applicationID),
		logger.String("step", step),
		logger.Error(err))

	metrics.PartialAcceptancesTotal.WithLabelValues(step).Inc()

	return &domain.PartialAcceptanceError{
		JobID:         job.JobID,
		ApplicationID: applicationID,
		ApplicantID:   job.AssignedTo,
		FailedStep:    step,
		Err:           domain.NewStoreError(step, err),
	}
}

func (e *lifecycleEngine) loadApplication(ctx context.Context, applicationID string) (*domain.JobApplication, error) {
	application, err := e.stores.Applications.GetByID(ctx, applicationID)
	if err != nil {
		if repository.IsNotFoundError(err) {
			return nil, domain.NotFoundError("application", applicationID)
		}
		return nil, storeFailure(ctx, e.logger, "get_application", err)
	}
	return application, nil
}
