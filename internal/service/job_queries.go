package service

import (
	"context"

	"karmahub/internal/domain"
	"karmahub/internal/logger"
)

// JobQueries serves the read views of jobs, applications and tickets.
// Listings never fail: a store failure yields an empty slice and is reported.
type JobQueries interface {
	ListOpenJobs(ctx context.Context) []*domain.Job
	ListJobsByCreator(ctx context.Context, creatorID string) []*domain.Job
	ListApplicationsByApplicant(ctx context.Context, applicantID string) []*domain.JobApplication
	ListApplicationsForJob(ctx context.Context, jobID string) []*domain.JobApplication
	ListTicketsByApplicant(ctx context.Context, applicantID string) []*domain.JobTicket
	ListTicketsForJob(ctx context.Context, jobID string) []*domain.JobTicket
	ListPendingAcceptances(ctx context.Context) []*domain.Job
	GetJob(ctx context.Context, jobID string) (*domain.Job, error)
}

type jobQueries struct {
	stores   Stores
	reporter ErrorReporter
	logger   logger.Logger
}

// NewJobQueries creates the read views over stores
func NewJobQueries(stores Stores, reporter ErrorReporter, log logger.Logger) JobQueries {
	return &jobQueries{
		stores:   stores,
		reporter: reporter,
		logger:   log.With(logger.String("component", "job_queries")),
	}
}

// degrade returns items, or an empty slice after reporting err
func degrade[T any](ctx context.Context, r ErrorReporter, view string, items []T, err error) []T {
	if err != nil {
		r.Report(ctx, view, err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

func (q *jobQueries) ListOpenJobs(ctx context.Context) []*domain.Job {
	jobs, err := q.stores.Jobs.ListByStatus(ctx, domain.JobStatusOpen)
	return degrade(ctx, q.reporter, "open_jobs", jobs, err)
}

func (q *jobQueries) ListJobsByCreator(ctx context.Context, creatorID string) []*domain.Job {
	jobs, err := q.stores.Jobs.ListByCreator(ctx, creatorID)
	return degrade(ctx, q.reporter, "jobs_by_creator", jobs, err)
}

func (q *jobQueries) ListApplicationsByApplicant(ctx context.Context, applicantID string) []*domain.JobApplication {
	applications, err := q.stores.Applications.ListByApplicant(ctx, applicantID)
	return degrade(ctx, q.reporter, "applications_by_applicant", applications, err)
}

func (q *jobQueries) ListApplicationsForJob(ctx context.Context, jobID string) []*domain.JobApplication {
	applications, err := q.stores.Applications.ListByJob(ctx, jobID)
	return degrade(ctx, q.reporter, "applications_for_job", applications, err)
}

func (q *jobQueries) ListTicketsByApplicant(ctx context.Context, applicantID string) []*domain.JobTicket {
	tickets, err := q.stores.Tickets.ListByApplicant(ctx, applicantID)
	return degrade(ctx, q.reporter, "tickets_by_applicant", tickets, err)
}

func (q *jobQueries) ListTicketsForJob(ctx context.Context, jobID string) []*domain.JobTicket {
	tickets, err := q.stores.Tickets.ListByJob(ctx, jobID)
	return degrade(ctx, q.reporter, "tickets_for_job", tickets, err)
}

// ListPendingAcceptances returns every job whose acceptance has not finished
func (q *jobQueries) ListPendingAcceptances(ctx context.Context) []*domain.Job {
	jobs, err := q.stores.Jobs.ListPendingAcceptances(ctx, nowMillis())
	return degrade(ctx, q.reporter, "pending_acceptances", jobs, err)
}

func (q *jobQueries) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	return loadJob(ctx, q.stores.Jobs, q.logger, jobID)
}
