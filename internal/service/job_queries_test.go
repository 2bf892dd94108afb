package service

import (
	"errors"
	"fmt"
	"testing"

	"karmahub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedJob(t *testing.T, h *harness, id, creator string, status domain.JobStatus, createdAt int64) {
	t.Helper()
	require.NoError(t, h.stores.Jobs.Create(h.ctx, &domain.Job{
		JobID:     id,
		CreatorID: creator,
		Title:     "job " + id,
		Category:  "misc",
		JobType:   domain.JobTypeGoodDeeds,
		Location:  "Köln",
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}))
}

func jobIDs(jobs []*domain.Job) []string {
	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.JobID)
	}
	return ids
}

func TestListOpenJobs(t *testing.T) {
	h := newHarness(t)

	seedJob(t, h, "j1", userA, domain.JobStatusOpen, 1000)
	seedJob(t, h, "j2", userA, domain.JobStatusInProgress, 2000)
	seedJob(t, h, "j3", userB, domain.JobStatusOpen, 3000)
	seedJob(t, h, "j4", userB, domain.JobStatusCancelled, 4000)
	seedJob(t, h, "j5", userC, domain.JobStatusOpen, 5000)
	seedJob(t, h, "j6", userC, domain.JobStatusCompleted, 6000)

	assert.Equal(t, []string{"j5", "j3", "j1"}, jobIDs(h.queries.ListOpenJobs(h.ctx)))
}

func TestListJobsByCreator(t *testing.T) {
	h := newHarness(t)

	seedJob(t, h, "j1", userA, domain.JobStatusOpen, 1000)
	seedJob(t, h, "j2", userA, domain.JobStatusCompleted, 3000)
	seedJob(t, h, "j3", userB, domain.JobStatusOpen, 2000)
	seedJob(t, h, "j4", userA, domain.JobStatusCancelled, 2000)

	assert.Equal(t, []string{"j2", "j4", "j1"}, jobIDs(h.queries.ListJobsByCreator(h.ctx, userA)))
	assert.Empty(t, h.queries.ListJobsByCreator(h.ctx, "nobody"))
}

func TestListApplicationsAndTicketsOfApplicant(t *testing.T) {
	h := newHarness(t)

	_, first := h.acceptedJob(t, paidJobInput(), userA, userB)
	_, second := h.acceptedJob(t, goodDeedInput(), userC, userB)

	applications := h.queries.ListApplicationsByApplicant(h.ctx, userB)
	require.Len(t, applications, 2)
	assert.GreaterOrEqual(t, applications[0].CreatedAt, applications[1].CreatedAt)

	tickets := h.queries.ListTicketsByApplicant(h.ctx, userB)
	require.Len(t, tickets, 2)
	ids := []string{tickets[0].TicketID, tickets[1].TicketID}
	assert.ElementsMatch(t, []string{first.Ticket.TicketID, second.Ticket.TicketID}, ids)
	assert.GreaterOrEqual(t, tickets[0].CreatedAt, tickets[1].CreatedAt)

	assert.Empty(t, h.queries.ListTicketsByApplicant(h.ctx, userA))
}

func TestListingsDegradeOnStoreFailure(t *testing.T) {
	tests := []struct {
		fault string
		view  string
		list  func(h *harness) int
	}{
		{fault: "jobs.list", view: "open_jobs", list: func(h *harness) int { return len(h.queries.ListOpenJobs(h.ctx)) }},
		{fault: "jobs.list", view: "jobs_by_creator", list: func(h *harness) int { return len(h.queries.ListJobsByCreator(h.ctx, userA)) }},
		{fault: "applications.list", view: "applications_by_applicant", list: func(h *harness) int {
			return len(h.queries.ListApplicationsByApplicant(h.ctx, userB))
		}},
		{fault: "applications.list", view: "applications_for_job", list: func(h *harness) int {
			return len(h.queries.ListApplicationsForJob(h.ctx, "j1"))
		}},
		{fault: "tickets.list", view: "tickets_by_applicant", list: func(h *harness) int {
			return len(h.queries.ListTicketsByApplicant(h.ctx, userB))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.view, func(t *testing.T) {
			h := newHarness(t)
			seedJob(t, h, "j1", userA, domain.JobStatusOpen, 1000)
			h.store.InjectFault(tt.fault, fmt.Errorf("%s: %w", tt.fault, errors.New("timeout")))

			assert.Zero(t, tt.list(h))
			assert.Equal(t, []string{tt.view}, h.reporter.reported())
		})
	}
}

func TestListingsAreNeverNil(t *testing.T) {
	h := newHarness(t)
	h.store.InjectFault("jobs.list", errors.New("timeout"))

	jobs := h.queries.ListOpenJobs(h.ctx)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestGetJob(t *testing.T) {
	h := newHarness(t)
	seedJob(t, h, "j1", userA, domain.JobStatusOpen, 1000)

	job, err := h.queries.GetJob(h.ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, userA, job.CreatorID)

	_, err = h.queries.GetJob(h.ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	h.store.InjectFault("jobs.get", errors.New("timeout"))
	_, err = h.queries.GetJob(h.ctx, "j1")
	assert.True(t, domain.IsStoreError(err))
}
