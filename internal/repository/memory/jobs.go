package memory

import (
	"context"
	"fmt"

	"karmahub/internal/domain"
	"karmahub/internal/repository"
)

type jobStore struct {
	s *Store
}

func (r *jobStore) Create(ctx context.Context, job *domain.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("jobs.create"); err != nil {
		return err
	}
	if _, ok := r.s.jobs[job.JobID]; ok {
		return fmt.Errorf("%w: job_id=%s", repository.ErrAlreadyExists, job.JobID)
	}
	r.s.jobs[job.JobID] = *job
	return nil
}

func (r *jobStore) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("jobs.get"); err != nil {
		return nil, err
	}
	job, ok := r.s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: job %s", repository.ErrNotFound, jobID)
	}
	return &job, nil
}

func (r *jobStore) ListByStatus(ctx context.Context, status domain.JobStatus) ([]*domain.Job, error) {
	return r.list("jobs.list", func(j *domain.Job) bool { return j.Status == status })
}

func (r *jobStore) ListByCreator(ctx context.Context, creatorID string) ([]*domain.Job, error) {
	return r.list("jobs.list", func(j *domain.Job) bool { return j.CreatorID == creatorID })
}

func (r *jobStore) ListPendingAcceptances(ctx context.Context, markedBefore int64) ([]*domain.Job, error) {
	return r.list("jobs.list", func(j *domain.Job) bool {
		return j.Status == domain.JobStatusInProgress &&
			j.PendingAcceptanceID != "" &&
			j.PendingAcceptanceAt <= markedBefore
	})
}

func (r *jobStore) Assign(ctx context.Context, jobID, creatorID, applicantID, applicationID string, now int64) error {
	return r.update("jobs.assign", jobID, func(j *domain.Job) bool {
		if j.CreatorID != creatorID || j.Status != domain.JobStatusOpen {
			return false
		}
		j.Status = domain.JobStatusInProgress
		j.AssignedTo = applicantID
		j.PendingAcceptanceID = applicationID
		j.PendingAcceptanceAt = now
		j.UpdatedAt = now
		return true
	})
}

func (r *jobStore) ClearAcceptanceMarker(ctx context.Context, jobID, applicationID string, now int64) error {
	return r.update("jobs.clear_marker", jobID, func(j *domain.Job) bool {
		if j.PendingAcceptanceID != "" && j.PendingAcceptanceID != applicationID {
			return false
		}
		j.PendingAcceptanceID = ""
		j.PendingAcceptanceAt = 0
		j.UpdatedAt = now
		return true
	})
}

func (r *jobStore) Complete(ctx context.Context, jobID, assigneeID string, now int64) error {
	return r.update("jobs.complete", jobID, func(j *domain.Job) bool {
		if j.AssignedTo != assigneeID {
			return false
		}
		if j.Status != domain.JobStatusInProgress && j.Status != domain.JobStatusCompleted {
			return false
		}
		j.Status = domain.JobStatusCompleted
		j.UpdatedAt = now
		return true
	})
}

func (r *jobStore) Cancel(ctx context.Context, jobID, creatorID string, now int64) error {
	return r.update("jobs.cancel", jobID, func(j *domain.Job) bool {
		if j.CreatorID != creatorID || j.Status != domain.JobStatusOpen {
			return false
		}
		j.Status = domain.JobStatusCancelled
		j.UpdatedAt = now
		return true
	})
}

// update applies mutate to a copy and stores it only when mutate reports the predicate held
func (r *jobStore) update(op, jobID string, mutate func(*domain.Job) bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter(op); err != nil {
		return err
	}
	job, ok := r.s.jobs[jobID]
	if !ok || !mutate(&job) {
		return fmt.Errorf("%w: job %s %s", repository.ErrConditionFailed, jobID, op)
	}
	r.s.jobs[jobID] = job
	return nil
}

func (r *jobStore) list(op string, match func(*domain.Job) bool) ([]*domain.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	jobs := make([]*domain.Job, 0)
	for _, job := range r.s.jobs {
		if match(&job) {
			j := job
			jobs = append(jobs, &j)
		}
	}
	return newestFirst(jobs,
		func(j *domain.Job) int64 { return j.CreatedAt },
		func(j *domain.Job) string { return j.JobID }), nil
}
