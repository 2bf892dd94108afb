package memory

import (
	"context"
	"fmt"

	"karmahub/internal/domain"
	"karmahub/internal/repository"
)

type applicationStore struct {
	s *Store
}

func (r *applicationStore) Create(ctx context.Context, application *domain.JobApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("applications.create"); err != nil {
		return err
	}

	key := domain.ApplicationKey(application.JobID, application.ApplicantID)
	if _, ok := r.s.applicationKeys[key]; ok {
		return fmt.Errorf("%w: application %s", repository.ErrAlreadyExists, key)
	}
	if _, ok := r.s.applications[application.ApplicationID]; ok {
		return fmt.Errorf("%w: application %s", repository.ErrAlreadyExists, application.ApplicationID)
	}

	r.s.applicationKeys[key] = application.ApplicationID
	r.s.applications[application.ApplicationID] = *application
	return nil
}

func (r *applicationStore) GetByID(ctx context.Context, applicationID string) (*domain.JobApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("applications.get"); err != nil {
		return nil, err
	}
	application, ok := r.s.applications[applicationID]
	if !ok {
		return nil, fmt.Errorf("%w: application %s", repository.ErrNotFound, applicationID)
	}
	return &application, nil
}

func (r *applicationStore) ListByJob(ctx context.Context, jobID string) ([]*domain.JobApplication, error) {
	return r.list(func(a *domain.JobApplication) bool { return a.JobID == jobID })
}

func (r *applicationStore) ListByApplicant(ctx context.Context, applicantID string) ([]*domain.JobApplication, error) {
	return r.list(func(a *domain.JobApplication) bool { return a.ApplicantID == applicantID })
}

func (r *applicationStore) Accept(ctx context.Context, applicationID, jobID string, now int64) error {
	return r.update("applications.accept", applicationID, func(a *domain.JobApplication) bool {
		if a.JobID != jobID || a.Status == domain.ApplicationStatusRejected {
			return false
		}
		a.Status = domain.ApplicationStatusAccepted
		a.UpdatedAt = now
		return true
	})
}

func (r *applicationStore) Reject(ctx context.Context, applicationID, jobID string, now int64) error {
	return r.update("applications.reject", applicationID, func(a *domain.JobApplication) bool {
		if a.JobID != jobID || a.Status == domain.ApplicationStatusAccepted {
			return false
		}
		a.Status = domain.ApplicationStatusRejected
		a.UpdatedAt = now
		return true
	})
}

func (r *applicationStore) update(op, applicationID string, mutate func(*domain.JobApplication) bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter(op); err != nil {
		return err
	}
	application, ok := r.s.applications[applicationID]
	if !ok || !mutate(&application) {
		return fmt.Errorf("%w: application %s %s", repository.ErrConditionFailed, applicationID, op)
	}
	r.s.applications[applicationID] = application
	return nil
}

func (r *applicationStore) list(match func(*domain.JobApplication) bool) ([]*domain.JobApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("applications.list"); err != nil {
		return nil, err
	}
	applications := make([]*domain.JobApplication, 0)
	for _, application := range r.s.applications {
		if match(&application) {
			a := application
			applications = append(applications, &a)
		}
	}
	return newestFirst(applications,
		func(a *domain.JobApplication) int64 { return a.CreatedAt },
		func(a *domain.JobApplication) string { return a.ApplicationID }), nil
}
