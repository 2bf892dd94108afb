package service

import (
	"context"

	"karmahub/internal/domain"
	"karmahub/internal/logger"
	"karmahub/internal/repository"
	repositoryIface "karmahub/internal/repository/iface"
)

// storeFailure logs err and hides it behind a StoreError
func storeFailure(ctx context.Context, log logger.Logger, op string, err error) error {
	log.WithContext(ctx).Error("record store operation failed",
		logger.String("op", op),
		logger.Error(err))
	return domain.NewStoreError(op, err)
}

// loadJob reads a job, mapping a miss to NotFound
func loadJob(ctx context.Context, jobs repositoryIface.JobRepository, log logger.Logger, jobID string) (*domain.Job, error) {
	job, err := jobs.GetByID(ctx, jobID)
	if err != nil {
		if repository.IsNotFoundError(err) {
			return nil, domain.NotFoundError("job", jobID)
		}
		return nil, storeFailure(ctx, log, "get_job", err)
	}
	return job, nil
}

// loadTicket reads a ticket, mapping a miss to NotFound
func loadTicket(ctx context.Context, tickets repositoryIface.TicketRepository, log logger.Logger, ticketID string) (*domain.JobTicket, error) {
	ticket, err := tickets.GetByID(ctx, ticketID)
	if err != nil {
		if repository.IsNotFoundError(err) {
			return nil, domain.NotFoundError("ticket", ticketID)
		}
		return nil, storeFailure(ctx, log, "get_ticket", err)
	}
	return ticket, nil
}

// outcomeLabel names the error kind for metrics
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domain.IsValidationError(err):
		return "validation"
	case domain.IsAuthenticationError(err):
		return "authentication"
	case domain.IsAuthorizationError(err):
		return "authorization"
	case domain.IsNotFoundError(err):
		return "not_found"
	case domain.IsDuplicateApplicationError(err), domain.IsDuplicateRatingError(err):
		return "duplicate"
	case domain.IsStateConflictError(err):
		return "state_conflict"
	default:
		if _, ok := domain.AsPartialAcceptance(err); ok {
			return "partial"
		}
		return "store"
	}
}
