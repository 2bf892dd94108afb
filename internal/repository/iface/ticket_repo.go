package repository

import (
	"context"

	"karmahub/internal/domain"
)

// TicketRepository defines operations for fulfillment tickets
type TicketRepository interface {
	// Create returns repository.ErrAlreadyExists when the ticket id is taken
	Create(ctx context.Context, ticket *domain.JobTicket) error
	GetByID(ctx context.Context, ticketID string) (*domain.JobTicket, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]*domain.JobTicket, error)
	ListByJob(ctx context.Context, jobID string) ([]*domain.JobTicket, error)

	// Complete moves an active ticket to completed
	Complete(ctx context.Context, ticketID string, now int64) error
}

// SettlementRepository flips a ticket's settlement flag and credits the
// assignee's profile in one atomic write
type SettlementRepository interface {
	// AwardKarma requires a completed ticket with karma_awarded unset
	AwardKarma(ctx context.Context, ticketID, userID string, karma int, goodDeed bool, now int64) error
	// ReleasePayment requires a completed ticket with payment_released unset
	ReleasePayment(ctx context.Context, ticketID, userID string, amount float64, now int64) error
}
