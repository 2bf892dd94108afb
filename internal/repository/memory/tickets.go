package memory

import (
	"context"
	"fmt"

	"karmahub/internal/domain"
	"karmahub/internal/repository"
)

type ticketStore struct {
	s *Store
}

func (r *ticketStore) Create(ctx context.Context, ticket *domain.JobTicket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("tickets.create"); err != nil {
		return err
	}
	if _, ok := r.s.tickets[ticket.TicketID]; ok {
		return fmt.Errorf("%w: ticket %s", repository.ErrAlreadyExists, ticket.TicketID)
	}
	r.s.tickets[ticket.TicketID] = *ticket
	return nil
}

func (r *ticketStore) GetByID(ctx context.Context, ticketID string) (*domain.JobTicket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("tickets.get"); err != nil {
		return nil, err
	}
	ticket, ok := r.s.tickets[ticketID]
	if !ok {
		return nil, fmt.Errorf("%w: ticket %s", repository.ErrNotFound, ticketID)
	}
	return &ticket, nil
}

func (r *ticketStore) ListByApplicant(ctx context.Context, applicantID string) ([]*domain.JobTicket, error) {
	return r.list(func(t *domain.JobTicket) bool { return t.ApplicantID == applicantID })
}

func (r *ticketStore) ListByJob(ctx context.Context, jobID string) ([]*domain.JobTicket, error) {
	return r.list(func(t *domain.JobTicket) bool { return t.JobID == jobID })
}

func (r *ticketStore) Complete(ctx context.Context, ticketID string, now int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("tickets.complete"); err != nil {
		return err
	}
	ticket, ok := r.s.tickets[ticketID]
	if !ok || ticket.Status != domain.TicketStatusActive {
		return fmt.Errorf("%w: ticket %s is not active", repository.ErrConditionFailed, ticketID)
	}
	ticket.Status = domain.TicketStatusCompleted
	ticket.CompletedAt = now
	ticket.UpdatedAt = now
	r.s.tickets[ticketID] = ticket
	return nil
}

func (r *ticketStore) list(match func(*domain.JobTicket) bool) ([]*domain.JobTicket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("tickets.list"); err != nil {
		return nil, err
	}
	tickets := make([]*domain.JobTicket, 0)
	for _, ticket := range r.s.tickets {
		if match(&ticket) {
			t := ticket
			tickets = append(tickets, &t)
		}
	}
	return newestFirst(tickets,
		func(t *domain.JobTicket) int64 { return t.CreatedAt },
		func(t *domain.JobTicket) string { return t.TicketID }), nil
}

type settlementStore struct {
	s *Store
}

func (r *settlementStore) AwardKarma(ctx context.Context, ticketID, userID string, karma int, goodDeed bool, now int64) error {
	return r.settle("settlement.award_karma", ticketID, userID, now,
		func(t *domain.JobTicket) bool {
			if t.KarmaAwarded {
				return false
			}
			t.KarmaAwarded = true
			return true
		},
		func(p *domain.Profile) {
			p.KarmaPoints += karma
			if goodDeed {
				p.GoodDeedsCompleted++
			}
		})
}

func (r *settlementStore) ReleasePayment(ctx context.Context, ticketID, userID string, amount float64, now int64) error {
	return r.settle("settlement.release_payment", ticketID, userID, now,
		func(t *domain.JobTicket) bool {
			if t.PaymentReleased {
				return false
			}
			t.PaymentReleased = true
			return true
		},
		func(p *domain.Profile) {
			p.TotalEarned += amount
		})
}

func (r *settlementStore) settle(op, ticketID, userID string, now int64, flag func(*domain.JobTicket) bool, credit func(*domain.Profile)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter(op); err != nil {
		return err
	}

	ticket, ok := r.s.tickets[ticketID]
	if !ok || ticket.Status != domain.TicketStatusCompleted || !flag(&ticket) {
		return fmt.Errorf("%w: ticket %s %s", repository.ErrConditionFailed, ticketID, op)
	}
	ticket.UpdatedAt = now

	profile, ok := r.s.profiles[userID]
	if !ok {
		profile = domain.Profile{UserID: userID, CreatedAt: now}
	}
	credit(&profile)
	profile.UpdatedAt = now

	r.s.tickets[ticketID] = ticket
	r.s.profiles[userID] = profile
	return nil
}
