package service

import (
	"context"
	"fmt"

	"karmahub/internal/domain"
	"karmahub/internal/logger"
	"karmahub/internal/metrics"
	"karmahub/internal/repository"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// SettlementService owns the payment_released and karma_awarded flags of completed tickets.
// Each flag is set at most once, together with the credit to the assignee's profile.
type SettlementService interface {
	ReleasePayment(ctx context.Context, ticketID string) (*SettlementResult, error)
	AwardKarma(ctx context.Context, ticketID string) (*SettlementResult, error)
	// AutoSettle settles a completed ticket when the configured rule matches
	AutoSettle(ctx context.Context, ticketID string) error
}

// SettlementResult reports the ticket after settlement and whether this call changed it
type SettlementResult struct {
	Ticket  *domain.JobTicket `json:"ticket"`
	Changed bool              `json:"changed"`
}

const (
	settlementKindPayment = "payment"
	settlementKindKarma   = "karma"
)

type settlementService struct {
	stores   Stores
	profiles ProfileService
	rule     *vm.Program
	ruleText string
	logger   logger.Logger
}

// NewSettlementService compiles autoRule, an expr-lang boolean over job and
// ticket, e.g. `job.job_type == "good_deeds"`. An empty rule disables AutoSettle.
func NewSettlementService(stores Stores, profiles ProfileService, autoRule string, log logger.Logger) (SettlementService, error) {
	s := &settlementService{
		stores:   stores,
		profiles: profiles,
		ruleText: autoRule,
		logger:   log.With(logger.String("component", "settlement_service")),
	}

	if autoRule != "" {
		sample := settlementEnv(&domain.Job{}, &domain.JobTicket{})
		program, err := expr.Compile(autoRule, expr.Env(sample), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("invalid settlement rule: %w", err)
		}
		s.rule = program
	}

	return s, nil
}

// settlementEnv exposes the fields a settlement rule may read
func settlementEnv(job *domain.Job, ticket *domain.JobTicket) map[string]interface{} {
	return map[string]interface{}{
		"job": map[string]interface{}{
			"job_id":       job.JobID,
			"job_type":     string(job.JobType),
			"category":     job.Category,
			"budget":       job.BudgetAmount(),
			"karma_reward": job.KarmaReward,
			"creator_id":   job.CreatorID,
			"assigned_to":  job.AssignedTo,
		},
		"ticket": map[string]interface{}{
			"ticket_id":        ticket.TicketID,
			"applicant_id":     ticket.ApplicantID,
			"status":           string(ticket.Status),
			"payment_released": ticket.PaymentReleased,
			"karma_awarded":    ticket.KarmaAwarded,
			"completed_at":     ticket.CompletedAt,
		},
	}
}

// loadCompleted returns a completed ticket and its job
func (s *settlementService) loadCompleted(ctx context.Context, ticketID string) (*domain.JobTicket, *domain.Job, error) {
	ticket, err := loadTicket(ctx, s.stores.Tickets, s.logger, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if ticket.Status != domain.TicketStatusCompleted {
		return nil, nil, domain.StateConflictError("ticket %s is %s, settlement needs a completed ticket", ticketID, ticket.Status)
	}

	job, err := loadJob(ctx, s.stores.Jobs, s.logger, ticket.JobID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, job, nil
}

func (s *settlementService) ReleasePayment(ctx context.Context, ticketID string) (result *SettlementResult, err error) {
	defer func() { countSettlement(settlementKindPayment, result, err) }()

	ticket, job, err := s.loadCompleted(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if job.JobType != domain.JobTypePaid {
		return nil, domain.ValidationError("job %s is not a paid job", job.JobID)
	}
	if ticket.PaymentReleased {
		return &SettlementResult{Ticket: ticket}, nil
	}

	now := nowMillis()
	err = s.stores.Settlement.ReleasePayment(ctx, ticketID, ticket.ApplicantID, job.BudgetAmount(), now)
	if err != nil {
		return s.settleConflict(ctx, ticketID, "release_payment", err, func(t *domain.JobTicket) bool { return t.PaymentReleased })
	}

	ticket.PaymentReleased = true
	ticket.UpdatedAt = now
	s.profiles.Invalidate(ctx, ticket.ApplicantID)

	s.logger.WithContext(ctx).Info("payment released",
		logger.String("ticket_id", ticketID),
		logger.String("applicant_id", ticket.ApplicantID),
		logger.Float64("amount", job.BudgetAmount()))

	return &SettlementResult{Ticket: ticket, Changed: true}, nil
}

func (s *settlementService) AwardKarma(ctx context.Context, ticketID string) (result *SettlementResult, err error) {
	defer func() { countSettlement(settlementKindKarma, result, err) }()

	ticket, job, err := s.loadCompleted(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.KarmaAwarded {
		return &SettlementResult{Ticket: ticket}, nil
	}

	now := nowMillis()
	goodDeed := job.JobType == domain.JobTypeGoodDeeds
	err = s.stores.Settlement.AwardKarma(ctx, ticketID, ticket.ApplicantID, job.KarmaReward, goodDeed, now)
	if err != nil {
		return s.settleConflict(ctx, ticketID, "award_karma", err, func(t *domain.JobTicket) bool { return t.KarmaAwarded })
	}

	ticket.KarmaAwarded = true
	ticket.UpdatedAt = now
	s.profiles.Invalidate(ctx, ticket.ApplicantID)

	s.logger.WithContext(ctx).Info("karma awarded",
		logger.String("ticket_id", ticketID),
		logger.String("applicant_id", ticket.ApplicantID),
		logger.Int("karma", job.KarmaReward))

	return &SettlementResult{Ticket: ticket, Changed: true}, nil
}

// settleConflict re-reads the ticket after a failed settlement write. A flag
// that is already set means a concurrent call settled it first.
func (s *settlementService) settleConflict(ctx context.Context, ticketID, op string, err error, settled func(*domain.JobTicket) bool) (*SettlementResult, error) {
	if !repository.IsConditionFailedError(err) {
		return nil, storeFailure(ctx, s.logger, op, err)
	}

	current, err := loadTicket(ctx, s.stores.Tickets, s.logger, ticketID)
	if err != nil {
		return nil, err
	}
	if settled(current) {
		return &SettlementResult{Ticket: current}, nil
	}
	return nil, domain.StateConflictError("ticket %s is %s", ticketID, current.Status)
}

func (s *settlementService) AutoSettle(ctx context.Context, ticketID string) error {
	if s.rule == nil {
		return nil
	}

	ticket, job, err := s.loadCompleted(ctx, ticketID)
	if err != nil {
		return err
	}

	output, err := expr.Run(s.rule, settlementEnv(job, ticket))
	if err != nil {
		s.logger.Error("failed to evaluate settlement rule",
			logger.String("rule", s.ruleText),
			logger.Error(err))
		return fmt.Errorf("settlement rule evaluation failed: %w", err)
	}

	matched, ok := output.(bool)
	if !ok {
		return fmt.Errorf("settlement rule did not return boolean: %T", output)
	}
	if !matched {
		s.logger.Debug("settlement rule did not match",
			logger.String("ticket_id", ticketID))
		return nil
	}

	if _, err := s.AwardKarma(ctx, ticketID); err != nil {
		return err
	}
	if job.JobType == domain.JobTypePaid {
		if _, err := s.ReleasePayment(ctx, ticketID); err != nil {
			return err
		}
	}
	return nil
}

func countSettlement(kind string, result *SettlementResult, err error) {
	status := "settled"
	switch {
	case err != nil:
		status = outcomeLabel(err)
	case result != nil && !result.Changed:
		status = "unchanged"
	}
	metrics.SettlementsTotal.WithLabelValues(kind, status).Inc()
}
