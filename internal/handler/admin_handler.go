package handler

import (
	"context"

	"karmahub/commons/error_handler"
	"karmahub/commons/handler"
	"karmahub/internal/domain"
	"karmahub/internal/dto"
	"karmahub/internal/identity"
	"karmahub/internal/logger"
	"karmahub/internal/notification"
	"karmahub/internal/service"
)

// AdminPolicy decides who may use the admin endpoints
type AdminPolicy interface {
	IsAdmin(userID string) bool
}

type AdminHandler struct {
	logger     logger.Logger
	settlement service.SettlementService
	queries    service.JobQueries
	policy     AdminPolicy
	notifier   notifier
}

func NewAdminHandler(
	log logger.Logger,
	settlement service.SettlementService,
	queries service.JobQueries,
	policy AdminPolicy,
	sink notification.Sink,
) *AdminHandler {
	log = log.With(logger.String("component", "admin_handler"))
	return &AdminHandler{
		logger:     log,
		settlement: settlement,
		queries:    queries,
		policy:     policy,
		notifier:   notifier{sink: sink, logger: log},
	}
}

func (h *AdminHandler) authorize(ctx context.Context) *error_handler.ErrorCollection {
	userID, ec := currentUser(ctx)
	if ec != nil {
		return ec
	}
	if !h.policy.IsAdmin(userID) {
		h.logger.WithContext(ctx).Warn("admin endpoint refused", logger.String("user_id", userID))
		return errorCollection(domain.AuthorizationError("admin access required"))
	}
	return nil
}

func (h *AdminHandler) ListPendingAcceptancesService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.EmptyRequest],
) (dto.ListJobsResponse, *error_handler.ErrorCollection) {
	if ec := h.authorize(ctx); ec != nil {
		return dto.ListJobsResponse{}, ec
	}

	jobs := h.queries.ListPendingAcceptances(ctx)
	return dto.ListJobsResponse{Jobs: jobs, Pagination: dto.Page(len(jobs))}, nil
}

func (h *AdminHandler) ReleasePaymentService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.EmptyRequest],
) (dto.SettlementResponse, *error_handler.ErrorCollection) {
	if ec := h.authorize(ctx); ec != nil {
		return dto.SettlementResponse{}, ec
	}

	result, err := h.settlement.ReleasePayment(ctx, ioutil.PathParams["id"])
	if err != nil {
		return dto.SettlementResponse{}, h.notifier.failure(ctx, "Could not release payment", err)
	}

	h.logger.WithContext(ctx).Info("payment release requested",
		logger.String("admin_id", identity.UserFromContext(ctx)),
		logger.String("ticket_id", result.Ticket.TicketID),
		logger.Bool("changed", result.Changed))

	return dto.SettlementResponse{
		Ticket:  result.Ticket,
		Changed: result.Changed,
		Notice:  h.notifier.success(ctx, "Payment released", "The helper's earnings were credited."),
	}, nil
}

func (h *AdminHandler) AwardKarmaService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.EmptyRequest],
) (dto.SettlementResponse, *error_handler.ErrorCollection) {
	if ec := h.authorize(ctx); ec != nil {
		return dto.SettlementResponse{}, ec
	}

	result, err := h.settlement.AwardKarma(ctx, ioutil.PathParams["id"])
	if err != nil {
		return dto.SettlementResponse{}, h.notifier.failure(ctx, "Could not award karma", err)
	}

	h.logger.WithContext(ctx).Info("karma award requested",
		logger.String("admin_id", identity.UserFromContext(ctx)),
		logger.String("ticket_id", result.Ticket.TicketID),
		logger.Bool("changed", result.Changed))

	return dto.SettlementResponse{
		Ticket:  result.Ticket,
		Changed: result.Changed,
		Notice:  h.notifier.success(ctx, "Karma awarded", "The helper's karma was credited."),
	}, nil
}
