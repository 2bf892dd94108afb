package handler

import (
	"context"

	"karmahub/commons/error_handler"
	"karmahub/commons/handler"
	"karmahub/internal/dto"
	"karmahub/internal/identity"
	"karmahub/internal/logger"
	"karmahub/internal/notification"
	"karmahub/internal/service"
)

type TicketHandler struct {
	logger   logger.Logger
	engine   service.LifecycleEngine
	queries  service.JobQueries
	notifier notifier
}

func NewTicketHandler(
	log logger.Logger,
	engine service.LifecycleEngine,
	queries service.JobQueries,
	sink notification.Sink,
) *TicketHandler {
	log = log.With(logger.String("component", "ticket_handler"))
	return &TicketHandler{
		logger:   log,
		engine:   engine,
		queries:  queries,
		notifier: notifier{sink: sink, logger: log},
	}
}

func (h *TicketHandler) ListMyTicketsService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.EmptyRequest],
) (dto.ListTicketsResponse, *error_handler.ErrorCollection) {
	userID, ec := currentUser(ctx)
	if ec != nil {
		return dto.ListTicketsResponse{}, ec
	}

	tickets := h.queries.ListTicketsByApplicant(ctx, userID)
	return dto.ListTicketsResponse{Tickets: tickets, Pagination: dto.Page(len(tickets))}, nil
}

func (h *TicketHandler) ListJobTicketsService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.EmptyRequest],
) (dto.ListTicketsResponse, *error_handler.ErrorCollection) {
	if _, ec := currentUser(ctx); ec != nil {
		return dto.ListTicketsResponse{}, ec
	}

	tickets := h.queries.ListTicketsForJob(ctx, ioutil.PathParams["id"])
	return dto.ListTicketsResponse{Tickets: tickets, Pagination: dto.Page(len(tickets))}, nil
}

func (h *TicketHandler) CompleteTicketService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.EmptyRequest],
) (dto.TicketResponse, *error_handler.ErrorCollection) {
	ticket, err := h.engine.CompleteJob(ctx, identity.UserFromContext(ctx), ioutil.PathParams["id"])
	if err != nil {
		return dto.TicketResponse{}, h.notifier.failure(ctx, "Could not complete job", err)
	}

	return dto.TicketResponse{
		Ticket: ticket,
		Notice: h.notifier.success(ctx, "Job completed", "Both sides can now rate each other."),
	}, nil
}
