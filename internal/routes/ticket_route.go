package routes

import (
	"net/http"

	"karmahub/commons/routes"
	"karmahub/internal/dto"
	"karmahub/internal/handler"
	"karmahub/internal/logger"

	"github.com/gin-gonic/gin"
)

func InitTicketRoutes(
	router *gin.Engine,
	ticketHandler *handler.TicketHandler,
	log logger.Logger,
) {
	apiV1 := routes.CreateAPIGroup(router, "v1")

	deps := routes.RouteDependencies{
		Logger: log,
	}

	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.EmptyRequest, dto.ListTicketsResponse]{
		Path:        "/tickets/mine",
		Method:      http.MethodGet,
		ServiceFunc: ticketHandler.ListMyTicketsService,
		RequireAuth: true,
	})

	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.EmptyRequest, dto.ListTicketsResponse]{
		Path:        "/jobs/:id/tickets",
		Method:      http.MethodGet,
		ServiceFunc: ticketHandler.ListJobTicketsService,
		RequireAuth: true,
	})

	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.EmptyRequest, dto.TicketResponse]{
		Path:        "/tickets/:id/complete",
		Method:      http.MethodPost,
		ServiceFunc: ticketHandler.CompleteTicketService,
		RequireAuth: true,
	})
}
