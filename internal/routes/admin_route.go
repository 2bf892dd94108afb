package routes

import (
	"net/http"

	"karmahub/commons/routes"
	"karmahub/internal/dto"
	"karmahub/internal/handler"
	"karmahub/internal/logger"

	"github.com/gin-gonic/gin"
)

func InitAdminRoutes(
	router *gin.Engine,
	adminHandler *handler.AdminHandler,
	log logger.Logger,
) {
	admin := routes.CreateAPIGroup(router, "v1").Group("/admin")

	deps := routes.RouteDependencies{
		Logger: log,
	}

	routes.RegisterRoute(admin, deps, routes.RouteOptions[dto.EmptyRequest, dto.ListJobsResponse]{
		Path:        "/acceptances/pending",
		Method:      http.MethodGet,
		ServiceFunc: adminHandler.ListPendingAcceptancesService,
		RequireAuth: true,
	})

	routes.RegisterRoute(admin, deps, routes.RouteOptions[dto.EmptyRequest, dto.SettlementResponse]{
		Path:        "/tickets/:id/release-payment",
		Method:      http.MethodPost,
		ServiceFunc: adminHandler.ReleasePaymentService,
		RequireAuth: true,
	})

	routes.RegisterRoute(admin, deps, routes.RouteOptions[dto.EmptyRequest, dto.SettlementResponse]{
		Path:        "/tickets/:id/award-karma",
		Method:      http.MethodPost,
		ServiceFunc: adminHandler.AwardKarmaService,
		RequireAuth: true,
	})
}
