package routes

import (
	"net/http"

	"karmahub/commons/routes"
	"karmahub/internal/dto"
	"karmahub/internal/handler"
	"karmahub/internal/logger"

	"github.com/gin-gonic/gin"
)

func InitJobRoutes(
	router *gin.Engine,
	jobHandler *handler.JobHandler,
	log logger.Logger,
) {
	apiV1 := routes.CreateAPIGroup(router, "v1")

	deps := routes.RouteDependencies{
		Logger: log,
	}

	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.EmptyRequest, dto.ListJobsResponse]{
		Path:        "/jobs",
		Method:      http.MethodGet,
		ServiceFunc: jobHandler.ListOpenJobsService,
		RequireAuth: false,
	})

	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.EmptyRequest, dto.ListJobsResponse]{
		Path:        "/jobs/mine",
		Method:      http.MethodGet,
		ServiceFunc: jobHandler.ListMyJobsService,
		RequireAuth: true,
	})

	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.EmptyRequest, dto.JobResponse]{
		Path:        "/jobs/:id",
		Method:      http.MethodGet,
		ServiceFunc: jobHandler.GetJobService,
		RequireAuth: false,
	})

	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.CreateJobRequest, dto.JobResponse]{
		Path:        "/jobs",
		Method:      http.MethodPost,
		ServiceFunc: jobHandler.CreateJobService,
		RequireAuth: true,
	})

	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.EmptyRequest, dto.JobResponse]{
		Path:        "/jobs/:id/cancel",
		Method:      http.MethodPost,
		ServiceFunc: jobHandler.CancelJobService,
		RequireAuth: true,
	})

	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.ApplyForJobRequest, dto.ApplicationResponse]{
		Path:        "/jobs/:id/applications",
		Method:      http.MethodPost,
		ServiceFunc: jobHandler.ApplyForJobService,
		RequireAuth: true,
	})

	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.EmptyRequest, dto.ListApplicationsResponse]{
		Path:        "/jobs/:id/applications",
		Method:      http.MethodGet,
		ServiceFunc: jobHandler.ListJobApplicationsService,
		RequireAuth: true,
	})

	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.AcceptApplicationRequest, dto.AcceptanceResponse]{
		Path:        "/jobs/:id/applications/:applicationId/accept",
		Method:      http.MethodPost,
		ServiceFunc: jobHandler.AcceptApplicationService,
		RequireAuth: true,
	})

	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.EmptyRequest, dto.AcceptanceResponse]{
		Path:        "/jobs/:id/acceptance/resume",
		Method:      http.MethodPost,
		ServiceFunc: jobHandler.ResumeAcceptanceService,
		RequireAuth: true,
	})

	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.SubmitRatingRequest, dto.RatingResponse]{
		Path:        "/jobs/:id/ratings",
		Method:      http.MethodPost,
		ServiceFunc: jobHandler.SubmitRatingService,
		RequireAuth: true,
	})

	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.EmptyRequest, dto.ListApplicationsResponse]{
		Path:        "/applications/mine",
		Method:      http.MethodGet,
		ServiceFunc: jobHandler.ListMyApplicationsService,
		RequireAuth: true,
	})
}
