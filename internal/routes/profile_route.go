package routes

import (
	"net/http"

	"karmahub/commons/routes"
	"karmahub/internal/dto"
	"karmahub/internal/handler"
	"karmahub/internal/logger"

	"github.com/gin-gonic/gin"
)

func InitProfileRoutes(
	router *gin.Engine,
	profileHandler *handler.ProfileHandler,
	log logger.Logger,
) {
	apiV1 := routes.CreateAPIGroup(router, "v1")

	deps := routes.RouteDependencies{
		Logger: log,
	}

	// "/profiles/me" resolves to the caller
	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.EmptyRequest, dto.ProfileResponse]{
		Path:        "/profiles/:id",
		Method:      http.MethodGet,
		ServiceFunc: profileHandler.GetProfileService,
		RequireAuth: false,
	})

	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.UpdateProfileRequest, dto.ProfileResponse]{
		Path:        "/profiles/me",
		Method:      http.MethodPut,
		ServiceFunc: profileHandler.UpdateMyProfileService,
		RequireAuth: true,
	})

	routes.RegisterRoute(apiV1, deps, routes.RouteOptions[dto.EmptyRequest, dto.ListActivityResponse]{
		Path:        "/activity/mine",
		Method:      http.MethodGet,
		ServiceFunc: profileHandler.ListMyActivityService,
		RequireAuth: true,
	})
}
