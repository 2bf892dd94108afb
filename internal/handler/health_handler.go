package handler

import (
	"context"

	"karmahub/commons/error_handler"
	"karmahub/commons/handler"
	"karmahub/internal/dto"
	"karmahub/internal/logger"
)

type HealthHandler struct {
	logger      logger.Logger
	serviceName string
	version     string
}

func NewHealthHandler(log logger.Logger, serviceName, version string) *HealthHandler {
	return &HealthHandler{
		logger:      log.With(logger.String("component", "health_handler")),
		serviceName: serviceName,
		version:     version,
	}
}

func (h *HealthHandler) HealthService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.HealthCheckRequest],
) (dto.HealthCheckResponse, *error_handler.ErrorCollection) {
	h.logger.Debug("health check requested")

	return dto.HealthCheckResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Version: h.version,
	}, nil
}
