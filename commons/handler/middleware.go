package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"karmahub/commons/error_handler"
	"karmahub/commons/response"
	"karmahub/internal/identity"
	"karmahub/internal/logger"
	"karmahub/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is echoed back so callers can correlate logs
const HeaderRequestID = "X-Request-ID"

// RequestContextMiddleware puts the request id and the gateway-asserted
// user id on the request context
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(HeaderRequestID, requestID)

		ctx := logger.ContextWithRequestID(c.Request.Context(), requestID)
		if userID := c.GetHeader(identity.HeaderUserID); userID != "" {
			ctx = identity.ContextWithUser(ctx, userID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireUserMiddleware rejects requests without a user id
func RequireUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity.UserFromContext(c.Request.Context()) != "" {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Failure(response.StatusFailed, "Authentication required", nil,
			response.Error(error_handler.CodeUnauthorized, fmt.Sprintf("missing %s header", identity.HeaderUserID))))
	}
}

// MetricsMiddleware counts requests by route template
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.
			WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Inc()
	}
}

func ErrorHandlingMiddleware(log logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if recovered != nil {
			log.Error("panic recovered in middleware",
				logger.String("path", c.Request.URL.Path),
				logger.String("method", c.Request.Method),
				logger.Any("panic", recovered))

			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Failure(response.StatusFailed, "Internal server error", nil,
				error_handler.GetInternalServerError("An unexpected error occurred")))
		}
	})
}

func LoggingMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLog := log.WithContext(c.Request.Context())

		reqLog.Debug("request started",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.String("user_agent", c.GetHeader("User-Agent")),
			logger.String("remote_addr", c.ClientIP()))

		c.Next()

		reqLog.Info("request completed",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status_code", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)))
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-User-ID, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func NoRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Failure(response.StatusFailed, "Route not found", nil,
			response.Error(error_handler.CodeNotFound, fmt.Sprintf("The requested route '%s %s' was not found", c.Request.Method, c.Request.URL.Path))))
	}
}

func NoMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, response.Failure(response.StatusFailed, "Method not allowed", nil,
			response.Error(error_handler.CodeValidationError, fmt.Sprintf("Method '%s' is not allowed for route '%s'", c.Request.Method, c.Request.URL.Path))))
	}
}