package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"karmahub/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
)

// HTTPServer serves the gin router for the lifetime of the fx app
type HTTPServer struct {
	server          *http.Server
	listener        net.Listener
	shutdownTimeout time.Duration
	logger          logger.Logger
}

type ServerConfig struct {
	Port              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// NewHTTPServer binds the port on start, so an address already in use
// fails the app start instead of killing the process later
func NewHTTPServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	config ServerConfig,
	log logger.Logger,
) *HTTPServer {
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaultShutdownTimeout
	}

	httpServer := &HTTPServer{
		server: &http.Server{
			Addr:              ":" + config.Port,
			Handler:           router,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
		},
		shutdownTimeout: config.ShutdownTimeout,
		logger:          log.With(logger.String("component", "http_server")),
	}

	lc.Append(fx.Hook{
		OnStart: httpServer.start,
		OnStop:  httpServer.stop,
	})

	return httpServer
}

func (s *HTTPServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	s.listener = listener

	s.logger.Info("starting HTTP server", logger.String("addr", listener.Addr().String()))

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped unexpectedly", logger.Error(err))
		}
	}()
	return nil
}

func (s *HTTPServer) stop(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr is the bound address, empty before start
func (s *HTTPServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
