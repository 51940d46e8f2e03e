package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opsboard/backend/config"
)

// Server wraps the HTTP server around the configured router.
type Server struct {
	http   *http.Server
	logger *zap.Logger
}

// New creates a server serving the given router on the configured address.
func New(cfg *config.Config, router *gin.Engine, logger *zap.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: router,
		},
		logger: logger,
	}
}

// Start serves until the listener fails or the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
