package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/tradepilot/backend/pkg/config"
	"github.com/wonny/tradepilot/backend/pkg/logger"
)

// 후보 조회 API는 응답이 작아서 타임아웃을 짧게 잡는다
const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 20 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownDefault = 10 * time.Second
)

// Server wraps the HTTP listener serving the candidate API.
type Server struct {
	srv    *http.Server
	logger *logger.Logger
	addr   string
}

// New builds the API server around the given router.
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	addr := ":" + cfg.Port
	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
		logger: log.WithField("service", "tradepilot-api"),
		addr:   addr,
	}
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.addr).Info("API server listening")

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, shutdownDefault)
		defer cancel()
	}

	s.logger.Info("API server shutting down")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	return nil
}
