package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/nulzo/cachekit/internal/config"
	"github.com/nulzo/cachekit/internal/gateway"
	"github.com/nulzo/cachekit/internal/server/middleware"
	v1 "github.com/nulzo/cachekit/internal/server/v1"
	"github.com/nulzo/cachekit/internal/server/validator"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	router   *gin.Engine
	config   *config.Config
	logger   *zap.Logger
	gw       *gateway.Gateway
	products v1.ProductService
}

func New(cfg *config.Config, logger *zap.Logger, gw *gateway.Gateway, products v1.ProductService) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.InitValidator()

	engine := gin.New()
	engine.Use(ginzap.RecoveryWithZap(logger, true))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(logger))
	if cfg.Tracing.Enabled {
		engine.Use(middleware.Tracing(cfg.Tracing.ServiceName))
	}

	s := &Server{
		router:   engine,
		config:   cfg,
		logger:   logger,
		gw:       gw,
		products: products,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.config.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("Shutting down server")
	return srv.Shutdown(shutdownCtx)
}
