package server

import (
	"github.com/nulzo/cachekit/internal/server/middleware"
	v1 "github.com/nulzo/cachekit/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.ErrorHandler(s.logger))

	healthHandler := v1.NewHealthHandler(s.gw.Manager)
	s.router.GET("/health", healthHandler.Health)

	backends := make(map[string]string, len(s.config.Caches))
	for _, cc := range s.config.Caches {
		backends[cc.Name] = cc.Backend
	}

	limiter := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.logger)

	api := s.router.Group("/v1")
	api.Use(limiter.Middleware())
	{
		caches := v1.NewCacheHandler(s.gw, backends)
		api.GET("/caches", caches.List)
		api.DELETE("/caches/:name", caches.Flush)
		api.GET("/caches/:name/entries/:key", caches.GetEntry)
		api.DELETE("/caches/:name/entries/:key", caches.DeleteEntry)

		if s.products != nil {
			products := v1.NewProductHandler(s.products)
			api.GET("/products/:sku", products.Get)
			api.PUT("/products/:sku", products.Put)
		}
	}
}
