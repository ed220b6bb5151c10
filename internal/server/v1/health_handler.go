package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/cachekit/internal/cache"
	"github.com/nulzo/cachekit/pkg/api"
)

type HealthHandler struct {
	manager *cache.Manager
}

func NewHealthHandler(manager *cache.Manager) *HealthHandler {
	return &HealthHandler{manager: manager}
}

// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok", Caches: h.manager.Names()})
}
