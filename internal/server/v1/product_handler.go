package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/cachekit/internal/catalog"
	"github.com/nulzo/cachekit/internal/server/validator"
	"github.com/nulzo/cachekit/pkg/api"
)

type ProductService interface {
	Find(ctx context.Context, sku string) (*catalog.Product, error)
	Save(ctx context.Context, p catalog.Product) (*catalog.Product, error)
}

type ProductHandler struct {
	service ProductService
}

func NewProductHandler(service ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// Get reads a product through the catalog.Find call site.
//
// GET /v1/products/:sku
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.service.Find(c.Request.Context(), c.Param("sku"))
	if err != nil {
		_ = c.Error(productError(err))
		return
	}
	c.JSON(http.StatusOK, p)
}

// Put stores a product through the catalog.Save call site.
//
// PUT /v1/products/:sku
func (h *ProductHandler) Put(c *gin.Context) {
	var req api.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	p, err := h.service.Save(c.Request.Context(), catalog.Product{
		SKU:   c.Param("sku"),
		Name:  req.Name,
		Price: req.Price,
	})
	if err != nil {
		_ = c.Error(productError(err))
		return
	}
	c.JSON(http.StatusOK, p)
}

func productError(err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return api.NotFound(err.Error())
	case errors.Is(err, catalog.ErrInvalidProduct):
		return api.BadRequest(err.Error())
	default:
		return err
	}
}
