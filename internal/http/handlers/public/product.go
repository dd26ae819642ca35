package public

import (
	"strconv"

	"github.com/storefront/internal/cache"
	handlershared "github.com/storefront/internal/http/handlers/shared"
	"github.com/storefront/internal/http/response"
	"github.com/storefront/internal/models"
	"github.com/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

var productErrorRules = []mappedHandlerError{
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
}

// GetProducts 商品列表（Redis 启用时走目录缓存）
func (h *Handler) GetProducts(c *gin.Context) {
	ctx := c.Request.Context()
	var cached []models.Product
	if hit, err := h.Cache.GetJSON(ctx, cache.CatalogProductsKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	products, err := h.ProductService.List(ctx)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	_ = h.Cache.SetJSON(ctx, cache.CatalogProductsKey, products, cache.CatalogTTL)
	response.Success(c, products)
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondError(c, response.CodeNotFound, "error.product_not_found", nil)
		return
	}
	ctx := c.Request.Context()
	var cached models.Product
	if hit, err := h.Cache.GetJSON(ctx, cache.CatalogProductKey(id), &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	product, err := h.ProductService.Get(ctx, id)
	if err != nil {
		handlershared.RespondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.internal_error")
		return
	}
	_ = h.Cache.SetJSON(ctx, cache.CatalogProductKey(id), product, cache.CatalogTTL)
	response.Success(c, product)
}
