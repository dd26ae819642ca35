package admin

import (
	"github.com/storefront/internal/cache"
	"github.com/storefront/internal/http/response"
	"github.com/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateProduct 新增商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Create(c.Request.Context(), req)
	if err != nil {
		respondProductError(c, err)
		return
	}
	h.invalidateCatalog(c, product.ID)
	response.Created(c, gin.H{"product": product})
}

// UpdateProduct 合并更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "error.product_not_found")
	if !ok {
		return
	}
	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondProductError(c, err)
		return
	}
	h.invalidateCatalog(c, id)
	response.Success(c, gin.H{"product": product})
}

// DeleteProduct 删除商品，不存在时同样返回成功
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "error.product_not_found")
	if !ok {
		return
	}
	if err := h.ProductService.Delete(c.Request.Context(), id); err != nil {
		respondProductError(c, err)
		return
	}
	h.invalidateCatalog(c, id)
	response.Success(c, gin.H{"deleted": true})
}

func (h *Handler) invalidateCatalog(c *gin.Context, id int) {
	if err := h.Cache.Del(c.Request.Context(), cache.CatalogProductsKey, cache.CatalogProductKey(id)); err != nil {
		requestLog(c).Warnw("admin_catalog_cache_invalidate_failed", "product_id", id, "error", err)
	}
}
