package public

import (
	"github.com/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetAffiliateLink 生成推广链接
func (h *Handler) GetAffiliateLink(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	response.Success(c, gin.H{"link": h.AffiliateService.Link(userID, c.Param("productId"))})
}

// GetCommissionData 推广员佣金设置
func (h *Handler) GetCommissionData(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	data, err := h.AffiliateService.CommissionData(c.Request.Context(), userID)
	if err != nil {
		respondAffiliateError(c, err)
		return
	}
	response.Success(c, data)
}

// GetAffiliateStats 推广员统计
func (h *Handler) GetAffiliateStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	stats, err := h.AffiliateService.Stats(c.Request.Context(), userID)
	if err != nil {
		respondAffiliateError(c, err)
		return
	}
	response.Success(c, stats)
}
