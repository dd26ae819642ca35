package admin

import (
	"github.com/storefront/internal/http/response"
	"github.com/storefront/internal/models"
	"github.com/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAffiliateSettings 获取推广设置（缺失字段补默认值）
func (h *Handler) GetAffiliateSettings(c *gin.Context) {
	setting, err := h.AffiliateSettingService.Get(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, setting)
}

// UpdateAffiliateSettings 合并更新推广设置
func (h *Handler) UpdateAffiliateSettings(c *gin.Context) {
	var req service.AffiliateSettingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	setting, err := h.AffiliateSettingService.Update(c.Request.Context(), req)
	if err != nil {
		respondAffiliateError(c, err)
		return
	}
	requestLog(c).Infow("admin_affiliate_settings_updated",
		"admin_id", getAdminID(c),
		"default_rate", setting.DefaultRate,
		"payout_schedule", setting.PayoutSchedule,
	)
	response.Success(c, gin.H{"settings": setting})
}

// GetAffiliateStats 推广员汇总统计
func (h *Handler) GetAffiliateStats(c *gin.Context) {
	stats, err := h.AffiliateService.AdminStats(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, stats)
}

// ListAffiliates 推广员列表
func (h *Handler) ListAffiliates(c *gin.Context) {
	affiliates, err := h.AffiliateService.List(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	if affiliates == nil {
		affiliates = []models.Affiliate{}
	}
	response.Success(c, affiliates)
}

// ListAffiliatePayouts 结算记录列表
func (h *Handler) ListAffiliatePayouts(c *gin.Context) {
	payouts, err := h.AffiliateService.ListPayouts(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	if payouts == nil {
		payouts = []models.AffiliatePayout{}
	}
	response.Success(c, payouts)
}

// ListOrphanReferrals 无归属推荐列表
func (h *Handler) ListOrphanReferrals(c *gin.Context) {
	orphans, err := h.AffiliateService.ListOrphans(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	if orphans == nil {
		orphans = []models.OrphanReferral{}
	}
	response.Success(c, orphans)
}
