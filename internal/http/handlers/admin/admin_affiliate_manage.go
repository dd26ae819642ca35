package admin

import (
	"github.com/storefront/internal/http/response"
	"github.com/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// AffiliateCommissionRequest 佣金比例更新请求
type AffiliateCommissionRequest struct {
	Rate service.NumberField `json:"rate"`
}

// UpdateAffiliateCommission 调整单个推广员佣金比例
func (h *Handler) UpdateAffiliateCommission(c *gin.Context) {
	id, ok := parseIDParam(c, "error.affiliate_not_found")
	if !ok {
		return
	}
	var req AffiliateCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if !req.Rate.Valid {
		respondError(c, response.CodeBadRequest, "error.invalid_rate", nil)
		return
	}
	affiliate, err := h.AffiliateService.SetCommissionRate(c.Request.Context(), id, req.Rate.Float64())
	if err != nil {
		respondAffiliateError(c, err)
		return
	}
	response.SuccessWithMsg(c, "Commission rate updated", gin.H{"affiliate": affiliate})
}

// ApproveAffiliate 审核通过
func (h *Handler) ApproveAffiliate(c *gin.Context) {
	id, ok := parseIDParam(c, "error.affiliate_not_found")
	if !ok {
		return
	}
	affiliate, err := h.AffiliateService.Approve(c.Request.Context(), id)
	if err != nil {
		respondAffiliateError(c, err)
		return
	}
	response.SuccessWithMsg(c, "Affiliate approved", gin.H{"affiliate": affiliate})
}

// SuspendAffiliate 停用推广员
func (h *Handler) SuspendAffiliate(c *gin.Context) {
	id, ok := parseIDParam(c, "error.affiliate_not_found")
	if !ok {
		return
	}
	affiliate, err := h.AffiliateService.Suspend(c.Request.Context(), id)
	if err != nil {
		respondAffiliateError(c, err)
		return
	}
	response.SuccessWithMsg(c, "Affiliate suspended", gin.H{"affiliate": affiliate})
}

// ProcessAffiliatePayout 手动结算
func (h *Handler) ProcessAffiliatePayout(c *gin.Context) {
	id, ok := parseIDParam(c, "error.affiliate_not_found")
	if !ok {
		return
	}
	payout, err := h.AffiliateService.ProcessPayout(c.Request.Context(), id, service.PayoutTriggerManual)
	if err != nil {
		respondAffiliateError(c, err)
		return
	}
	requestLog(c).Infow("admin_affiliate_payout",
		"admin_id", getAdminID(c),
		"affiliate_id", id,
		"payout_id", payout.ID,
	)
	response.SuccessWithMsg(c, "Payout processed", gin.H{"payout": payout})
}
