package public

import (
	"github.com/storefront/internal/http/response"
	"github.com/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePaymentIntent 创建 Stripe 支付意图
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var req service.CreatePaymentIntentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.PaymentService.CreatePaymentIntent(c.Request.Context(), req)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	response.Success(c, result)
}
