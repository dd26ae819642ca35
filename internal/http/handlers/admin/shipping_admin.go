package admin

import (
	"errors"

	handlershared "github.com/storefront/internal/http/handlers/shared"
	"github.com/storefront/internal/http/response"
	"github.com/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// ShippingPreview 运费预估
func (h *Handler) ShippingPreview(c *gin.Context) {
	var req service.ShippingPreviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	preview, err := h.ShippingService.Preview(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrShippingFailed) {
			handlershared.RespondUpstreamError(c, "error.shipping_failed", err)
			return
		}
		handlershared.RespondWithMappedError(c, err, shippingErrorRules, response.CodeInternal, "error.internal_error")
		return
	}
	response.Success(c, preview)
}
