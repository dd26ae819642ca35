package public

import (
	"strconv"
	"strings"

	"github.com/storefront/internal/http/response"
	"github.com/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrder 游客下单，affiliateId 查询参数触发佣金累计
func (h *Handler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	var affiliateID *int
	if raw := strings.TrimSpace(c.Query("affiliateId")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		affiliateID = &id
	}

	order, err := h.OrderService.Create(c.Request.Context(), req, affiliateID)
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}
	response.Created(c, gin.H{"order": order})
}
