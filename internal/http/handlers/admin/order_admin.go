package admin

import (
	"sort"

	handlershared "github.com/storefront/internal/http/handlers/shared"
	"github.com/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListOrders 订单列表（按 id 倒序分页）
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	orders, err := h.OrderService.List(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	rows, pagination := handlershared.Paginate(orders, page, pageSize)
	response.SuccessWithPage(c, rows, pagination)
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "error.order_not_found")
	if !ok {
		return
	}
	order, err := h.OrderService.Get(c.Request.Context(), id)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}
