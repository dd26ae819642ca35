package admin

import (
	"strconv"

	handlershared "github.com/storefront/internal/http/handlers/shared"
	"github.com/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// getAdminID 仅用于日志，鉴权由中间件保证
func getAdminID(c *gin.Context) int {
	return c.GetInt(handlershared.ContextKeyUserID)
}

// parseIDParam 解析路径 id，非法时按 notFoundKey 返回 404
func parseIDParam(c *gin.Context, notFoundKey string) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondError(c, response.CodeNotFound, notFoundKey, nil)
		return 0, false
	}
	return id, true
}
