package shared

import (
	"github.com/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入上下文的键
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
)

// GetContextIntWithKeys 从上下文读取 int 值并统一处理错误响应。
func GetContextIntWithKeys(c *gin.Context, key, invalidKey string) (int, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case int:
		if v <= 0 {
			RespondError(c, response.CodeUnauthorized, invalidKey, nil)
			return 0, false
		}
		return v, true
	case float64:
		if v <= 0 {
			RespondError(c, response.CodeUnauthorized, invalidKey, nil)
			return 0, false
		}
		return int(v), true
	default:
		RespondError(c, response.CodeInternal, "error.internal_error", nil)
		return 0, false
	}
}

// GetUserID 当前登录用户 ID
func GetUserID(c *gin.Context) (int, bool) {
	return GetContextIntWithKeys(c, ContextKeyUserID, "error.token_invalid")
}

// GetUserRole 当前登录用户角色，未登录返回空串
func GetUserRole(c *gin.Context) string {
	return c.GetString(ContextKeyUserRole)
}
