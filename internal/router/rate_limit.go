package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/storefront/internal/http/response"
	"github.com/storefront/internal/i18n"
	"github.com/storefront/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 从请求提取限流主体
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	// BlockSeconds 超限后封禁时长，0 表示仅按窗口计数
	BlockSeconds int
	MessageKey   string
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

func (r RateLimitRule) messageKey() string {
	if key := strings.TrimSpace(r.MessageKey); key != "" {
		return key
	}
	return "error.too_many_requests"
}

var errRateLimitReply = errors.New("unexpected rate limit reply")

// KEYS[1] 计数 key，KEYS[2] 封禁 key；ARGV 依次为窗口秒数、上限、封禁秒数
// 返回 {计数, 剩余秒数}，封禁期间计数为 -1
var rateLimitScript = redis.NewScript(`
local blocked = redis.call("TTL", KEYS[2])
if blocked > 0 then
	return {-1, blocked}
end
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
local block = tonumber(ARGV[3])
if block > 0 and current > tonumber(ARGV[2]) then
	redis.call("SET", KEYS[2], "1", "EX", block)
	redis.call("DEL", KEYS[1])
	return {current, block}
end
return {current, ttl}
`)

// rateLimitVerdict 单次计数结果
type rateLimitVerdict struct {
	Allowed     bool
	WaitSeconds int
}

func evaluateRateLimit(rule RateLimitRule, reply interface{}) (rateLimitVerdict, error) {
	values, ok := reply.([]interface{})
	if !ok || len(values) < 2 {
		return rateLimitVerdict{}, errRateLimitReply
	}
	count, ok := toInt64(values[0])
	if !ok {
		return rateLimitVerdict{}, errRateLimitReply
	}
	if count >= 0 && count <= int64(rule.MaxRequests) {
		return rateLimitVerdict{Allowed: true}, nil
	}
	wait, _ := toInt64(values[1])
	if wait < 1 {
		wait = int64(rule.WindowSeconds)
	}
	if wait < 1 {
		wait = 1
	}
	return rateLimitVerdict{WaitSeconds: int(wait)}, nil
}

func checkRateLimit(ctx context.Context, client *redis.Client, rule RateLimitRule, key string) (rateLimitVerdict, error) {
	reply, err := rateLimitScript.Run(ctx, client,
		[]string{key, key + ":blocked"},
		rule.WindowSeconds, rule.MaxRequests, rule.BlockSeconds,
	).Result()
	if err != nil {
		return rateLimitVerdict{}, err
	}
	return evaluateRateLimit(rule, reply)
}

// RateLimitMiddleware 基于 Redis 的登录注册限流；client 为 nil 时放行
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !rule.enabled() {
			c.Next()
			return
		}

		subject := ""
		if keyFunc != nil {
			subject = strings.TrimSpace(keyFunc(c))
		}
		if subject == "" {
			subject = c.ClientIP()
		}
		key := subject
		if rule.Prefix != "" {
			key = rule.Prefix + ":" + subject
		}

		verdict, err := checkRateLimit(c.Request.Context(), client, rule, key)
		if err != nil {
			logger.Errorw("rate_limit_check_failed", "key", key, "error", err)
			response.Error(c, response.CodeInternal, i18n.T(i18n.ResolveLocale(c), "error.rate_limit_unavailable"))
			c.Abort()
			return
		}
		if !verdict.Allowed {
			c.Header("Retry-After", strconv.Itoa(verdict.WaitSeconds))
			response.Error(c, response.CodeTooManyRequests, i18n.Sprintf(i18n.ResolveLocale(c), rule.messageKey(), verdict.WaitSeconds))
			c.Abort()
			return
		}
		c.Next()
	}
}

// KeyByIP 按客户端 IP 限流
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 按 JSON 字段（小写）加 IP 限流，字段缺失时退化为 IP
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(readJSONField(c, field))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

// readJSONField 读取请求体中的字符串字段并还原请求体
func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var payload map[string]json.RawMessage
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return ""
	}
	var text string
	if err := json.Unmarshal(payload[field], &text); err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
