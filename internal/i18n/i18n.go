package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	LocaleEN = "en-US"
	LocaleZH = "zh-CN"

	// DefaultLocale 未识别语言时的回退
	DefaultLocale = LocaleEN
)

// ResolveLocale 按 locale 查询参数、Accept-Language 顺序解析语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if q := strings.TrimSpace(c.Query("locale")); q != "" {
		return NormalizeLocale(q)
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		if locale, ok := matchLocale(tag); ok {
			return locale
		}
	}
	return DefaultLocale
}

// NormalizeLocale 规范化语言标识
func NormalizeLocale(raw string) string {
	if locale, ok := matchLocale(raw); ok {
		return locale
	}
	return DefaultLocale
}

func matchLocale(tag string) (string, bool) {
	lower := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
	switch {
	case lower == "zh" || strings.HasPrefix(lower, "zh-"):
		return LocaleZH, true
	case lower == "en" || strings.HasPrefix(lower, "en-"):
		return LocaleEN, true
	default:
		return "", false
	}
}

// T 翻译消息键，缺失时回退英文，再回退键本身
func T(locale, key string) string {
	if msgs, ok := catalog[NormalizeLocale(locale)]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
