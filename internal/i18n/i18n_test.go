package i18n

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestResolveLocaleFromHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]string{
		"zh-CN,zh;q=0.9":  LocaleZH,
		"en-GB,en;q=0.8":  LocaleEN,
		"fr-FR, zh;q=0.5": LocaleZH,
		"":                DefaultLocale,
	}
	for header, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/", nil)
		c.Request.Header.Set("Accept-Language", header)
		if got := ResolveLocale(c); got != want {
			t.Fatalf("ResolveLocale(%q)=%s want %s", header, got, want)
		}
	}
}

func TestTFallsBack(t *testing.T) {
	if got := T(LocaleZH, "error.not_found"); got != "资源不存在" {
		t.Fatalf("unexpected zh message: %s", got)
	}
	if got := T("de", "error.not_found"); got != "Resource not found" {
		t.Fatalf("unexpected fallback message: %s", got)
	}
	if got := T(LocaleEN, "missing.key"); got != "missing.key" {
		t.Fatalf("expected key fallback, got %s", got)
	}
	if got := Sprintf(LocaleEN, "error.too_many_requests", 30); got != "Too many requests, retry in 30 seconds" {
		t.Fatalf("unexpected formatted message: %s", got)
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	for key := range catalog[LocaleEN] {
		if _, ok := catalog[LocaleZH][key]; !ok {
			t.Fatalf("zh catalog missing key %s", key)
		}
	}
}
