package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorUsesCodeAsHTTPStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	Forbidden(c, "forbidden")

	if w.Code != http.StatusForbidden {
		t.Fatalf("unexpected http status: %d", w.Code)
	}
	var body struct {
		StatusCode int               `json:"status_code"`
		Msg        string            `json:"msg"`
		Data       map[string]string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body.StatusCode != CodeForbidden || body.Msg != "forbidden" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Data["request_id"] != "req-1" {
		t.Fatalf("expected request id in data, got %+v", body.Data)
	}
}

func TestHTTPStatusClampsUnknownCodes(t *testing.T) {
	cases := map[int]int{
		CodeOK:         200,
		CodeBadRequest: 400,
		42:             500,
		700:            500,
	}
	for code, want := range cases {
		if got := HTTPStatus(code); got != want {
			t.Fatalf("HTTPStatus(%d)=%d want %d", code, got, want)
		}
	}
}
