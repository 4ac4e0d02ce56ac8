package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestContext(remoteAddr string, headers map[string]string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.RemoteAddr = remoteAddr
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return c
}

func TestGetClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			"remote addr only",
			"203.0.113.7:54321",
			nil,
			"203.0.113.7",
		},
		{
			"forwarded-for chain takes the first hop",
			"10.0.0.1:1234",
			map[string]string{"X-Forwarded-For": "198.51.100.9, 10.0.0.2, 10.0.0.1"},
			"198.51.100.9",
		},
		{
			"invalid forwarded-for falls through to real-ip",
			"10.0.0.1:1234",
			map[string]string{"X-Forwarded-For": "not-an-ip", "X-Real-Ip": "198.51.100.3"},
			"198.51.100.3",
		},
		{
			"cloudflare header",
			"10.0.0.1:1234",
			map[string]string{"CF-Connecting-IP": "198.51.100.5"},
			"198.51.100.5",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestContext(tc.remoteAddr, tc.headers)
			if got := getClientIP(c); got != tc.want {
				t.Errorf("getClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAuditMiddlewareSetsContextIP(t *testing.T) {
	c := newTestContext("203.0.113.7:54321", nil)
	AuditMiddleware()(c)

	if got := GetIPFromContext(c); got != "203.0.113.7" {
		t.Errorf("GetIPFromContext = %q, want 203.0.113.7", got)
	}
}
