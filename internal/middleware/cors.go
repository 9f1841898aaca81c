package middleware

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/samber/lo"
)

const (
	allowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	allowHeaders = "Content-Type, Authorization, X-Requested-With, X-Request-ID"
)

// CorsMiddleware origins 为空时允许任意来源但不携带凭证；
// 否则只回显白名单内的 Origin
func CorsMiddleware(origins ...string) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		h := &c.Response.Header
		if len(origins) == 0 {
			h.Set("Access-Control-Allow-Origin", "*")
		} else if origin := string(c.Request.Header.Peek("Origin")); lo.Contains(origins, origin) {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Max-Age", "86400")

		if string(c.Request.Method()) == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next(ctx)
	}
}
