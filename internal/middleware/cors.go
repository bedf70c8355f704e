package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cors-proxy-go/internal/cors"
)

// CORSHeaders returns an Echo middleware that injects the CORS header set
// into every response. The policy is applied in a response-before hook so it
// runs after handlers have copied upstream headers, overriding any
// Access-Control values the target sent.
func CORSHeaders(policy cors.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get("Origin")
			c.Response().Before(func() {
				policy.Apply(c.Response().Header(), origin)
			})
			return next(c)
		}
	}
}

// Preflight returns an Echo middleware that short-circuits OPTIONS requests
// with 204 No Content and no body. It runs before authentication and target
// resolution: browsers cannot attach credentials to preflight requests.
func Preflight() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}
