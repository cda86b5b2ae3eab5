package api

import (
	"log"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/otel/trace"

	"lunelle.GO/app"
	"lunelle.GO/core/auth"
	"lunelle.GO/core/registry"
	"lunelle.GO/core/visitor"
)

// NewServer builds the Echo instance: shared middleware, the visitor cookie,
// the /api group behind auth, then every registered module and route.
func NewServer(svc *app.Services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())
	e.Use(RequestDuration(svc.Config.Debug))
	e.Use(visitor.Middleware(svc.Cookies, svc.Carts))

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.Middleware())

	ApplyModules(apiGroup, svc)
	ApplyRoutes(e, svc)
	return e
}

// RequestDuration sets X-Request-Duration-ms on every response, logging it when verbose.
// Traced requests also get X-Trace-Id.
func RequestDuration(verbose bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			c.Set(registry.KeyRequestStart, start)
			c.Response().Before(func() {
				duration := time.Since(start).Milliseconds()
				c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
				if sc := trace.SpanContextFromContext(c.Request().Context()); sc.HasTraceID() {
					c.Response().Header().Set("X-Trace-Id", sc.TraceID().String())
				}
			})
			err := next(c)
			if verbose {
				log.Printf("Request duration: %d ms", time.Since(start).Milliseconds())
			}
			return err
		}
	}
}

// Elapsed returns milliseconds since the request entered RequestDuration.
func Elapsed(c echo.Context) int64 {
	if start, ok := c.Get(registry.KeyRequestStart).(time.Time); ok {
		return time.Since(start).Milliseconds()
	}
	return 0
}
