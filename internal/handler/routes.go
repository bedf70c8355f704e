package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cors-proxy-go/internal/config"
	"cors-proxy-go/internal/metrics"
)

// RegisterRoutes wires all route handlers onto the Echo instance. The relay
// catch-all claims every path except /health and, when enabled, the metrics
// endpoint.
func RegisterRoutes(e *echo.Echo, cfg *config.Config, relay *RelayHandler, health *HealthHandler, m *metrics.Metrics) {
	e.Any("/health", health.Health)

	if cfg.Metrics.Enabled {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(
			promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}),
		))
	}

	e.Any("/", relay.Handle)
	e.Any("/*", relay.Handle)
}
