package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Version is a string type for dependency injection of the build version.
type Version string

// StartTime is the process start timestamp, captured once at startup and
// injected for uptime reporting.
type StartTime time.Time

type healthResponse struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	Uptime  float64 `json:"uptime"`
}

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	version Version
	start   time.Time
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(v Version, start StartTime) *HealthHandler {
	return &HealthHandler{version: v, start: time.Time(start)}
}

// Health reports liveness, build version, and process uptime in seconds.
// It answers any method and requires no authentication.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Version: string(h.version),
		Uptime:  time.Since(h.start).Seconds(),
	})
}
