package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"cors-proxy-go/internal/auth"
	"cors-proxy-go/internal/model"
	"cors-proxy-go/internal/service"
)

// relayBufferSize bounds the per-request copy buffer so arbitrarily large
// upstream bodies stream without being held in memory.
const relayBufferSize = 8192

const missingTargetBody = "Missing target URL. Use X-Target-URL header or ?url= parameter"

// RelayHandler forwards inbound requests to their client-chosen targets.
type RelayHandler struct {
	service *service.RelayService
	gate    *auth.Gate
	logger  *slog.Logger
}

// NewRelayHandler creates a RelayHandler.
func NewRelayHandler(svc *service.RelayService, gate *auth.Gate, logger *slog.Logger) *RelayHandler {
	return &RelayHandler{
		service: svc,
		gate:    gate,
		logger:  logger.With("component", "relay_handler"),
	}
}

// Handle relays the request to the resolved target URL and streams the
// response back. Failure handling: missing/invalid credentials yield 401,
// a missing target yields 400, transport failures reaching the target yield
// a 500 JSON envelope, and upstream HTTP error statuses pass through
// untouched.
func (h *RelayHandler) Handle(c echo.Context) error {
	req := c.Request()

	if !h.gate.Authorize(req.Header) {
		c.Response().Header().Set("WWW-Authenticate", `Basic realm="Proxy"`)
		return c.String(http.StatusUnauthorized, "Unauthorized")
	}

	target, ok := service.ResolveTarget(req.Header, req.URL.Query())
	if !ok {
		return c.String(http.StatusBadRequest, missingTargetBody)
	}

	h.logger.Debug("relay start", "method", req.Method, "target", target)

	rr := &model.RelayRequest{
		Ctx:           req.Context(),
		Method:        req.Method,
		Header:        req.Header,
		Body:          req.Body,
		ContentLength: req.ContentLength,
	}

	resp, err := h.service.Forward(rr, target)
	if err != nil {
		h.logger.Debug("relay failed", "method", req.Method, "target", target, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Proxy error",
			"message": err.Error(),
		})
	}
	defer func() { _ = resp.Body.Close() }()

	// Copy filtered upstream headers; the CORS middleware's response hook
	// overrides the Access-Control set just before the status is written.
	for key, vals := range resp.Header {
		for _, v := range vals {
			c.Response().Header().Add(key, v)
		}
	}

	c.Response().WriteHeader(resp.StatusCode)

	// Stream the upstream body in bounded chunks. If the copy fails
	// mid-stream (e.g. client disconnect, network error), the status code
	// has already been sent, so the client receives a truncated response
	// with the original status. We log the error for observability.
	buf := make([]byte, relayBufferSize)
	if _, err := io.CopyBuffer(c.Response(), resp.Body, buf); err != nil {
		h.logger.Error("streaming response body",
			"err", err,
			"target", target,
		)
		return nil
	}

	h.logger.Debug("relay done", "method", req.Method, "target", target, "status", resp.StatusCode)
	return nil
}
