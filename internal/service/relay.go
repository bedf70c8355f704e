// Package service implements the core relay forwarding logic.
package service

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"cors-proxy-go/internal/client"
	"cors-proxy-go/internal/model"
)

// skipRequestHeaders are inbound headers never forwarded to the target
// (canonical form). Host addresses the proxy, Connection is hop-by-hop,
// Proxy-Authorization and X-Target-URL are proxy control inputs, and
// Origin/Referer identify the browser page rather than an API caller.
var skipRequestHeaders = map[string]bool{
	"Host":                true,
	"Connection":          true,
	"Proxy-Authorization": true,
	"X-Target-Url":        true,
	"Origin":              true,
	"Referer":             true,
}

// skipResponseHeaders are upstream headers never returned to the client
// (canonical form); both are connection-level and re-derived by the server.
var skipResponseHeaders = map[string]bool{
	"Connection":        true,
	"Transfer-Encoding": true,
}

// ResolveTarget returns the target URL from the X-Target-URL header, falling
// back to the url query parameter. The second return value is false when
// neither is present.
func ResolveTarget(header http.Header, query url.Values) (string, bool) {
	if target := header.Get("X-Target-URL"); target != "" {
		return target, true
	}
	if target := query.Get("url"); target != "" {
		return target, true
	}
	return "", false
}

// RelayService forwards inbound requests to their resolved targets.
type RelayService struct {
	client *client.UpstreamClient
	logger *slog.Logger
}

// NewRelayService creates a RelayService.
func NewRelayService(c *client.UpstreamClient, logger *slog.Logger) *RelayService {
	return &RelayService{
		client: c,
		logger: logger.With("component", "relay_service"),
	}
}

// Forward sends a RelayRequest to the given target URL and returns the
// response with connection-level headers stripped. The caller is responsible
// for closing the response body. Upstream HTTP error statuses are returned as
// ordinary responses; only transport-level failures produce an error.
func (s *RelayService) Forward(rr *model.RelayRequest, target string) (*model.RelayResponse, error) {
	header := filterRequestHeaders(rr.Header)

	// Attach the body only when the inbound request declared a length;
	// requests without Content-Length are forwarded bodiless.
	var body io.Reader
	if rr.ContentLength > 0 {
		body = rr.Body
	}

	s.logger.Debug("forwarding request",
		"method", rr.Method,
		"target", target,
	)

	resp, err := s.client.DoStream(rr.Ctx, rr.Method, target, header, body, rr.ContentLength)
	if err != nil {
		return nil, fmt.Errorf("forward to target: %w", err)
	}

	resp.Header = filterResponseHeaders(resp.Header)
	return resp, nil
}

func filterRequestHeaders(src http.Header) http.Header {
	dst := make(http.Header, len(src))
	for key, vals := range src {
		if skipRequestHeaders[http.CanonicalHeaderKey(key)] {
			continue
		}
		dst[http.CanonicalHeaderKey(key)] = append([]string(nil), vals...)
	}
	return dst
}

func filterResponseHeaders(src http.Header) http.Header {
	dst := make(http.Header, len(src))
	for key, vals := range src {
		if skipResponseHeaders[http.CanonicalHeaderKey(key)] {
			continue
		}
		dst[key] = vals
	}
	return dst
}
