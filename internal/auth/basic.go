// Package auth implements the Basic-auth access gate for the proxy.
package auth

import (
	"encoding/base64"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Gate validates HTTP Basic credentials against a statically configured
// username/password pair. A Gate with no credentials authorizes everything.
type Gate struct {
	username string
	password string
	enabled  bool
}

// NewGate creates a Gate. Authentication is enabled only when both username
// and password are non-empty.
func NewGate(username, password string) *Gate {
	return &Gate{
		username: username,
		password: password,
		enabled:  username != "" && password != "",
	}
}

// Enabled reports whether credentials are configured.
func (g *Gate) Enabled() bool {
	return g.enabled
}

// Authorize checks the Proxy-Authorization header, falling back to
// Authorization, for Basic credentials matching the configured pair.
// Malformed values (wrong scheme, bad base64, missing colon, non-UTF-8
// bytes) are authentication failures, never errors.
func (g *Gate) Authorize(h http.Header) bool {
	if !g.enabled {
		return true
	}

	raw := h.Get("Proxy-Authorization")
	if raw == "" {
		raw = h.Get("Authorization")
	}
	if raw == "" {
		return false
	}

	scheme, encoded, ok := strings.Cut(raw, " ")
	if !ok || !strings.EqualFold(scheme, "Basic") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || !utf8.Valid(decoded) {
		return false
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return false
	}

	return username == g.username && password == g.password
}
