// Package cors computes the CORS response header set from the configured
// origin policy and the request's Origin header.
package cors

import (
	"net/http"
	"strings"
)

const allowOriginHeader = "Access-Control-Allow-Origin"

// staticHeaders are emitted on every response regardless of origin policy.
var staticHeaders = map[string]string{
	"Access-Control-Allow-Methods":     "GET, POST, PUT, DELETE, PATCH, OPTIONS, HEAD",
	"Access-Control-Allow-Headers":     "*",
	"Access-Control-Allow-Credentials": "true",
	"Access-Control-Max-Age":           "86400",
}

type policyKind int

const (
	kindWildcard policyKind = iota
	kindExact
	kindSet
)

// Policy decides which Access-Control-Allow-Origin value (if any) a response
// carries. It is one of three variants: wildcard (echo the request origin),
// exact (always emit a fixed origin), or set (emit the request origin only
// when it is a member).
type Policy struct {
	kind    policyKind
	exact   string
	allowed map[string]struct{}
}

// ParsePolicy builds a Policy from the configured origin string and optional
// origin list. A non-empty list always yields a set policy. Otherwise "*"
// (or empty) yields the wildcard policy, a comma-separated origin string
// yields a set, and anything else is an exact origin.
func ParsePolicy(origin string, allowed []string) Policy {
	if len(allowed) > 0 {
		return setPolicy(allowed)
	}
	if origin == "" || origin == "*" {
		return Policy{kind: kindWildcard}
	}
	if strings.Contains(origin, ",") {
		parts := strings.Split(origin, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return setPolicy(parts)
	}
	return Policy{kind: kindExact, exact: origin}
}

func setPolicy(origins []string) Policy {
	m := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o != "" {
			m[o] = struct{}{}
		}
	}
	return Policy{kind: kindSet, allowed: m}
}

// AllowOrigin returns the Access-Control-Allow-Origin value for the given
// request origin and whether the header should be emitted at all.
func (p Policy) AllowOrigin(requestOrigin string) (string, bool) {
	switch p.kind {
	case kindExact:
		return p.exact, true
	case kindSet:
		if _, ok := p.allowed[requestOrigin]; ok {
			return requestOrigin, true
		}
		return "", false
	default:
		if requestOrigin == "" {
			return "*", true
		}
		return requestOrigin, true
	}
}

// Apply writes the CORS header set onto h, overriding any Access-Control
// values already present (e.g. copied from an upstream response). When the
// policy withholds the allow-origin header, any copied value is removed so
// the response carries none.
func (p Policy) Apply(h http.Header, requestOrigin string) {
	if v, ok := p.AllowOrigin(requestOrigin); ok {
		h.Set(allowOriginHeader, v)
	} else {
		h.Del(allowOriginHeader)
	}
	for k, v := range staticHeaders {
		h.Set(k, v)
	}
}
