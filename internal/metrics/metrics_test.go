package metrics

import (
	"net/http"
	"testing"
)

func TestNew_RegistersCollectors(t *testing.T) {
	m := New()

	m.RequestsTotal.WithLabelValues("GET", "200", "relay").Inc()
	m.RequestsInFlight.Inc()
	m.UpstreamResponses.WithLabelValues("GET", "502").Inc()

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}

	for _, name := range []string{
		"cors_proxy_http_requests_total",
		"cors_proxy_http_requests_in_flight",
		"cors_proxy_upstream_responses_total",
	} {
		if !found[name] {
			t.Errorf("metric %q not registered", name)
		}
	}
}

func TestNormalizeMethod(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{"GET", "GET"},
		{"POST", "POST"},
		{"OPTIONS", "OPTIONS"},
		{"PROPFIND", "other"},
		{"get", "other"},
	}

	for _, tt := range tests {
		if got := NormalizeMethod(tt.method); got != tt.want {
			t.Errorf("NormalizeMethod(%q) = %q, want %q", tt.method, got, tt.want)
		}
	}
}

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/health", "/health"},
		{http.MethodGet, "/metrics", "/metrics"},
		{http.MethodGet, "/api/v1/users", "relay"},
		{http.MethodGet, "/", "relay"},
		{http.MethodOptions, "/anything", "preflight"},
		{http.MethodOptions, "/health", "preflight"},
	}

	for _, tt := range tests {
		if got := NormalizeRoute(tt.method, tt.path); got != tt.want {
			t.Errorf("NormalizeRoute(%q, %q) = %q, want %q", tt.method, tt.path, got, tt.want)
		}
	}
}
