package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"cors-proxy-go/internal/metrics"
)

func counterValue(t *testing.T, m *metrics.Metrics, name, labelName, labelValue string) (float64, bool) {
	t.Helper()

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == labelName && lp.GetValue() == labelValue {
					return metric.GetCounter().GetValue(), true
				}
			}
		}
	}
	return 0, false
}

func TestMetricsMiddleware_CountsRelayRequests(t *testing.T) {
	m := metrics.New()

	e := echo.New()
	e.Use(MetricsMiddleware(m))
	e.Any("/*", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/some/target/path", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	v, found := counterValue(t, m, "cors_proxy_http_requests_total", "route", "relay")
	if !found {
		t.Fatal("expected cors_proxy_http_requests_total with route=relay")
	}
	if v != 1 {
		t.Errorf("counter value = %v, want 1", v)
	}
}

func TestMetricsMiddleware_LabelsPreflight(t *testing.T) {
	m := metrics.New()

	e := echo.New()
	e.Use(MetricsMiddleware(m))
	e.Use(Preflight())
	e.Any("/*", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodOptions, "/whatever", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	if _, found := counterValue(t, m, "cors_proxy_http_requests_total", "route", "preflight"); !found {
		t.Error("expected cors_proxy_http_requests_total with route=preflight")
	}
}

func TestMetricsMiddleware_ResolvesHTTPErrorStatus(t *testing.T) {
	m := metrics.New()

	e := echo.New()
	e.Use(MetricsMiddleware(m))
	e.GET("/health", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusServiceUnavailable)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if _, found := counterValue(t, m, "cors_proxy_http_requests_total", "status_code", "503"); !found {
		t.Error("expected counter with status_code=503 for HTTPError")
	}
}
