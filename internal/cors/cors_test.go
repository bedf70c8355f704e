package cors

import (
	"net/http"
	"testing"
)

func TestParsePolicy_AllowOrigin(t *testing.T) {
	tests := []struct {
		name      string
		origin    string
		allowed   []string
		reqOrigin string
		wantValue string
		wantEmit  bool
	}{
		{
			name:      "wildcard echoes request origin",
			origin:    "*",
			reqOrigin: "https://a.test",
			wantValue: "https://a.test",
			wantEmit:  true,
		},
		{
			name:      "wildcard falls back to star without origin",
			origin:    "*",
			reqOrigin: "",
			wantValue: "*",
			wantEmit:  true,
		},
		{
			name:      "empty origin config behaves as wildcard",
			origin:    "",
			reqOrigin: "https://a.test",
			wantValue: "https://a.test",
			wantEmit:  true,
		},
		{
			name:      "exact origin emitted regardless of request origin",
			origin:    "https://a.test",
			reqOrigin: "https://b.test",
			wantValue: "https://a.test",
			wantEmit:  true,
		},
		{
			name:      "set member echoed",
			allowed:   []string{"https://a.test"},
			reqOrigin: "https://a.test",
			wantValue: "https://a.test",
			wantEmit:  true,
		},
		{
			name:      "set non-member omitted",
			allowed:   []string{"https://a.test"},
			reqOrigin: "https://b.test",
			wantEmit:  false,
		},
		{
			name:      "set with empty request origin omitted",
			allowed:   []string{"https://a.test"},
			reqOrigin: "",
			wantEmit:  false,
		},
		{
			name:      "comma-separated origin string is a set",
			origin:    "https://a.test, https://b.test",
			reqOrigin: "https://b.test",
			wantValue: "https://b.test",
			wantEmit:  true,
		},
		{
			name:      "comma-separated set non-member omitted",
			origin:    "https://a.test,https://b.test",
			reqOrigin: "https://c.test",
			wantEmit:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePolicy(tt.origin, tt.allowed)
			got, emit := p.AllowOrigin(tt.reqOrigin)
			if emit != tt.wantEmit {
				t.Fatalf("AllowOrigin() emit = %v, want %v", emit, tt.wantEmit)
			}
			if emit && got != tt.wantValue {
				t.Errorf("AllowOrigin() = %q, want %q", got, tt.wantValue)
			}
		})
	}
}

func TestPolicy_Apply_StaticHeaders(t *testing.T) {
	h := make(http.Header)
	ParsePolicy("*", nil).Apply(h, "https://a.test")

	tests := []struct {
		key  string
		want string
	}{
		{"Access-Control-Allow-Origin", "https://a.test"},
		{"Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, OPTIONS, HEAD"},
		{"Access-Control-Allow-Headers", "*"},
		{"Access-Control-Allow-Credentials", "true"},
		{"Access-Control-Max-Age", "86400"},
	}

	for _, tt := range tests {
		if got := h.Get(tt.key); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestPolicy_Apply_OverridesUpstreamValues(t *testing.T) {
	h := make(http.Header)
	h.Set("Access-Control-Allow-Origin", "https://upstream.test")
	h.Add("Access-Control-Allow-Origin", "https://upstream2.test")

	ParsePolicy("https://a.test", nil).Apply(h, "https://b.test")

	vals := h.Values("Access-Control-Allow-Origin")
	if len(vals) != 1 || vals[0] != "https://a.test" {
		t.Errorf("Access-Control-Allow-Origin = %v, want [https://a.test]", vals)
	}
}

func TestPolicy_Apply_RemovesHeaderForNonMember(t *testing.T) {
	h := make(http.Header)
	h.Set("Access-Control-Allow-Origin", "https://upstream.test")

	ParsePolicy("", []string{"https://a.test"}).Apply(h, "https://b.test")

	if vals := h.Values("Access-Control-Allow-Origin"); len(vals) != 0 {
		t.Errorf("Access-Control-Allow-Origin = %v, want omitted", vals)
	}
	if h.Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("static CORS headers should still be emitted for non-member origins")
	}
}
