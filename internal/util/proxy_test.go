package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewProxyFunc_Explicit(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.example:3128", "http://sproxy.example:3128", "")

	req := httptest.NewRequest(http.MethodGet, "http://target.example/page", nil)
	u, err := proxy(req)
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if u == nil || u.Host != "proxy.example:3128" {
		t.Errorf("unexpected proxy: %v", u)
	}

	req = httptest.NewRequest(http.MethodGet, "https://target.example/page", nil)
	u, err = proxy(req)
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if u == nil || u.Host != "sproxy.example:3128" {
		t.Errorf("unexpected https proxy: %v", u)
	}
}

func TestNewProxyFunc_NoProxyBypass(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.example:3128", "", "internal.example, other.example")

	tests := []struct {
		url    string
		bypass bool
	}{
		{"http://internal.example/page", true},
		{"http://sub.internal.example/page", true},
		{"http://external.example/page", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.url, nil)
		u, err := proxy(req)
		if err != nil {
			t.Fatalf("proxy(%s): %v", tt.url, err)
		}
		if tt.bypass && u != nil {
			t.Errorf("expected %s to bypass the proxy, got %v", tt.url, u)
		}
		if !tt.bypass && u == nil {
			t.Errorf("expected %s to use the proxy", tt.url)
		}
	}
}
