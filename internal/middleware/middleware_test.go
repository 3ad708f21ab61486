package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestRequestSizeLimit(t *testing.T) {
	router := chi.NewRouter()
	router.Use(RequestSizeLimit(64 * 1024))
	router.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		bodySize int64
		wantCode int
	}{
		{"normal form post", 2 * 1024, http.StatusOK},
		{"oversized form post", 128 * 1024, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := strings.Repeat("x", int(tt.bodySize))
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(body)))
			req.ContentLength = tt.bodySize

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("got status %d, want %d", rr.Code, tt.wantCode)
			}
			if header := rr.Header().Get(MaxRequestSizeHeader); header != "65536" {
				t.Errorf("%s = %q, want 65536", MaxRequestSizeHeader, header)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	router := chi.NewRouter()
	router.Use(RateLimit(10, 5))
	router.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	post := func(remoteAddr string, header http.Header) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = remoteAddr
		for k, v := range header {
			req.Header[k] = v
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 5; i++ {
		if rr := post("10.0.0.1:4000", nil); rr.Code != http.StatusOK {
			t.Errorf("request %d: got status %d, want %d", i+1, rr.Code, http.StatusOK)
		}
	}

	t.Run("json client", func(t *testing.T) {
		rr := post("10.0.0.1:4001", http.Header{"Accept": {"application/json"}})
		if rr.Code != http.StatusTooManyRequests {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusTooManyRequests)
		}
		if !strings.Contains(rr.Body.String(), "rate_limit_exceeded") {
			t.Errorf("expected rate_limit_exceeded error code, got %s", rr.Body.String())
		}
		if rr.Header().Get("Retry-After") == "" {
			t.Error("Retry-After not set")
		}
	})

	t.Run("htmx form", func(t *testing.T) {
		rr := post("10.0.0.1:4002", http.Header{"Hx-Request": {"true"}})
		if rr.Code != http.StatusOK {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusOK)
		}
		if !strings.Contains(rr.Body.String(), "Too many attempts") {
			t.Errorf("expected an alert fragment, got %s", rr.Body.String())
		}
	})

	t.Run("other clients are not limited", func(t *testing.T) {
		if rr := post("10.0.0.2:4000", nil); rr.Code != http.StatusOK {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusOK)
		}
	})
}

func TestRateLimitDisabled(t *testing.T) {
	router := chi.NewRouter()
	router.Use(RateLimit(0, 0))
	router.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 50; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d was limited with rate limiting disabled", i+1)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		environment string
		wantHSTS    bool
	}{
		{"dev", false},
		{"prod", true},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			handler := SecurityHeaders(tt.environment)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

			if rr.Header().Get("X-Frame-Options") != "DENY" {
				t.Error("X-Frame-Options not set")
			}
			if got := rr.Header().Get("Strict-Transport-Security") != ""; got != tt.wantHSTS {
				t.Errorf("HSTS set = %v, want %v", got, tt.wantHSTS)
			}
		})
	}
}
