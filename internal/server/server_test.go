package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pasc-cca/ccadash/internal/client"
	"github.com/pasc-cca/ccadash/internal/config"
	"github.com/pasc-cca/ccadash/internal/metrics"
	"github.com/pasc-cca/ccadash/internal/session"
)

// backend answers every CCA API call with the same status and body.
// It counts the calls and keeps the path and body of the last one.
type backend struct {
	calls  atomic.Int32
	server *httptest.Server

	mu       sync.Mutex
	lastPath string
	lastBody string
}

func (b *backend) last() (path, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastPath, b.lastBody
}

func newBackend(t *testing.T, status int, body string) *backend {
	t.Helper()
	b := &backend{}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		reqBody, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.lastPath, b.lastBody = r.URL.Path, string(reqBody)
		b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(b.server.Close)
	return b
}

func newTestServer(t *testing.T, b *backend) *Server {
	t.Helper()
	cfg := &config.Config{
		Environment:    "test",
		Host:           "127.0.0.1",
		Port:           3000,
		APIBaseURL:     b.server.URL,
		ErrorMode:      string(config.ErrorModeLenient),
		AllowedOrigins: []string{"http://localhost:3000"},
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	apiClient := client.New(client.Config{BaseURL: cfg.APIBaseURL, Timeout: 5 * time.Second}, session.NewMemoryStore(),
		client.WithLogger(logger),
		client.WithMetrics(m),
	)

	s, err := NewServer(cfg, logger, apiClient, m, reg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(s.authService.Close)
	return s
}

func testToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": 9}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("could not sign token: %v", err)
	}
	return token
}

func withSession(r *http.Request, token string, role session.Role) {
	r.AddCookie(&http.Cookie{Name: session.TokenCookieName, Value: token})
	r.AddCookie(&http.Cookie{Name: session.RoleCookieName, Value: string(role)})
}

func clearedCookie(res *http.Response, name string) bool {
	for _, c := range res.Cookies() {
		if c.Name == name && c.MaxAge < 0 {
			return true
		}
	}
	return false
}

func TestSessionInvalidationRedirects(t *testing.T) {
	tests := []struct {
		name         string
		htmx         bool
		currentURL   string
		path         string
		wantStatus   int
		wantLocation string
		wantHXTarget string
	}{
		{
			name:         "page load",
			path:         "/student/dashboard",
			wantStatus:   http.StatusSeeOther,
			wantLocation: config.LoginScreen,
		},
		{
			name:         "htmx request",
			htmx:         true,
			currentURL:   "http://localhost:3000/student/events",
			path:         "/student/announcements",
			wantStatus:   http.StatusOK,
			wantHXTarget: config.LoginScreen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t, http.StatusUnauthorized, `{"success":false,"message":"jwt expired"}`)
			s := newTestServer(t, b)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			withSession(req, testToken(t), session.RoleUser)
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
				req.Header.Set("HX-Current-URL", tt.currentURL)
			}
			rr := httptest.NewRecorder()
			s.ServeHTTP(rr, req)

			res := rr.Result()
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", res.StatusCode, tt.wantStatus)
			}
			if got := res.Header.Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
			if got := res.Header.Get("HX-Redirect"); got != tt.wantHXTarget {
				t.Errorf("HX-Redirect = %q, want %q", got, tt.wantHXTarget)
			}
			if !clearedCookie(res, session.TokenCookieName) || !clearedCookie(res, session.RoleCookieName) {
				t.Error("session cookies were not cleared")
			}
			if b.calls.Load() == 0 {
				t.Error("backend was not called")
			}
		})
	}
}

func TestLoginFailureKeepsUserOnLoginScreen(t *testing.T) {
	b := newBackend(t, http.StatusUnauthorized, `{"success":false,"message":"Invalid credentials"}`)
	s := newTestServer(t, b)

	form := url.Values{"email": {"student@college.edu"}, "password": {"wrong"}, "role": {"user"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	res := rr.Result()
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnprocessableEntity)
	}
	if loc := res.Header.Get("Location"); loc != "" {
		t.Errorf("unexpected redirect to %q", loc)
	}
	if clearedCookie(res, session.TokenCookieName) {
		t.Error("login failure cleared the session cookies")
	}
	if !strings.Contains(rr.Body.String(), "Login failed. Please check your email and password and try again.") {
		t.Error("login page does not show the login failure message")
	}
}

func TestLoginSetsSessionCookies(t *testing.T) {
	token := testToken(t)
	b := newBackend(t, http.StatusOK, `{"success":true,"data":{"token":"`+token+`","user":{"id":9,"name":"Ravi","email":"ravi@college.edu","role":"USER"}}}`)
	s := newTestServer(t, b)

	form := url.Values{"email": {"ravi@college.edu"}, "password": {"secret1"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	res := rr.Result()
	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusSeeOther)
	}
	if got := res.Header.Get("Location"); got != "/student/dashboard" {
		t.Errorf("Location = %q, want /student/dashboard", got)
	}

	cookies := map[string]string{}
	for _, c := range res.Cookies() {
		cookies[c.Name] = c.Value
	}
	if cookies[session.TokenCookieName] != token {
		t.Errorf("token cookie = %q", cookies[session.TokenCookieName])
	}
	if cookies[session.RoleCookieName] != string(session.RoleUser) {
		t.Errorf("role cookie = %q, want %q", cookies[session.RoleCookieName], session.RoleUser)
	}
}

func TestMarkAttendanceSendsCodeAsTyped(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		wantBody string
	}{
		{"mixed case", "xYz1", `{"sessionId":42,"code":"xYz1"}`},
		{"surrounding spaces", "  AbC9 ", `{"sessionId":42,"code":"AbC9"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t, http.StatusOK, `{"success":true,"data":{"id":1,"sessionId":42,"userId":9}}`)
			s := newTestServer(t, b)

			form := url.Values{"sessionId": {"42"}, "code": {tt.code}}
			req := httptest.NewRequest(http.MethodPost, "/student/attendance", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			withSession(req, testToken(t), session.RoleUser)
			rr := httptest.NewRecorder()
			s.ServeHTTP(rr, req)

			if rr.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
			}
			path, body := b.last()
			if path != "/attendance/mark" {
				t.Errorf("backend path = %q, want /attendance/mark", path)
			}
			if body != tt.wantBody {
				t.Errorf("backend body = %s, want %s", body, tt.wantBody)
			}
		})
	}
}

func TestProtectedRoutes(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		role         session.Role
		signedIn     bool
		wantLocation string
	}{
		{"no session", "/student/events", "", false, config.LoginScreen},
		{"student on admin page", "/admin/profile", session.RoleUser, true, "/student/profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t, http.StatusOK, `{"success":true,"data":[]}`)
			s := newTestServer(t, b)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.signedIn {
				withSession(req, testToken(t), tt.role)
			}
			rr := httptest.NewRecorder()
			s.ServeHTTP(rr, req)

			if rr.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
			}
			if got := rr.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
			if b.calls.Load() != 0 {
				t.Errorf("backend called %d times, want 0", b.calls.Load())
			}
		})
	}
}

func TestDashboardJSON(t *testing.T) {
	t.Run("signed out", func(t *testing.T) {
		b := newBackend(t, http.StatusOK, `{"success":true,"data":[]}`)
		s := newTestServer(t, b)

		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ui-api/dashboard", nil))

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
		}
		var body struct {
			ErrorCode string `json:"error_code"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
			t.Fatalf("invalid JSON error body: %v", err)
		}
		if body.ErrorCode != "session_invalid" {
			t.Errorf("error_code = %q, want session_invalid", body.ErrorCode)
		}
	})

	t.Run("backend unreachable falls back in lenient mode", func(t *testing.T) {
		b := newBackend(t, http.StatusOK, "")
		s := newTestServer(t, b)
		b.server.Close()

		req := httptest.NewRequest(http.MethodGet, "/ui-api/dashboard", nil)
		withSession(req, testToken(t), session.RoleUser)
		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
		}
		var dash struct {
			Unavailable []string `json:"unavailable"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&dash); err != nil {
			t.Fatalf("invalid JSON body: %v", err)
		}
		if len(dash.Unavailable) == 0 {
			t.Error("expected unavailable sections to be reported")
		}
	})
}

func TestOperationalEndpoints(t *testing.T) {
	b := newBackend(t, http.StatusOK, `{"success":true}`)
	s := newTestServer(t, b)

	for _, path := range []string{"/health/live", "/metrics", "/static/css/app.css"} {
		t.Run(path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
			if rr.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
			}
		})
	}
}
