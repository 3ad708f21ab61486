package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pasc-cca/ccadash/internal/client"
	"github.com/pasc-cca/ccadash/internal/config"
	"github.com/pasc-cca/ccadash/internal/session"
)

func newTestService(t *testing.T, backendStatus int) *AuthService {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(backendStatus)
		_, _ = io.WriteString(w, `{"success":false}`)
	}))
	t.Cleanup(backend.Close)

	a := NewAuthService(client.New(client.Config{BaseURL: backend.URL}, session.NewMemoryStore()), "test")
	t.Cleanup(a.Close)
	return a
}

func TestCurrentScreen(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		htmx       bool
		currentURL string
		want       string
	}{
		{"page load", "/student/events", false, "", "/student/events"},
		{"htmx uses the page that issued the request", "/student/events/3/rsvp", true, "http://localhost:3000/student/events?page=2", "/student/events"},
		{"htmx without current url", "/auth/login", true, "", "/auth/login"},
		{"current url ignored without htmx", "/student/profile", false, "http://localhost:3000/auth/login", "/student/profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.htmx {
				r.Header.Set("HX-Request", "true")
			}
			if tt.currentURL != "" {
				r.Header.Set("HX-Current-URL", tt.currentURL)
			}
			if got := currentScreen(r); got != tt.want {
				t.Errorf("currentScreen() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionInvalidationFlagsRequest(t *testing.T) {
	tests := []struct {
		name            string
		path            string
		wantInvalidated bool
	}{
		{"protected screen", "/student/dashboard", true},
		{"auth screen", "/auth/login", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestService(t, http.StatusUnauthorized)

			var rs *RequestSession
			handler := a.Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				rs, _ = ContextRequestSession(r.Context())
				_, _ = rs.Client.Notifications.GetUnreadCount(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.AddCookie(&http.Cookie{Name: session.TokenCookieName, Value: "tok"})
			req.AddCookie(&http.Cookie{Name: session.RoleCookieName, Value: "user"})
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rs == nil {
				t.Fatal("request session was not added to the context")
			}
			if rs.Invalidated() != tt.wantInvalidated {
				t.Errorf("Invalidated() = %v, want %v", rs.Invalidated(), tt.wantInvalidated)
			}
			if got := rs.Store.Token() == ""; got != tt.wantInvalidated {
				t.Errorf("token cleared = %v, want %v", got, tt.wantInvalidated)
			}
		})
	}
}

func TestRedirectToLoginWritesOnce(t *testing.T) {
	rs := &RequestSession{}
	r := httptest.NewRequest(http.MethodGet, "/student/dashboard", nil)
	r = r.WithContext(ContextWithRequestSession(context.Background(), rs))
	rr := httptest.NewRecorder()

	RedirectToLogin(rr, r)
	RedirectToLogin(rr, r)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if got := rr.Header().Values("Location"); len(got) != 1 || got[0] != config.LoginScreen {
		t.Errorf("Location = %v, want [%s]", got, config.LoginScreen)
	}
}

func TestRedirectHTMX(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/student/attendance", nil)
	r.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()

	Redirect(rr, r, config.LoginScreen)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := rr.Header().Get("HX-Redirect"); got != config.LoginScreen {
		t.Errorf("HX-Redirect = %q, want %q", got, config.LoginScreen)
	}
}

func TestRequireAuthAndAdmin(t *testing.T) {
	tests := []struct {
		name         string
		token        string
		role         session.Role
		admin        bool
		wantStatus   int
		wantLocation string
	}{
		{"no token", "", "", false, http.StatusSeeOther, config.LoginScreen},
		{"student", "tok", session.RoleUser, false, http.StatusOK, ""},
		{"student on admin route", "tok", session.RoleUser, true, http.StatusSeeOther, StudentProfilePath},
		{"admin on admin route", "tok", session.RoleAdmin, true, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestService(t, http.StatusOK)

			var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			if tt.admin {
				h = a.RequireAdmin(h)
			}
			h = a.Session(a.RequireAuth(h))

			req := httptest.NewRequest(http.MethodGet, "/student/profile", nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: session.TokenCookieName, Value: tt.token})
				req.AddCookie(&http.Cookie{Name: session.RoleCookieName, Value: string(tt.role)})
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := rr.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
		})
	}
}

func TestProfilePath(t *testing.T) {
	if got := ProfilePath(session.RoleAdmin); got != AdminProfilePath {
		t.Errorf("ProfilePath(admin) = %q", got)
	}
	if got := ProfilePath(session.RoleUser); got != StudentProfilePath {
		t.Errorf("ProfilePath(user) = %q", got)
	}
}
