// Package auth binds the dashboard's browser sessions to the CCA API client.
//
// The session token and role are held in HttpOnly cookies. The Session middleware gives every request its own client
// reading and writing those cookies, and records the screen the student is on so the client knows whether a 401 should end the session.
// When the backend rejects the session the client clears the cookies and notifies the AuthService,
// which flags the request so handlers send the student to the login screen exactly once.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/pasc-cca/ccadash/internal/client"
	"github.com/pasc-cca/ccadash/internal/config"
	"github.com/pasc-cca/ccadash/internal/logger"
	"github.com/pasc-cca/ccadash/internal/session"
)

const (
	StudentProfilePath = "/student/profile"
	AdminProfilePath   = "/admin/profile"
	DashboardPath      = "/student/dashboard"
)

type AuthService struct {
	client        *client.Client
	secureCookies bool
	unsubscribe   func()
}

// NewAuthService subscribes to session invalidations on the shared client. Call Close to unsubscribe.
func NewAuthService(c *client.Client, environment string) *AuthService {
	a := &AuthService{
		client:        c,
		secureCookies: environment == "prod" || environment == "staging",
	}
	a.unsubscribe = c.OnSessionInvalidated(a.sessionInvalidated)
	return a
}

func (a *AuthService) Close() {
	a.unsubscribe()
}

// sessionInvalidated runs on the goroutine of the request whose API call was rejected
func (a *AuthService) sessionInvalidated(ctx context.Context, ev client.SessionInvalidated) {
	rs, ok := ContextRequestSession(ctx)
	if !ok {
		return
	}
	rs.invalidated.Store(true)

	logger.ContextRequestLogger(ctx).Info("Session rejected by the CCA API",
		slog.String("component", "auth.sessionInvalidated"),
		slog.String("screen", ev.Screen),
		slog.String("api_path", ev.Path),
	)
	logger.ContextWithLogAttrs(ctx, slog.Bool("session_invalidated", true))
}

// Session is middleware that adds the request's RequestSession to the context
func (a *AuthService) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := session.NewCookieStore(w, r, a.secureCookies)
		rs := &RequestSession{
			Client: a.client.WithSession(store),
			Store:  store,
		}

		ctx := ContextWithRequestSession(r.Context(), rs)
		ctx = client.ContextWithScreen(ctx, currentScreen(r))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentScreen is the page the student is looking at. For htmx requests this is the page that issued the request.
func currentScreen(r *http.Request) string {
	if r.Header.Get("HX-Request") == "true" {
		if u, err := url.Parse(r.Header.Get("HX-Current-URL")); err == nil && u.Path != "" {
			return u.Path
		}
	}
	return r.URL.Path
}

// RequireAuth is middleware that redirects to the login screen when there is no session token
func (a *AuthService) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.ContextRequestLogger(r.Context())

		rs, ok := ContextRequestSession(r.Context())
		if !ok || rs.Store.Token() == "" {
			reqLogger.Debug("No session - redirecting to login",
				slog.String("component", "auth.RequireAuth"),
			)
			RedirectToLogin(w, r)
			return
		}

		logger.ContextWithLogAttrs(r.Context(), slog.String("role", string(rs.Store.Role())))
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin is middleware that sends non-admin users to their student profile.
// The role only drives navigation - the backend enforces access to admin data.
func (a *AuthService) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs, ok := ContextRequestSession(r.Context())
		if !ok || !rs.Store.Role().IsAdmin() {
			logger.ContextRequestLogger(r.Context()).Debug("Admin role required - redirecting to student profile",
				slog.String("component", "auth.RequireAdmin"),
			)
			Redirect(w, r, StudentProfilePath)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ProfilePath returns the profile page linked from the navbar
func ProfilePath(role session.Role) string {
	if role.IsAdmin() {
		return AdminProfilePath
	}
	return StudentProfilePath
}

// RedirectToLogin sends the browser to the login screen. Only the first call in a request writes a response.
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	if rs, ok := ContextRequestSession(r.Context()); ok && rs.redirected.Swap(true) {
		return
	}
	Redirect(w, r, config.LoginScreen)
}

// Redirect is htmx-aware: htmx requests get an HX-Redirect header, others a 303
func Redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusOK)
	} else {
		http.Redirect(w, r, path, http.StatusSeeOther)
	}
}
