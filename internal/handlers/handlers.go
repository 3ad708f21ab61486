package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/pasc-cca/ccadash/internal/auth"
	"github.com/pasc-cca/ccadash/internal/client"
	"github.com/pasc-cca/ccadash/internal/config"
	"github.com/pasc-cca/ccadash/internal/logger"
	"github.com/pasc-cca/ccadash/internal/metrics"
	"github.com/pasc-cca/ccadash/internal/session"
	"github.com/pasc-cca/ccadash/internal/views"
)

type HandlerService struct {
	ErrorMode   config.ErrorMode
	Metrics     *metrics.Metrics
	Environment string
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// requestSession returns the session added by auth.Session
func requestSession(r *http.Request) *auth.RequestSession {
	rs, ok := auth.ContextRequestSession(r.Context())
	if !ok {
		panic("handlers: auth.Session middleware is not installed")
	}
	return rs
}

func nav(r *http.Request, active string) *views.Nav {
	role := requestSession(r).Store.Role()
	return &views.Nav{
		Active:      active,
		ProfilePath: auth.ProfilePath(role),
		IsAdmin:     role.IsAdmin(),
	}
}

// currentUser returns the claims of the session token, or an empty Claims when the token cannot be decoded
func currentUser(r *http.Request) *session.Claims {
	claims, err := session.ParseClaims(requestSession(r).Store.Token())
	if err != nil {
		return &session.Claims{}
	}
	return claims
}

func (h *HandlerService) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		reqLogger := logger.ContextRequestLogger(r.Context())
		reqLogger.Error("Failed to render page", slog.String("error", err.Error()))
	}
}

// handleClientError sends the student to the login screen if the backend rejected the session during this request,
// otherwise it shows the user-facing message of the error.
func (h *HandlerService) handleClientError(w http.ResponseWriter, r *http.Request, err error, action string) {
	rs := requestSession(r)
	if errors.Is(err, client.ErrSessionInvalidated) || rs.Invalidated() {
		auth.RedirectToLogin(w, r)
		return
	}

	reqLogger := logger.ContextRequestLogger(r.Context())
	reqLogger.Error("CCA API request failed",
		slog.String("action", action),
		slog.String("error", err.Error()),
	)

	message := client.UserMessage(err)

	// htmx only swaps 2xx responses
	if isHTMX(r) {
		h.render(w, r, http.StatusOK, views.Alert("error", message))
		return
	}
	h.render(w, r, pageStatus(err), views.ErrorPage(message, nav(r, "")))
}

// pageStatus maps a client error to the status of the error page
func pageStatus(err error) int {
	switch status := client.StatusCode(err); {
	case status == 0:
		return http.StatusBadGateway
	case status == http.StatusNotFound, status == http.StatusForbidden, status == http.StatusBadRequest, status == http.StatusConflict:
		return status
	default:
		return http.StatusBadGateway
	}
}

// pathID parses a numeric url parameter
func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *HandlerService) badRequest(w http.ResponseWriter, r *http.Request, message string) {
	logger.ContextWithLogAttrs(r.Context(), slog.String("error_message", message))
	if isHTMX(r) {
		h.render(w, r, http.StatusOK, views.Alert("error", message))
		return
	}
	h.render(w, r, http.StatusBadRequest, views.ErrorPage(message, nav(r, "")))
}
