package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/pasc-cca/ccadash/internal/auth"
	"github.com/pasc-cca/ccadash/internal/client"
	"github.com/pasc-cca/ccadash/internal/config"
	"github.com/pasc-cca/ccadash/internal/logger"
	"github.com/pasc-cca/ccadash/internal/session"
	"github.com/pasc-cca/ccadash/internal/views"
)

func (h *HandlerService) HandleLanding(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.LandingPage())
}

// landingPath is where a user goes after signing in
func landingPath(role session.Role) string {
	if role.IsAdmin() {
		return auth.AdminProfilePath
	}
	return auth.DashboardPath
}

func (h *HandlerService) HandleLogin(w http.ResponseWriter, r *http.Request) {
	rs := requestSession(r)
	if rs.Store.Token() != "" {
		auth.Redirect(w, r, landingPath(rs.Store.Role()))
		return
	}
	h.render(w, r, http.StatusOK, views.LoginPage(views.LoginForm{Role: r.URL.Query().Get("role")}))
}

// HandleLoginPost signs in with the backend; the client stores the token and role in the session cookies
func (h *HandlerService) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	reqLogger := logger.ContextRequestLogger(r.Context())
	rs := requestSession(r)

	form := views.LoginForm{
		Email: strings.TrimSpace(r.FormValue("email")),
		Role:  r.FormValue("role"),
	}
	if form.Role == "" {
		form.Role = string(session.RoleUser)
	}

	res, err := rs.Client.Auth.Login(r.Context(), form.Email, r.FormValue("password"), session.Role(form.Role))
	if err != nil {
		reqLogger.Info("Login failed", slog.String("error", err.Error()))
		form.Error = client.UserMessage(err)
		h.renderFormError(w, r, views.LoginPage(form), form.Error)
		return
	}
	if !res.Success || res.Data.Token == "" {
		form.Error = res.Message
		if form.Error == "" {
			form.Error = "Login failed. Please check your email and password and try again."
		}
		h.renderFormError(w, r, views.LoginPage(form), form.Error)
		return
	}

	logger.ContextWithLogAttrs(r.Context(),
		slog.Int("account_id", res.Data.User.ID),
		slog.String("role", string(rs.Store.Role())),
	)

	auth.Redirect(w, r, landingPath(rs.Store.Role()))
}

func (h *HandlerService) HandleSignup(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.SignupPage(views.SignupForm{}))
}

func (h *HandlerService) HandleSignupPost(w http.ResponseWriter, r *http.Request) {
	rs := requestSession(r)

	form := views.SignupForm{
		Name:       strings.TrimSpace(r.FormValue("name")),
		Email:      strings.TrimSpace(r.FormValue("email")),
		StudentID:  strings.TrimSpace(r.FormValue("studentId")),
		Department: strings.TrimSpace(r.FormValue("department")),
	}
	if year := r.FormValue("year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			form.Error = "Year must be a number."
			h.renderFormError(w, r, views.SignupPage(form), form.Error)
			return
		}
		form.Year = y
	}

	_, err := rs.Client.Auth.Register(r.Context(), client.RegisterRequest{
		Name:       form.Name,
		Email:      form.Email,
		Password:   r.FormValue("password"),
		StudentID:  form.StudentID,
		Department: form.Department,
		Year:       form.Year,
	})
	if err != nil {
		form.Error = client.UserMessage(err)
		h.renderFormError(w, r, views.SignupPage(form), form.Error)
		return
	}

	auth.Redirect(w, r, config.LoginScreen)
}

func (h *HandlerService) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.ResetPasswordPage(views.ResetPasswordForm{}))
}

func (h *HandlerService) HandleResetPasswordPost(w http.ResponseWriter, r *http.Request) {
	rs := requestSession(r)
	form := views.ResetPasswordForm{Email: strings.TrimSpace(r.FormValue("email"))}

	if _, err := rs.Client.Auth.ResetPassword(r.Context(), form.Email); err != nil {
		form.Error = client.UserMessage(err)
		h.renderFormError(w, r, views.ResetPasswordPage(form), form.Error)
		return
	}

	// the same notice is shown whether or not the account exists
	form.Notice = "If an account exists for that email, a reset link has been sent."
	if isHTMX(r) {
		h.render(w, r, http.StatusOK, views.FormResult("success", form.Notice))
		return
	}
	h.render(w, r, http.StatusOK, views.ResetPasswordPage(form))
}

func (h *HandlerService) HandleLogout(w http.ResponseWriter, r *http.Request) {
	rs := requestSession(r)
	if err := rs.Client.Auth.Logout(); err != nil {
		logger.ContextRequestLogger(r.Context()).Error("Failed to clear session cookies", slog.String("error", err.Error()))
	}
	auth.Redirect(w, r, config.LoginScreen)
}

// renderFormError returns the error to the htmx form target, or re-renders the whole page for plain form posts
func (h *HandlerService) renderFormError(w http.ResponseWriter, r *http.Request, page templ.Component, message string) {
	if isHTMX(r) {
		h.render(w, r, http.StatusOK, views.FormResult("error", message))
		return
	}
	h.render(w, r, http.StatusUnprocessableEntity, page)
}
