package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jub0bs/cors"

	"github.com/pasc-cca/ccadash/internal/auth"
	"github.com/pasc-cca/ccadash/internal/config"
	"github.com/pasc-cca/ccadash/internal/handlers"
	"github.com/pasc-cca/ccadash/internal/middleware"
	"github.com/pasc-cca/ccadash/internal/views"
)

type Dependencies struct {
	Config         *config.Config
	Handlers       *handlers.HandlerService
	AuthService    *auth.AuthService
	CORS           *cors.Middleware
	MetricsHandler http.Handler
}

func RegisterRoutes(router chi.Router, deps Dependencies) {
	h := deps.Handlers
	a := deps.AuthService

	// operational endpoints are not logged and carry no session
	router.Get("/health/live", h.HandleLiveness)
	router.Handle("/metrics", deps.MetricsHandler)
	router.Handle("/static/*", views.Static())

	router.Group(func(r chi.Router) {
		r.Use(a.Session)

		r.Get("/", h.HandleLanding)

		// auth-flow screens: a 401 received here does not end the session
		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", h.HandleLogin)
			r.Get("/signup", h.HandleSignup)
			r.Get("/reset-password", h.HandleResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(deps.Config.RateLimitRPS, deps.Config.RateLimitBurst))
				r.Use(middleware.RequestSizeLimit(config.MaxFormRequestSize))

				r.Post("/login", h.HandleLoginPost)
				r.Post("/signup", h.HandleSignupPost)
				r.Post("/reset-password", h.HandleResetPasswordPost)
			})

			r.Post("/logout", h.HandleLogout)
		})

		r.Group(func(r chi.Router) {
			r.Use(a.RequireAuth)
			r.Use(middleware.RequestSizeLimit(config.MaxFormRequestSize))

			r.Route("/student", func(r chi.Router) {
				r.Get("/dashboard", h.HandleDashboard)
				r.Get("/leaderboard", h.HandleLeaderboard)
				r.Get("/events", h.HandleEvents)
				r.Post("/events/{eventID}/rsvp", h.HandleRSVP)
				r.Post("/events/{eventID}/cancel", h.HandleCancelRSVP)
				r.Post("/attendance", h.HandleMarkAttendance)
				r.Get("/announcements", h.HandleAnnouncements)
				r.Post("/announcements/{announcementID}/read", h.HandleAnnouncementRead)
				r.Get("/notifications", h.HandleNotifications)
				r.Post("/notifications/read-all", h.HandleNotificationsReadAll)
				r.Get("/profile", h.HandleProfile)
			})

			r.Group(func(r chi.Router) {
				r.Use(a.RequireAdmin)
				r.Get("/admin/profile", h.HandleAdminProfile)
			})
		})

		// UI API endpoints (used by scripts on the dashboard pages)
		r.Route("/ui-api", func(r chi.Router) {
			r.Use(middleware.CORS(deps.CORS))
			r.Get("/dashboard", h.HandleDashboardJSON)
			r.Options("/dashboard", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
		})
	})
}
