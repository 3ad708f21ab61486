package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pasc-cca/ccadash/internal/client"
	"github.com/pasc-cca/ccadash/internal/logger"
	"github.com/pasc-cca/ccadash/internal/views"
)

func (h *HandlerService) HandleAdminProfile(w http.ResponseWriter, r *http.Request) {
	rs := requestSession(r)
	claims := currentUser(r)

	profile := views.Profile{
		UserID: claims.AccountID(),
		Email:  claims.Email,
		Role:   string(rs.Store.Role()),
	}

	var overview *client.DashboardAnalytics
	res, err := rs.Client.Analytics.GetDashboard(r.Context())
	switch {
	case errors.Is(err, client.ErrSessionInvalidated):
		h.handleClientError(w, r, err, "get admin analytics")
		return
	case err != nil:
		logger.ContextRequestLogger(r.Context()).Warn("Admin analytics unavailable", slog.String("error", err.Error()))
	case res.Success:
		overview = &res.Data
	}

	h.render(w, r, http.StatusOK, views.AdminProfilePage(profile, overview, nav(r, "/admin/profile")))
}
