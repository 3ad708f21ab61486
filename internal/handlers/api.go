package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pasc-cca/ccadash/internal/apperrors"
	"github.com/pasc-cca/ccadash/internal/client"
	"github.com/pasc-cca/ccadash/internal/dashboard"
	"github.com/pasc-cca/ccadash/internal/logger"
	"github.com/pasc-cca/ccadash/internal/responses"
)

// HandleDashboardJSON returns the student dashboard view model for scripts (GET /ui-api/dashboard)
func (h *HandlerService) HandleDashboardJSON(w http.ResponseWriter, r *http.Request) {
	rs := requestSession(r)
	reqLogger := logger.ContextRequestLogger(r.Context())

	if rs.Store.Token() == "" {
		responses.RespondWithError(w, r, http.StatusUnauthorized, apperrors.ErrCodeSessionInvalid, "not signed in")
		return
	}

	dash, err := dashboard.NewService(rs.Client, h.ErrorMode, reqLogger, h.Metrics).Build(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, client.ErrSessionInvalidated):
			responses.RespondWithError(w, r, http.StatusUnauthorized, apperrors.ErrCodeSessionInvalid, "session expired, please sign in again")
		case client.StatusCode(err) == 0:
			reqLogger.Error("Dashboard unavailable", slog.String("error", err.Error()))
			responses.RespondWithError(w, r, http.StatusServiceUnavailable, apperrors.ErrCodeUpstreamUnavailable, client.UserMessage(err))
		default:
			reqLogger.Error("Dashboard request rejected", slog.String("error", err.Error()))
			responses.RespondWithError(w, r, http.StatusBadGateway, apperrors.ErrCodeUpstreamError, client.UserMessage(err))
		}
		return
	}

	responses.RespondWithJSON(w, http.StatusOK, dash)
}

func (h *HandlerService) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
