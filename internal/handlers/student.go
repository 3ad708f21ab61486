package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/pasc-cca/ccadash/internal/client"
	"github.com/pasc-cca/ccadash/internal/dashboard"
	"github.com/pasc-cca/ccadash/internal/logger"
	"github.com/pasc-cca/ccadash/internal/views"
)

const (
	leaderboardPageSize   = 50
	notificationsPageSize = 50
)

func (h *HandlerService) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	rs := requestSession(r)
	reqLogger := logger.ContextRequestLogger(r.Context())

	svc := dashboard.NewService(rs.Client, h.ErrorMode, reqLogger, h.Metrics)
	dash, err := svc.Build(r.Context())
	if err != nil {
		h.handleClientError(w, r, err, "build dashboard")
		return
	}

	h.render(w, r, http.StatusOK, views.DashboardPage(dash, currentUser(r).AccountID(), nav(r, "/student/dashboard")))
}

func (h *HandlerService) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rs := requestSession(r)

	period := strings.ToUpper(r.URL.Query().Get("period"))
	if period == "" {
		period = client.PeriodSemester
	}

	res, err := rs.Client.Leaderboard.Get(r.Context(), client.LeaderboardQuery{Period: period, Limit: leaderboardPageSize})
	if err != nil {
		h.handleClientError(w, r, err, "get leaderboard")
		return
	}

	h.render(w, r, http.StatusOK, views.LeaderboardPage(res.Data, period, currentUser(r).AccountID(), nav(r, "/student/leaderboard")))
}

func (h *HandlerService) HandleEvents(w http.ResponseWriter, r *http.Request) {
	rs := requestSession(r)
	reqLogger := logger.ContextRequestLogger(r.Context())

	events, err := rs.Client.Events.GetAll(r.Context(), client.EventFilters{Status: r.URL.Query().Get("status")})
	if err != nil {
		h.handleClientError(w, r, err, "get events")
		return
	}

	// events are still listed if the student's registrations cannot be loaded
	registered := make(map[int]bool)
	rsvps, err := rs.Client.RSVP.GetUserRSVPs(r.Context())
	switch {
	case errors.Is(err, client.ErrSessionInvalidated):
		h.handleClientError(w, r, err, "get rsvps")
		return
	case err != nil:
		reqLogger.Warn("Could not load registrations", slog.String("error", err.Error()))
	default:
		for _, rsvp := range rsvps.Data {
			registered[rsvp.EventID] = true
		}
	}

	h.render(w, r, http.StatusOK, views.EventsPage(events.Data, registered, nav(r, "/student/events")))
}

func (h *HandlerService) HandleRSVP(w http.ResponseWriter, r *http.Request) {
	h.updateRSVP(w, r, true)
}

func (h *HandlerService) HandleCancelRSVP(w http.ResponseWriter, r *http.Request) {
	h.updateRSVP(w, r, false)
}

func (h *HandlerService) updateRSVP(w http.ResponseWriter, r *http.Request, register bool) {
	rs := requestSession(r)

	eventID, ok := pathID(r, "eventID")
	if !ok {
		h.badRequest(w, r, "Invalid event.")
		return
	}

	var err error
	if register {
		_, err = rs.Client.RSVP.Create(r.Context(), eventID)
	} else {
		_, err = rs.Client.RSVP.Cancel(r.Context(), eventID)
	}
	if err != nil {
		h.handleClientError(w, r, err, "update rsvp")
		return
	}

	logger.ContextWithLogAttrs(r.Context(),
		slog.Int("event_id", eventID),
		slog.Bool("registered", register),
	)

	if isHTMX(r) {
		h.render(w, r, http.StatusOK, views.RSVPButton(eventID, register))
		return
	}
	http.Redirect(w, r, "/student/events", http.StatusSeeOther)
}

func (h *HandlerService) HandleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	rs := requestSession(r)

	sessionID, err := strconv.Atoi(strings.TrimSpace(r.FormValue("sessionId")))
	if err != nil {
		h.badRequest(w, r, "Session must be a number.")
		return
	}
	code := strings.TrimSpace(r.FormValue("code"))

	if _, err := rs.Client.Attendance.MarkAttendance(r.Context(), sessionID, code); err != nil {
		h.handleClientError(w, r, err, "mark attendance")
		return
	}

	logger.ContextWithLogAttrs(r.Context(), slog.Int("attendance_session_id", sessionID))

	if isHTMX(r) {
		h.render(w, r, http.StatusOK, views.FormResult("success", "Attendance marked. Your credits will be updated shortly."))
		return
	}
	http.Redirect(w, r, "/student/events", http.StatusSeeOther)
}

func (h *HandlerService) HandleAnnouncements(w http.ResponseWriter, r *http.Request) {
	rs := requestSession(r)

	res, err := rs.Client.Announcements.GetAll(r.Context(), client.AnnouncementFilters{
		Priority: r.URL.Query().Get("priority"),
	})
	if err != nil {
		h.handleClientError(w, r, err, "get announcements")
		return
	}

	h.render(w, r, http.StatusOK, views.AnnouncementsPage(res.Data, nav(r, "/student/announcements")))
}

func (h *HandlerService) HandleAnnouncementRead(w http.ResponseWriter, r *http.Request) {
	rs := requestSession(r)

	id, ok := pathID(r, "announcementID")
	if !ok {
		h.badRequest(w, r, "Invalid announcement.")
		return
	}

	if _, err := rs.Client.Announcements.MarkAsRead(r.Context(), id); err != nil {
		h.handleClientError(w, r, err, "mark announcement read")
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, "/student/announcements", http.StatusSeeOther)
		return
	}

	res, err := rs.Client.Announcements.GetByID(r.Context(), id)
	if err != nil {
		h.handleClientError(w, r, err, "get announcement")
		return
	}
	announcement := res.Data
	announcement.IsRead = true
	h.render(w, r, http.StatusOK, views.AnnouncementItem(announcement))
}

func (h *HandlerService) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	rs := requestSession(r)

	res, err := rs.Client.Notifications.GetAll(r.Context(), client.NotificationFilters{Limit: notificationsPageSize})
	if err != nil {
		h.handleClientError(w, r, err, "get notifications")
		return
	}

	unread := 0
	for _, n := range res.Data {
		if !n.Read {
			unread++
		}
	}
	if count, err := rs.Client.Notifications.GetUnreadCount(r.Context()); err == nil && count.Success {
		unread = count.Data.Count
	} else if errors.Is(err, client.ErrSessionInvalidated) {
		h.handleClientError(w, r, err, "get unread count")
		return
	}

	h.render(w, r, http.StatusOK, views.NotificationsPage(res.Data, unread, nav(r, "/student/notifications")))
}

func (h *HandlerService) HandleNotificationsReadAll(w http.ResponseWriter, r *http.Request) {
	rs := requestSession(r)

	if _, err := rs.Client.Notifications.MarkAllAsRead(r.Context()); err != nil {
		h.handleClientError(w, r, err, "mark notifications read")
		return
	}
	http.Redirect(w, r, "/student/notifications", http.StatusSeeOther)
}

func (h *HandlerService) HandleProfile(w http.ResponseWriter, r *http.Request) {
	rs := requestSession(r)
	claims := currentUser(r)

	profile := views.Profile{
		UserID: claims.AccountID(),
		Email:  claims.Email,
		Role:   string(rs.Store.Role()),
	}

	stats, err := rs.Client.Attendance.GetUserStats(r.Context())
	if err != nil {
		h.handleClientError(w, r, err, "get attendance stats")
		return
	}
	if stats.Success {
		profile.Stats = &stats.Data
	}

	rsvps, err := rs.Client.RSVP.GetUserRSVPs(r.Context())
	if err != nil {
		h.handleClientError(w, r, err, "get rsvps")
		return
	}
	profile.RSVPs = rsvps.Data

	h.render(w, r, http.StatusOK, views.ProfilePage(profile, nav(r, "/student/profile")))
}
