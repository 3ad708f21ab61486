package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/go-cmp/cmp"
	"github.com/pasc-cca/ccadash/internal/session"
)

type recordedRequest struct {
	Method      string
	Path        string
	RawQuery    string
	Auth        string
	ContentType string
	Accept      string
	RequestID   string
	Body        []byte
}

// fakeBackend records every request and answers with a fixed status and body
type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
	server   *httptest.Server
}

func newFakeBackend(t *testing.T, status int, body string) *fakeBackend {
	t.Helper()
	b := &fakeBackend{status: status, body: body}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.requests = append(b.requests, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			RawQuery:    r.URL.RawQuery,
			Auth:        r.Header.Get("Authorization"),
			ContentType: r.Header.Get("Content-Type"),
			Accept:      r.Header.Get("Accept"),
			RequestID:   r.Header.Get(RequestIDHeader),
			Body:        data,
		})
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(b.status)
		_, _ = io.WriteString(w, b.body)
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *fakeBackend) last(t *testing.T) recordedRequest {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		t.Fatal("backend received no requests")
	}
	return b.requests[len(b.requests)-1]
}

func newTestClient(b *fakeBackend, store session.Store) *Client {
	return New(Config{BaseURL: b.server.URL}, store)
}

func signedIn(t *testing.T, token string, role session.Role) *session.MemoryStore {
	t.Helper()
	store := session.NewMemoryStore()
	if err := store.Set(token, role); err != nil {
		t.Fatalf("could not set session: %v", err)
	}
	return store
}

func jsonBody(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("request body is not a JSON object: %v (%q)", err, data)
	}
	return m
}

func TestAuthorizationHeader(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		wantAuth string
	}{
		{"token persisted", "abc.def.ghi", "Bearer abc.def.ghi"},
		{"signed out", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend(t, http.StatusOK, `{"success":true,"data":[]}`)
			store := session.NewMemoryStore()
			if tt.token != "" {
				_ = store.Set(tt.token, session.RoleUser)
			}
			c := newTestClient(b, store)

			if _, err := c.Events.GetAll(context.Background(), EventFilters{}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := b.last(t)
			if got.Auth != tt.wantAuth {
				t.Errorf("Authorization = %q, want %q", got.Auth, tt.wantAuth)
			}
			if got.ContentType != "application/json" || got.Accept != "application/json" {
				t.Errorf("default headers not set: Content-Type %q, Accept %q", got.ContentType, got.Accept)
			}
			if got.RequestID == "" {
				t.Errorf("%s header not set", RequestIDHeader)
			}
		})
	}
}

func TestTokenIsReadAtCallTime(t *testing.T) {
	b := newFakeBackend(t, http.StatusOK, `{"success":true,"data":{"count":0}}`)
	store := session.NewMemoryStore()
	c := newTestClient(b, store)
	ctx := context.Background()

	for _, token := range []string{"first-token", "second-token"} {
		_ = store.Set(token, session.RoleUser)
		if _, err := c.Notifications.GetUnreadCount(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, want := b.last(t).Auth, "Bearer "+token; got != want {
			t.Errorf("Authorization = %q, want %q", got, want)
		}
	}
}

func TestRequestIDForwarded(t *testing.T) {
	b := newFakeBackend(t, http.StatusOK, `{"success":true,"data":[]}`)
	c := newTestClient(b, session.NewMemoryStore())

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "host/abc-000001")
	if _, err := c.RSVP.GetUserRSVPs(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.last(t).RequestID; got != "host/abc-000001" {
		t.Errorf("%s = %q, want the handler's request id", RequestIDHeader, got)
	}
}

func TestSessionInvalidation(t *testing.T) {
	tests := []struct {
		name            string
		screen          string
		wantInvalidated bool
	}{
		{"dashboard screen", "/student/dashboard", true},
		{"admin screen", "/admin/profile", true},
		{"no screen (cli)", "", true},
		{"login screen", "/auth/login", false},
		{"signup screen", "/auth/signup", false},
		{"reset password screen", "/auth/reset-password", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend(t, http.StatusUnauthorized, `{"success":false,"message":"Invalid token"}`)
			store := signedIn(t, "expired-token", session.RoleAdmin)
			c := newTestClient(b, store)

			var events []SessionInvalidated
			c.OnSessionInvalidated(func(ctx context.Context, ev SessionInvalidated) {
				events = append(events, ev)
			})

			ctx := ContextWithScreen(context.Background(), tt.screen)
			_, err := c.Leaderboard.GetMyRank(ctx)
			if err == nil {
				t.Fatal("expected an error for a 401 response")
			}

			if got := StatusCode(err); got != http.StatusUnauthorized {
				t.Errorf("StatusCode = %d, want 401", got)
			}
			if got := errors.Is(err, ErrSessionInvalidated); got != tt.wantInvalidated {
				t.Errorf("errors.Is(err, ErrSessionInvalidated) = %v, want %v", got, tt.wantInvalidated)
			}

			if tt.wantInvalidated {
				if store.Token() != "" || store.Role() != "" {
					t.Errorf("session not cleared: token %q role %q", store.Token(), store.Role())
				}
				want := []SessionInvalidated{{Screen: tt.screen, Method: http.MethodGet, Path: "/leaderboard/my-rank"}}
				if diff := cmp.Diff(want, events, cmpIgnoreTime); diff != "" {
					t.Errorf("published events mismatch (-want +got):\n%s", diff)
				}
				return
			}

			if store.Token() != "expired-token" || store.Role() != session.RoleAdmin {
				t.Errorf("session modified on an auth screen: token %q role %q", store.Token(), store.Role())
			}
			if len(events) != 0 {
				t.Errorf("got %d events on an auth screen, want 0", len(events))
			}
		})
	}
}

var cmpIgnoreTime = cmp.Comparer(func(a, b SessionInvalidated) bool {
	return a.Screen == b.Screen && a.Method == b.Method && a.Path == b.Path
})

func TestNonUnauthorizedErrorsLeaveSession(t *testing.T) {
	statuses := []int{
		http.StatusBadRequest,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusConflict,
		http.StatusInternalServerError,
	}

	for _, status := range statuses {
		t.Run(http.StatusText(status), func(t *testing.T) {
			b := newFakeBackend(t, status, `{"success":false,"message":"Already registered for this event"}`)
			store := signedIn(t, "valid-token", session.RoleUser)
			c := newTestClient(b, store)

			published := 0
			c.OnSessionInvalidated(func(context.Context, SessionInvalidated) { published++ })

			_, err := c.RSVP.Create(ContextWithScreen(context.Background(), "/student/events"), 3)

			var ce *ClientError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ClientError, got %v", err)
			}
			if ce.StatusCode != status {
				t.Errorf("StatusCode = %d, want %d", ce.StatusCode, status)
			}
			if errors.Is(err, ErrSessionInvalidated) {
				t.Error("non-401 error reported as a session invalidation")
			}
			if store.Token() != "valid-token" || store.Role() != session.RoleUser {
				t.Errorf("session modified: token %q role %q", store.Token(), store.Role())
			}
			if published != 0 {
				t.Errorf("got %d invalidation events, want 0", published)
			}
		})
	}
}

func TestConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	store := signedIn(t, "valid-token", session.RoleUser)
	c := New(Config{BaseURL: baseURL}, store)

	_, err := c.Analytics.GetUserAnalytics(context.Background())
	if err == nil {
		t.Fatal("expected a connection error")
	}
	if got := StatusCode(err); got != 0 {
		t.Errorf("StatusCode = %d, want 0", got)
	}
	if store.Token() != "valid-token" {
		t.Error("session cleared after a connection error")
	}
}

func TestLeaderboardGetRoundTrip(t *testing.T) {
	body := `{"success":true,"data":[{"id":1,"userId":9,"user":{"name":"Asha","department":"IT","year":3},"credits":42,"eventsAttended":7,"rank":1}]}`
	b := newFakeBackend(t, http.StatusOK, body)
	c := newTestClient(b, signedIn(t, "t", session.RoleUser))

	res, err := c.Leaderboard.Get(context.Background(), LeaderboardQuery{Period: PeriodSemester, Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := b.last(t)
	if got.Method != http.MethodGet || got.Path != "/leaderboard" {
		t.Errorf("request = %s %s, want GET /leaderboard", got.Method, got.Path)
	}
	if got.RawQuery != "limit=5&period=SEMESTER" {
		t.Errorf("query = %q, want %q", got.RawQuery, "limit=5&period=SEMESTER")
	}

	if string(res.Raw) != body {
		t.Errorf("raw body was modified:\n got %s\nwant %s", res.Raw, body)
	}

	want := []LeaderboardEntry{{
		ID:             1,
		UserID:         9,
		User:           &LeaderboardUser{Name: "Asha", Department: "IT", Year: 3},
		Credits:        42,
		EventsAttended: 7,
		Rank:           1,
	}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("leaderboard mismatch (-want +got):\n%s", diff)
	}
}

func TestLogin(t *testing.T) {
	b := newFakeBackend(t, http.StatusOK, `{"success":true,"data":{"token":"new-token","user":{"id":5,"name":"Admin","email":"a@b.com","role":"ADMIN"}}}`)
	store := session.NewMemoryStore()
	c := newTestClient(b, store)

	ctx := ContextWithScreen(context.Background(), "/auth/login")
	res, err := c.Auth.Login(ctx, "a@b.com", "pw", session.RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Error("expected a successful envelope")
	}

	got := b.last(t)
	if got.Method != http.MethodPost || got.Path != "/auth/admin/login" {
		t.Errorf("request = %s %s, want POST /auth/admin/login", got.Method, got.Path)
	}
	if got.Auth != "" {
		t.Errorf("login sent Authorization %q while signed out", got.Auth)
	}
	want := map[string]any{"email": "a@b.com", "password": "pw"}
	if diff := cmp.Diff(want, jsonBody(t, got.Body)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}

	if store.Token() != "new-token" || store.Role() != session.RoleAdmin {
		t.Errorf("session = (%q, %q), want (new-token, admin)", store.Token(), store.Role())
	}
}

func TestLoginFailureOnAuthScreen(t *testing.T) {
	b := newFakeBackend(t, http.StatusUnauthorized, `{"success":false,"message":"Invalid credentials"}`)
	store := session.NewMemoryStore()
	c := newTestClient(b, store)

	_, err := c.Auth.Login(ContextWithScreen(context.Background(), "/auth/login"), "a@b.com", "wrong", session.RoleUser)
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrSessionInvalidated) {
		t.Error("failed login on the login screen reported as a session invalidation")
	}
	if got, want := UserMessage(err), "Login failed. Please check your email and password and try again."; got != want {
		t.Errorf("UserMessage = %q, want %q", got, want)
	}
}

func TestLogout(t *testing.T) {
	b := newFakeBackend(t, http.StatusOK, `{}`)
	store := signedIn(t, "token", session.RoleUser)
	c := newTestClient(b, store)

	if err := c.Auth.Logout(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Token() != "" {
		t.Error("token not cleared")
	}
	if b.count() != 0 {
		t.Errorf("logout made %d requests, want 0", b.count())
	}
}

func TestMarkAttendance(t *testing.T) {
	b := newFakeBackend(t, http.StatusOK, `{"success":true,"data":{"id":1,"sessionId":42,"userId":9}}`)
	c := newTestClient(b, signedIn(t, "t", session.RoleUser))

	if _, err := c.Attendance.MarkAttendance(context.Background(), 42, "XYZ1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := b.last(t)
	if got.Method != http.MethodPost || got.Path != "/attendance/mark" {
		t.Errorf("request = %s %s, want POST /attendance/mark", got.Method, got.Path)
	}
	want := map[string]any{"sessionId": float64(42), "code": "XYZ1"}
	if diff := cmp.Diff(want, jsonBody(t, got.Body)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestRSVPCancel(t *testing.T) {
	b := newFakeBackend(t, http.StatusOK, `{"success":true,"message":"RSVP cancelled"}`)
	c := newTestClient(b, signedIn(t, "t", session.RoleUser))

	res, err := c.RSVP.Cancel(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Message != "RSVP cancelled" {
		t.Errorf("Message = %q", res.Message)
	}

	got := b.last(t)
	if got.Method != http.MethodDelete || got.Path != "/rsvp/7" {
		t.Errorf("request = %s %s, want DELETE /rsvp/7", got.Method, got.Path)
	}
	if len(got.Body) != 0 {
		t.Errorf("expected an empty body, got %q", got.Body)
	}
}

func TestWrapperRequests(t *testing.T) {
	read := false
	ctx := context.Background()

	tests := []struct {
		name      string
		call      func(c *Client) error
		wantReq   string
		wantQuery string
		wantBody  map[string]any
	}{
		{
			name: "register",
			call: func(c *Client) error {
				_, err := c.Auth.Register(ctx, RegisterRequest{Name: "A", Email: "a@b.com", Password: "secret1"})
				return err
			},
			wantReq:  "POST /auth/user/register",
			wantBody: map[string]any{"name": "A", "email": "a@b.com", "password": "secret1"},
		},
		{
			name:     "change password",
			call:     func(c *Client) error { _, err := c.Auth.ChangePassword(ctx, "old", "newpass"); return err },
			wantReq:  "POST /auth/change-password",
			wantBody: map[string]any{"oldPassword": "old", "newPassword": "newpass"},
		},
		{
			name:     "reset password",
			call:     func(c *Client) error { _, err := c.Auth.ResetPassword(ctx, "a@b.com"); return err },
			wantReq:  "POST /auth/reset-password",
			wantBody: map[string]any{"email": "a@b.com"},
		},
		{
			name:      "events with filters",
			call:      func(c *Client) error { _, err := c.Events.GetAll(ctx, EventFilters{Status: "UPCOMING", Page: 2}); return err },
			wantReq:   "GET /events",
			wantQuery: "page=2&status=UPCOMING",
		},
		{
			name:    "user events",
			call:    func(c *Client) error { _, err := c.Events.GetUserEvents(ctx); return err },
			wantReq: "GET /events/user/events",
		},
		{
			name:    "delete event",
			call:    func(c *Client) error { _, err := c.Events.Delete(ctx, 12); return err },
			wantReq: "DELETE /events/12",
		},
		{
			name:     "rsvp",
			call:     func(c *Client) error { _, err := c.RSVP.Create(ctx, 3); return err },
			wantReq:  "POST /rsvp",
			wantBody: map[string]any{"eventId": float64(3)},
		},
		{
			name:    "event rsvps",
			call:    func(c *Client) error { _, err := c.RSVP.GetEventRSVPs(ctx, 3); return err },
			wantReq: "GET /rsvp/event/3",
		},
		{
			name:    "attendance stats",
			call:    func(c *Client) error { _, err := c.Attendance.GetUserStats(ctx); return err },
			wantReq: "GET /attendance/user-attendance-stats",
		},
		{
			name:    "delete attendance session",
			call:    func(c *Client) error { _, err := c.Attendance.DeleteSession(ctx, 8); return err },
			wantReq: "DELETE /attendance/session/8",
		},
		{
			name:    "review stats",
			call:    func(c *Client) error { _, err := c.Reviews.GetEventStats(ctx, 4); return err },
			wantReq: "GET /reviews/event/4/stats",
		},
		{
			name:     "update review",
			call:     func(c *Client) error { _, err := c.Reviews.Update(ctx, 6, ReviewUpdate{Rating: 4}); return err },
			wantReq:  "PUT /reviews/6",
			wantBody: map[string]any{"rating": float64(4)},
		},
		{
			name:    "event resources",
			call:    func(c *Client) error { _, err := c.Resources.GetEventResources(ctx, 4); return err },
			wantReq: "GET /resources/event/4",
		},
		{
			name:    "delete gallery item",
			call:    func(c *Client) error { _, err := c.Gallery.Delete(ctx, 2); return err },
			wantReq: "DELETE /gallery/2",
		},
		{
			name:      "unread notifications",
			call:      func(c *Client) error { _, err := c.Notifications.GetAll(ctx, NotificationFilters{Read: &read, Limit: 10}); return err },
			wantReq:   "GET /notifications",
			wantQuery: "limit=10&read=false",
		},
		{
			name:    "mark notification read",
			call:    func(c *Client) error { _, err := c.Notifications.MarkAsRead(ctx, 11); return err },
			wantReq: "PUT /notifications/11/read",
		},
		{
			name:    "mark all notifications read",
			call:    func(c *Client) error { _, err := c.Notifications.MarkAllAsRead(ctx); return err },
			wantReq: "PUT /notifications/read-all",
		},
		{
			name:      "announcements",
			call:      func(c *Client) error { _, err := c.Announcements.GetAll(ctx, AnnouncementFilters{Limit: 5}); return err },
			wantReq:   "GET /announcements",
			wantQuery: "limit=5",
		},
		{
			name:    "mark announcement read",
			call:    func(c *Client) error { _, err := c.Announcements.MarkAsRead(ctx, 9); return err },
			wantReq: "POST /announcements/9/read",
		},
		{
			name:      "user rank",
			call:      func(c *Client) error { _, err := c.Leaderboard.GetUserRank(ctx, 9, PeriodMonthly); return err },
			wantReq:   "GET /leaderboard/user/9",
			wantQuery: "period=MONTHLY",
		},
		{
			name:    "event analytics",
			call:    func(c *Client) error { _, err := c.Analytics.GetEventAnalytics(ctx, 4); return err },
			wantReq: "GET /analytics/event/4",
		},
		{
			name:    "event calendar links",
			call:    func(c *Client) error { _, err := c.Calendar.GetEventLinks(ctx, 4); return err },
			wantReq: "GET /calendar/event/4",
		},
		{
			name:    "calendar",
			call:    func(c *Client) error { _, err := c.Calendar.GetAllEventsCalendar(ctx); return err },
			wantReq: "GET /calendar/all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend(t, http.StatusOK, `{"success":true}`)
			c := newTestClient(b, signedIn(t, "t", session.RoleUser))

			if err := tt.call(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := b.last(t)
			if gotReq := got.Method + " " + got.Path; gotReq != tt.wantReq {
				t.Errorf("request = %q, want %q", gotReq, tt.wantReq)
			}
			if got.RawQuery != tt.wantQuery {
				t.Errorf("query = %q, want %q", got.RawQuery, tt.wantQuery)
			}
			if tt.wantBody == nil {
				if len(got.Body) != 0 {
					t.Errorf("expected an empty body, got %q", got.Body)
				}
				return
			}
			if diff := cmp.Diff(tt.wantBody, jsonBody(t, got.Body)); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidationRejectsBeforeSending(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(c *Client) error
	}{
		{"invalid email", func(c *Client) error { _, err := c.Auth.Login(ctx, "not-an-email", "pw", session.RoleUser); return err }},
		{"missing password", func(c *Client) error { _, err := c.Auth.Login(ctx, "a@b.com", "", session.RoleUser); return err }},
		{"unknown role", func(c *Client) error { _, err := c.Auth.Login(ctx, "a@b.com", "pw", session.Role("staff")); return err }},
		{"rating out of range", func(c *Client) error {
			_, err := c.Reviews.Create(ctx, ReviewInput{EventID: 1, Rating: 6})
			return err
		}},
		{"zero event id", func(c *Client) error { _, err := c.RSVP.Cancel(ctx, 0); return err }},
		{"negative session id", func(c *Client) error { _, err := c.Attendance.MarkAttendance(ctx, -1, "X"); return err }},
		{"missing attendance code", func(c *Client) error { _, err := c.Attendance.MarkAttendance(ctx, 1, ""); return err }},
		{"invalid month", func(c *Client) error {
			_, err := c.Leaderboard.Get(ctx, LeaderboardQuery{Month: 13})
			return err
		}},
		{"invalid gallery url", func(c *Client) error {
			_, err := c.Gallery.Create(ctx, GalleryInput{EventID: 1, ImageURL: "not a url"})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend(t, http.StatusOK, `{"success":true}`)
			c := newTestClient(b, session.NewMemoryStore())

			err := tt.call(c)
			var ce *ClientError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ClientError, got %v", err)
			}
			if ce.StatusCode != 0 {
				t.Errorf("StatusCode = %d, want 0", ce.StatusCode)
			}
			if ce.UserMessage == "" {
				t.Error("validation error has no user message")
			}
			if b.count() != 0 {
				t.Errorf("backend received %d requests, want 0", b.count())
			}
		})
	}
}

func TestEnvelopeModes(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		strict     bool
		wantErr    bool
		wantStatus bool
	}{
		{"lenient accepts missing success", http.StatusOK, `{"data":[]}`, false, false, false},
		{"strict rejects missing success", http.StatusOK, `{"data":[]}`, true, true, false},
		{"strict accepts envelope", http.StatusOK, `{"success":true,"data":[]}`, true, false, true},
		{"strict rejects non-object", http.StatusOK, `"ok"`, true, true, false},
		{"lenient rejects malformed json", http.StatusOK, `not json`, false, true, false},
		{"empty body is a success", http.StatusNoContent, ``, true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend(t, tt.status, tt.body)
			c := New(Config{BaseURL: b.server.URL, StrictEnvelope: tt.strict}, session.NewMemoryStore())

			res, err := c.Announcements.GetAll(context.Background(), AnnouncementFilters{})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if got := StatusCode(err); got != 0 {
					t.Errorf("StatusCode = %d, want 0", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Success != tt.wantStatus {
				t.Errorf("Success = %v, want %v", res.Success, tt.wantStatus)
			}
		})
	}
}

func TestWithSessionSharesListeners(t *testing.T) {
	b := newFakeBackend(t, http.StatusUnauthorized, `{"success":false}`)
	shared := signedIn(t, "cli-token", session.RoleUser)
	root := newTestClient(b, shared)

	published := 0
	unsubscribe := root.OnSessionInvalidated(func(context.Context, SessionInvalidated) { published++ })

	perRequest := signedIn(t, "browser-token", session.RoleUser)
	c := root.WithSession(perRequest)
	ctx := ContextWithScreen(context.Background(), "/student/dashboard")

	_, _ = c.Notifications.GetUnreadCount(ctx)

	if got := b.last(t).Auth; got != "Bearer browser-token" {
		t.Errorf("Authorization = %q, want the per-request token", got)
	}
	if perRequest.Token() != "" {
		t.Error("per-request session not cleared")
	}
	if shared.Token() != "cli-token" {
		t.Error("shared session cleared by a per-request 401")
	}
	if published != 1 {
		t.Errorf("got %d events, want 1", published)
	}

	unsubscribe()
	_ = perRequest.Set("browser-token", session.RoleUser)
	_, _ = c.Notifications.GetUnreadCount(ctx)
	if published != 1 {
		t.Errorf("listener called after unsubscribe")
	}
}

func TestNewClientApiErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		path     string
		wantUser string
		wantLog  string
	}{
		{"login rejected", 401, `{"success":false,"message":"Invalid credentials"}`, "/auth/user/login",
			"Login failed. Please check your email and password and try again.", "cca api status 401 for /auth/user/login - Invalid credentials"},
		{"session expired", 401, `{}`, "/analytics/user",
			"Your session has expired. Please sign in again.", "cca api status 401 for /analytics/user"},
		{"backend validation message", 400, `{"success":false,"message":"Invalid attendance code"}`, "/attendance/mark",
			"Invalid attendance code", "cca api status 400 for /attendance/mark - Invalid attendance code"},
		{"error field", 409, `{"error":"Already registered"}`, "/rsvp",
			"Already registered", "cca api status 409 for /rsvp - Already registered"},
		{"non json body", 502, `<html>bad gateway</html>`, "/events",
			"The service is temporarily unavailable. Please try again later.", "cca api status 502 for /events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewClientApiError(tt.status, []byte(tt.body), tt.path, false)
			if err.UserError() != tt.wantUser {
				t.Errorf("UserError() = %q, want %q", err.UserError(), tt.wantUser)
			}
			if err.Error() != tt.wantLog {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantLog)
			}
		})
	}
}
