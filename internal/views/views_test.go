package views

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/pasc-cca/ccadash/internal/client"
	"github.com/pasc-cca/ccadash/internal/dashboard"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return buf.String()
}

func TestNavbarProfileLink(t *testing.T) {
	tests := []struct {
		name string
		nav  *Nav
		want string
	}{
		{"student", &Nav{ProfilePath: "/student/profile"}, `href="/student/profile"`},
		{"admin", &Nav{ProfilePath: "/admin/profile", IsAdmin: true}, `href="/admin/profile"`},
		{"signed out", nil, `href="/auth/login"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, Page("Test", tt.nav, nil))
			if !strings.Contains(out, tt.want) {
				t.Errorf("navbar does not contain %s", tt.want)
			}
		})
	}
}

func TestNavbarMarksActivePage(t *testing.T) {
	out := render(t, Page("Events", &Nav{Active: "/student/events", ProfilePath: "/student/profile"}, nil))

	if !strings.Contains(out, `<a href="/student/events" class="active" aria-current="page">Events</a>`) {
		t.Errorf("events link is not marked active: %s", out)
	}
	if strings.Count(out, `aria-current="page"`) != 1 {
		t.Errorf("want exactly one active link: %s", out)
	}
}

func TestLoginPageKeepsForm(t *testing.T) {
	out := render(t, LoginPage(LoginForm{Email: "a@b.co", Role: "admin", Error: "Invalid credentials"}))

	for _, want := range []string{
		`value="a@b.co"`,
		`value="admin" checked`,
		`<div role="alert" class="alert alert-error">Invalid credentials</div>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("login page does not contain %s", want)
		}
	}
	if strings.Contains(out, `value="user" checked`) {
		t.Error("student role should not be checked")
	}
}

func TestBackendValuesAreEscaped(t *testing.T) {
	out := render(t, AnnouncementItem(client.Announcement{
		ID:      1,
		Title:   `<script>alert("x")</script>`,
		Content: "Tom & Jerry",
	}))

	if strings.Contains(out, "<script>") {
		t.Errorf("announcement title was not escaped: %s", out)
	}
	if !strings.Contains(out, "Tom &amp; Jerry") {
		t.Errorf("announcement content was not escaped: %s", out)
	}
	if !strings.Contains(out, `hx-post="/student/announcements/1/read"`) {
		t.Errorf("unread announcement has no mark as read form: %s", out)
	}
}

func TestDashboardPage(t *testing.T) {
	d := &dashboard.StudentDashboard{
		Stats: dashboard.Stats{TotalCredits: 1250, EventsAttended: 7, UpcomingEvents: 2, CompletionRate: 87.5},
		TopPerformers: []client.LeaderboardEntry{
			{UserID: 4, User: &client.LeaderboardUser{Name: "Asha Rao", Department: "IT"}, Credits: 60, Rank: 1},
		},
		UserRank:    &client.LeaderboardEntry{UserID: 9, UserName: "You", Credits: 42, Rank: 12},
		Unavailable: []string{"announcements"},
	}

	out := render(t, DashboardPage(d, 9, &Nav{Active: "/student/dashboard", ProfilePath: "/student/profile"}))

	for _, want := range []string{"1,250", "88%", "12th with 42 credits", "Asha Rao", "AR", "shown with default values"} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard does not contain %q", want)
		}
	}
}

func TestRSVPButton(t *testing.T) {
	if out := render(t, RSVPButton(3, false)); !strings.Contains(out, `/student/events/3/rsvp`) {
		t.Errorf("unregistered event should offer rsvp: %s", out)
	}
	if out := render(t, RSVPButton(3, true)); !strings.Contains(out, `/student/events/3/cancel`) {
		t.Errorf("registered event should offer cancel: %s", out)
	}
}

func TestStatic(t *testing.T) {
	rr := httptest.NewRecorder()
	Static().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), ".navbar") {
		t.Error("stylesheet content not served")
	}
}
