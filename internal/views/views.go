// Package views renders the dashboard pages. The components are written in the .templ files
// next to this one and compiled with `templ generate`.
package views

import (
	"fmt"
	"strconv"

	"github.com/pasc-cca/ccadash/internal/client"
)

// Nav describes the navbar of a signed in page
type Nav struct {
	Active      string
	ProfilePath string
	IsAdmin     bool
}

var navLinks = []struct {
	path  string
	label string
}{
	{"/student/dashboard", "Dashboard"},
	{"/student/events", "Events"},
	{"/student/leaderboard", "Leaderboard"},
	{"/student/announcements", "Announcements"},
	{"/student/notifications", "Notifications"},
}

type LoginForm struct {
	Email string
	Role  string // "user" or "admin"
	Error string
}

func (f LoginForm) checked(role string) bool {
	return f.Role == role || (f.Role == "" && role == "user")
}

type SignupForm struct {
	Name       string
	Email      string
	StudentID  string
	Department string
	Year       int
	Error      string
}

func (f SignupForm) year() string {
	if f.Year > 0 {
		return strconv.Itoa(f.Year)
	}
	return ""
}

type ResetPasswordForm struct {
	Email  string
	Error  string
	Notice string
}

var loginRoles = []struct {
	value string
	label string
}{
	{"user", "Student"},
	{"admin", "Admin"},
}

// Profile is the signed in user's account as shown on the profile pages
type Profile struct {
	UserID int
	Email  string
	Role   string
	Stats  *client.AttendanceStats
	RSVPs  []client.RSVP
}

var features = []struct {
	title       string
	description string
}{
	{"Event Management", "Browse and register for exciting co-curricular activities"},
	{"Leaderboard", "Compete with peers and track your progress"},
	{"Credit Tracking", "Earn and monitor your CCA credit hours"},
	{"Community", "Connect with students across departments"},
}

var benefits = []string{
	"Real-time attendance tracking with QR codes",
	"Automated credit calculation and reporting",
	"Event reviews and ratings system",
	"Resource sharing and gallery",
	"Push notifications for updates",
	"Comprehensive analytics dashboard",
}

var highlights = []struct {
	title       string
	description string
}{
	{"Stay Updated", "Get instant notifications about new events, attendance confirmations, and credit updates."},
	{"Track Progress", "Monitor your CCA journey with detailed analytics and insights into your performance."},
	{"Achieve Goals", "Compete on leaderboards, earn achievements, and celebrate your milestones."},
}

var periods = []string{client.PeriodMonthly, client.PeriodSemester, client.PeriodYearly, client.PeriodAllTime}

func alertClass(kind string) string {
	return "alert alert-" + kind
}

func announcementClass(a client.Announcement) string {
	if a.IsRead {
		return "announcement"
	}
	return "announcement unread"
}

func announcementID(a client.Announcement) string {
	return fmt.Sprintf("announcement-%d", a.ID)
}

func announcementReadPath(a client.Announcement) string {
	return fmt.Sprintf("/student/announcements/%d/read", a.ID)
}

func rsvpAction(eventID int, registered bool) (path, label string) {
	if registered {
		return fmt.Sprintf("/student/events/%d/cancel", eventID), "Cancel registration"
	}
	return fmt.Sprintf("/student/events/%d/rsvp", eventID), "Register"
}

func rsvpEventTitle(r client.RSVP) string {
	if r.Event == nil {
		return fmt.Sprintf("Event #%d", r.EventID)
	}
	return r.Event.Title
}
