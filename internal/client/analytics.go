package client

import (
	"context"
	"fmt"
	"net/http"
)

type UserOverview struct {
	TotalCredits   int     `json:"totalCredits"`
	EventsAttended int     `json:"eventsAttended"`
	EventsRSVPd    int     `json:"eventsRsvped,omitempty"`
	AttendanceRate float64 `json:"attendanceRate"`
	ReviewsGiven   int     `json:"reviewsGiven,omitempty"`
}

type UserAnalytics struct {
	Overview       UserOverview `json:"overview"`
	UpcomingEvents []Event      `json:"upcomingEvents"`
	RecentEvents   []Event      `json:"recentEvents,omitempty"`
}

type DashboardOverview struct {
	TotalUsers      int     `json:"totalUsers"`
	TotalEvents     int     `json:"totalEvents"`
	ActiveEvents    int     `json:"activeEvents"`
	TotalAttendance int     `json:"totalAttendance"`
	AverageRating   float64 `json:"averageRating"`
}

// DashboardAnalytics is the admin overview
type DashboardAnalytics struct {
	Overview       DashboardOverview `json:"overview"`
	UpcomingEvents []Event           `json:"upcomingEvents,omitempty"`
}

type EventAnalytics struct {
	EventID         int     `json:"eventId"`
	TotalRSVPs      int     `json:"totalRsvps"`
	TotalAttendance int     `json:"totalAttendance"`
	AttendanceRate  float64 `json:"attendanceRate"`
	AverageRating   float64 `json:"averageRating"`
	TotalReviews    int     `json:"totalReviews"`
}

type AnalyticsAPI struct {
	c *Client
}

func (a *AnalyticsAPI) GetDashboard(ctx context.Context) (*Response[DashboardAnalytics], error) {
	return call[DashboardAnalytics](ctx, a.c, http.MethodGet, "/analytics/dashboard", nil, nil)
}

func (a *AnalyticsAPI) GetEventAnalytics(ctx context.Context, eventID int) (*Response[EventAnalytics], error) {
	if err := validateID("event id", eventID); err != nil {
		return nil, err
	}
	return call[EventAnalytics](ctx, a.c, http.MethodGet, fmt.Sprintf("/analytics/event/%d", eventID), nil, nil)
}

// GetUserAnalytics returns the signed in student's overview
func (a *AnalyticsAPI) GetUserAnalytics(ctx context.Context) (*Response[UserAnalytics], error) {
	return call[UserAnalytics](ctx, a.c, http.MethodGet, "/analytics/user", nil, nil)
}
