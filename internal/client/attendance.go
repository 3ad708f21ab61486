package client

import (
	"context"
	"fmt"
	"net/http"
)

type MarkAttendanceRequest struct {
	SessionID int    `json:"sessionId" validate:"gt=0"`
	Code      string `json:"code" validate:"required"`
}

type AttendanceRecord struct {
	ID        int          `json:"id"`
	SessionID int          `json:"sessionId"`
	UserID    int          `json:"userId"`
	MarkedAt  string       `json:"markedAt,omitempty"`
	User      *UserSummary `json:"user,omitempty"`
}

type AttendanceStats struct {
	TotalSessions  int     `json:"totalSessions"`
	Attended       int     `json:"attended"`
	AttendanceRate float64 `json:"attendanceRate"`
	TotalCredits   int     `json:"totalCredits"`
}

// AttendanceSession is a check-in window for an event, students mark attendance with its code
type AttendanceSession struct {
	ID        int    `json:"id"`
	EventID   int    `json:"eventId"`
	Title     string `json:"title,omitempty"`
	Code      string `json:"code,omitempty"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	IsActive  bool   `json:"isActive"`
}

type AttendanceSessionInput struct {
	EventID   int    `json:"eventId" validate:"gt=0"`
	Title     string `json:"title,omitempty"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime,omitempty"`
	IsActive  *bool  `json:"isActive,omitempty"`
}

type AttendanceAPI struct {
	c *Client
}

func (a *AttendanceAPI) MarkAttendance(ctx context.Context, sessionID int, code string) (*Response[AttendanceRecord], error) {
	return call[AttendanceRecord](ctx, a.c, http.MethodPost, "/attendance/mark", nil, MarkAttendanceRequest{
		SessionID: sessionID,
		Code:      code,
	})
}

func (a *AttendanceAPI) GetUserStats(ctx context.Context) (*Response[AttendanceStats], error) {
	return call[AttendanceStats](ctx, a.c, http.MethodGet, "/attendance/user-attendance-stats", nil, nil)
}

func (a *AttendanceAPI) GetSessionAttendance(ctx context.Context, sessionID int) (*Response[[]AttendanceRecord], error) {
	if err := validateID("session id", sessionID); err != nil {
		return nil, err
	}
	return call[[]AttendanceRecord](ctx, a.c, http.MethodGet, fmt.Sprintf("/attendance/session/%d", sessionID), nil, nil)
}

func (a *AttendanceAPI) CreateSession(ctx context.Context, input AttendanceSessionInput) (*Response[AttendanceSession], error) {
	return call[AttendanceSession](ctx, a.c, http.MethodPost, "/attendance/session", nil, input)
}

func (a *AttendanceAPI) UpdateSession(ctx context.Context, sessionID int, input AttendanceSessionInput) (*Response[AttendanceSession], error) {
	if err := validateID("session id", sessionID); err != nil {
		return nil, err
	}
	return call[AttendanceSession](ctx, a.c, http.MethodPut, fmt.Sprintf("/attendance/session/%d", sessionID), nil, input)
}

func (a *AttendanceAPI) DeleteSession(ctx context.Context, sessionID int) (*Ack, error) {
	if err := validateID("session id", sessionID); err != nil {
		return nil, err
	}
	return ack(ctx, a.c, http.MethodDelete, fmt.Sprintf("/attendance/session/%d", sessionID), nil)
}
