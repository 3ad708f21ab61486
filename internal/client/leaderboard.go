package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Leaderboard periods accepted by the backend. The client does not restrict the value.
const (
	PeriodMonthly  = "MONTHLY"
	PeriodSemester = "SEMESTER"
	PeriodYearly   = "YEARLY"
	PeriodAllTime  = "ALL_TIME"
)

type LeaderboardUser struct {
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
	Year       int    `json:"year,omitempty"`
}

type LeaderboardEntry struct {
	ID             int              `json:"id,omitempty"`
	UserID         int              `json:"userId"`
	User           *LeaderboardUser `json:"user,omitempty"`
	UserName       string           `json:"userName,omitempty"`
	Credits        int              `json:"credits"`
	EventsAttended int              `json:"eventsAttended"`
	Rank           int              `json:"rank"`
}

// DisplayName returns the nested user name, falling back to the flat userName used by synthesized entries
func (e LeaderboardEntry) DisplayName() string {
	if e.User != nil && e.User.Name != "" {
		return e.User.Name
	}
	return e.UserName
}

type LeaderboardQuery struct {
	Period string `json:"period,omitempty"`
	Year   int    `json:"year,omitempty" validate:"gte=0"`
	Month  int    `json:"month,omitempty" validate:"gte=0,lte=12"`
	Limit  int    `json:"limit,omitempty" validate:"gte=0"`
}

type MyRank struct {
	Rank       int `json:"rank"`
	TotalUsers int `json:"totalUsers"`
	Credits    int `json:"credits"`
}

type UserRank struct {
	UserID         int    `json:"userId"`
	Period         string `json:"period,omitempty"`
	Rank           int    `json:"rank"`
	TotalUsers     int    `json:"totalUsers,omitempty"`
	Credits        int    `json:"credits"`
	EventsAttended int    `json:"eventsAttended,omitempty"`
}

type LeaderboardAPI struct {
	c *Client
}

func (l *LeaderboardAPI) Get(ctx context.Context, query LeaderboardQuery) (*Response[[]LeaderboardEntry], error) {
	if err := validateRequest(query); err != nil {
		return nil, err
	}
	q := url.Values{}
	addString(q, "period", query.Period)
	addInt(q, "year", query.Year)
	addInt(q, "month", query.Month)
	addInt(q, "limit", query.Limit)

	return call[[]LeaderboardEntry](ctx, l.c, http.MethodGet, "/leaderboard", q, nil)
}

func (l *LeaderboardAPI) GetMyRank(ctx context.Context) (*Response[MyRank], error) {
	return call[MyRank](ctx, l.c, http.MethodGet, "/leaderboard/my-rank", nil, nil)
}

func (l *LeaderboardAPI) GetUserRank(ctx context.Context, userID int, period string) (*Response[UserRank], error) {
	if err := validateID("user id", userID); err != nil {
		return nil, err
	}
	q := url.Values{}
	addString(q, "period", period)

	return call[UserRank](ctx, l.c, http.MethodGet, fmt.Sprintf("/leaderboard/user/%d", userID), q, nil)
}
