package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// UserSummary is the user embedded in events, reviews, attendance records and announcements
type UserSummary struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
	Year       int    `json:"year,omitempty"`
}

// Event dates are passed through as sent by the backend (ISO 8601)
type Event struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Venue       string `json:"venue,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Credits     int    `json:"credits"`
	Capacity    int    `json:"capacity,omitempty"`
	Status      string `json:"status,omitempty"`
	PosterURL   string `json:"posterUrl,omitempty"`
	RSVPCount   int    `json:"rsvpCount,omitempty"`
	HasRSVPd    bool   `json:"hasRsvped,omitempty"`
}

type EventInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Venue       string `json:"venue" validate:"required"`
	StartDate   string `json:"startDate" validate:"required"`
	EndDate     string `json:"endDate,omitempty"`
	Credits     int    `json:"credits" validate:"gte=0"`
	Capacity    int    `json:"capacity,omitempty" validate:"gte=0"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=UPCOMING ONGOING COMPLETED CANCELLED"`
	PosterURL   string `json:"posterUrl,omitempty" validate:"omitempty,url"`
}

// EventFilters are sent as query parameters, zero values are omitted
type EventFilters struct {
	Status string `json:"status,omitempty"`
	Page   int    `json:"page,omitempty" validate:"gte=0"`
	Limit  int    `json:"limit,omitempty" validate:"gte=0"`
}

type EventAPI struct {
	c *Client
}

func (e *EventAPI) GetAll(ctx context.Context, filters EventFilters) (*Response[[]Event], error) {
	if err := validateRequest(filters); err != nil {
		return nil, err
	}
	q := url.Values{}
	addString(q, "status", filters.Status)
	addInt(q, "page", filters.Page)
	addInt(q, "limit", filters.Limit)

	return call[[]Event](ctx, e.c, http.MethodGet, "/events", q, nil)
}

func (e *EventAPI) GetByID(ctx context.Context, id int) (*Response[Event], error) {
	if err := validateID("event id", id); err != nil {
		return nil, err
	}
	return call[Event](ctx, e.c, http.MethodGet, fmt.Sprintf("/events/%d", id), nil, nil)
}

func (e *EventAPI) Create(ctx context.Context, input EventInput) (*Response[Event], error) {
	return call[Event](ctx, e.c, http.MethodPost, "/events", nil, input)
}

func (e *EventAPI) Update(ctx context.Context, id int, input EventInput) (*Response[Event], error) {
	if err := validateID("event id", id); err != nil {
		return nil, err
	}
	return call[Event](ctx, e.c, http.MethodPut, fmt.Sprintf("/events/%d", id), nil, input)
}

func (e *EventAPI) Delete(ctx context.Context, id int) (*Ack, error) {
	if err := validateID("event id", id); err != nil {
		return nil, err
	}
	return ack(ctx, e.c, http.MethodDelete, fmt.Sprintf("/events/%d", id), nil)
}

// GetUserEvents returns the events the signed in student has registered for
func (e *EventAPI) GetUserEvents(ctx context.Context) (*Response[[]Event], error) {
	return call[[]Event](ctx, e.c, http.MethodGet, "/events/user/events", nil, nil)
}
