package client

import (
	"context"
	"fmt"
	"net/http"
)

// CalendarLinks are "add to calendar" links for one event
type CalendarLinks struct {
	Google  string `json:"google,omitempty"`
	Outlook string `json:"outlook,omitempty"`
	ICS     string `json:"ics,omitempty"`
}

type CalendarEntry struct {
	EventID int           `json:"eventId"`
	Title   string        `json:"title"`
	Start   string        `json:"start,omitempty"`
	End     string        `json:"end,omitempty"`
	Venue   string        `json:"venue,omitempty"`
	Links   CalendarLinks `json:"links"`
}

type CalendarAPI struct {
	c *Client
}

func (cal *CalendarAPI) GetEventLinks(ctx context.Context, eventID int) (*Response[CalendarLinks], error) {
	if err := validateID("event id", eventID); err != nil {
		return nil, err
	}
	return call[CalendarLinks](ctx, cal.c, http.MethodGet, fmt.Sprintf("/calendar/event/%d", eventID), nil, nil)
}

func (cal *CalendarAPI) GetAllEventsCalendar(ctx context.Context) (*Response[[]CalendarEntry], error) {
	return call[[]CalendarEntry](ctx, cal.c, http.MethodGet, "/calendar/all", nil, nil)
}
