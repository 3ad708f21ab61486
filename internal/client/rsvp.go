package client

import (
	"context"
	"fmt"
	"net/http"
)

type RSVP struct {
	ID        int          `json:"id"`
	EventID   int          `json:"eventId"`
	UserID    int          `json:"userId"`
	Status    string       `json:"status,omitempty"`
	CreatedAt string       `json:"createdAt,omitempty"`
	Event     *Event       `json:"event,omitempty"`
	User      *UserSummary `json:"user,omitempty"`
}

type RSVPRequest struct {
	EventID int `json:"eventId" validate:"gt=0"`
}

type RSVPAPI struct {
	c *Client
}

func (r *RSVPAPI) Create(ctx context.Context, eventID int) (*Response[RSVP], error) {
	return call[RSVP](ctx, r.c, http.MethodPost, "/rsvp", nil, RSVPRequest{EventID: eventID})
}

// Cancel withdraws the signed in student's RSVP. The request has no body.
func (r *RSVPAPI) Cancel(ctx context.Context, eventID int) (*Ack, error) {
	if err := validateID("event id", eventID); err != nil {
		return nil, err
	}
	return ack(ctx, r.c, http.MethodDelete, fmt.Sprintf("/rsvp/%d", eventID), nil)
}

func (r *RSVPAPI) GetEventRSVPs(ctx context.Context, eventID int) (*Response[[]RSVP], error) {
	if err := validateID("event id", eventID); err != nil {
		return nil, err
	}
	return call[[]RSVP](ctx, r.c, http.MethodGet, fmt.Sprintf("/rsvp/event/%d", eventID), nil, nil)
}

func (r *RSVPAPI) GetUserRSVPs(ctx context.Context) (*Response[[]RSVP], error) {
	return call[[]RSVP](ctx, r.c, http.MethodGet, "/rsvp/user", nil, nil)
}
