package client

import (
	"context"
	"fmt"
	"net/http"
)

type Review struct {
	ID        int          `json:"id"`
	EventID   int          `json:"eventId"`
	UserID    int          `json:"userId"`
	Rating    int          `json:"rating"`
	Comment   string       `json:"comment,omitempty"`
	CreatedAt string       `json:"createdAt,omitempty"`
	User      *UserSummary `json:"user,omitempty"`
}

type ReviewInput struct {
	EventID int    `json:"eventId" validate:"gt=0"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"max=1000"`
}

type ReviewUpdate struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"max=1000"`
}

type ReviewStats struct {
	AverageRating float64        `json:"averageRating"`
	TotalReviews  int            `json:"totalReviews"`
	Distribution  map[string]int `json:"distribution,omitempty"`
}

type ReviewAPI struct {
	c *Client
}

func (r *ReviewAPI) Create(ctx context.Context, input ReviewInput) (*Response[Review], error) {
	return call[Review](ctx, r.c, http.MethodPost, "/reviews", nil, input)
}

func (r *ReviewAPI) GetEventReviews(ctx context.Context, eventID int) (*Response[[]Review], error) {
	if err := validateID("event id", eventID); err != nil {
		return nil, err
	}
	return call[[]Review](ctx, r.c, http.MethodGet, fmt.Sprintf("/reviews/event/%d", eventID), nil, nil)
}

func (r *ReviewAPI) GetEventStats(ctx context.Context, eventID int) (*Response[ReviewStats], error) {
	if err := validateID("event id", eventID); err != nil {
		return nil, err
	}
	return call[ReviewStats](ctx, r.c, http.MethodGet, fmt.Sprintf("/reviews/event/%d/stats", eventID), nil, nil)
}

func (r *ReviewAPI) Update(ctx context.Context, reviewID int, input ReviewUpdate) (*Response[Review], error) {
	if err := validateID("review id", reviewID); err != nil {
		return nil, err
	}
	return call[Review](ctx, r.c, http.MethodPut, fmt.Sprintf("/reviews/%d", reviewID), nil, input)
}

func (r *ReviewAPI) Delete(ctx context.Context, reviewID int) (*Ack, error) {
	if err := validateID("review id", reviewID); err != nil {
		return nil, err
	}
	return ack(ctx, r.c, http.MethodDelete, fmt.Sprintf("/reviews/%d", reviewID), nil)
}
