package client

import (
	"context"
	"fmt"
	"net/http"
)

// Resource is a document or link attached to an event (slides, recordings, ...)
type Resource struct {
	ID          int    `json:"id"`
	EventID     int    `json:"eventId"`
	Title       string `json:"title"`
	Type        string `json:"type,omitempty"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

type ResourceInput struct {
	EventID     int    `json:"eventId" validate:"gt=0"`
	Title       string `json:"title" validate:"required"`
	Type        string `json:"type,omitempty"`
	URL         string `json:"url" validate:"required,url"`
	Description string `json:"description,omitempty"`
}

type ResourceAPI struct {
	c *Client
}

func (r *ResourceAPI) Create(ctx context.Context, input ResourceInput) (*Response[Resource], error) {
	return call[Resource](ctx, r.c, http.MethodPost, "/resources", nil, input)
}

func (r *ResourceAPI) GetEventResources(ctx context.Context, eventID int) (*Response[[]Resource], error) {
	if err := validateID("event id", eventID); err != nil {
		return nil, err
	}
	return call[[]Resource](ctx, r.c, http.MethodGet, fmt.Sprintf("/resources/event/%d", eventID), nil, nil)
}

func (r *ResourceAPI) Update(ctx context.Context, resourceID int, input ResourceInput) (*Response[Resource], error) {
	if err := validateID("resource id", resourceID); err != nil {
		return nil, err
	}
	return call[Resource](ctx, r.c, http.MethodPut, fmt.Sprintf("/resources/%d", resourceID), nil, input)
}

func (r *ResourceAPI) Delete(ctx context.Context, resourceID int) (*Ack, error) {
	if err := validateID("resource id", resourceID); err != nil {
		return nil, err
	}
	return ack(ctx, r.c, http.MethodDelete, fmt.Sprintf("/resources/%d", resourceID), nil)
}
