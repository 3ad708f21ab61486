package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type Announcement struct {
	ID        int          `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Priority  string       `json:"priority,omitempty"`
	IsRead    bool         `json:"isRead"`
	ExpiresAt string       `json:"expiresAt,omitempty"`
	CreatedAt string       `json:"createdAt,omitempty"`
	Author    *UserSummary `json:"author,omitempty"`
}

type AnnouncementInput struct {
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Priority  string `json:"priority,omitempty" validate:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

type AnnouncementFilters struct {
	Priority string `json:"priority,omitempty"`
	Limit    int    `json:"limit,omitempty" validate:"gte=0"`
}

type AnnouncementAPI struct {
	c *Client
}

func (a *AnnouncementAPI) GetAll(ctx context.Context, filters AnnouncementFilters) (*Response[[]Announcement], error) {
	if err := validateRequest(filters); err != nil {
		return nil, err
	}
	q := url.Values{}
	addString(q, "priority", filters.Priority)
	addInt(q, "limit", filters.Limit)

	return call[[]Announcement](ctx, a.c, http.MethodGet, "/announcements", q, nil)
}

func (a *AnnouncementAPI) GetByID(ctx context.Context, id int) (*Response[Announcement], error) {
	if err := validateID("announcement id", id); err != nil {
		return nil, err
	}
	return call[Announcement](ctx, a.c, http.MethodGet, fmt.Sprintf("/announcements/%d", id), nil, nil)
}

func (a *AnnouncementAPI) Create(ctx context.Context, input AnnouncementInput) (*Response[Announcement], error) {
	return call[Announcement](ctx, a.c, http.MethodPost, "/announcements", nil, input)
}

func (a *AnnouncementAPI) Update(ctx context.Context, id int, input AnnouncementInput) (*Response[Announcement], error) {
	if err := validateID("announcement id", id); err != nil {
		return nil, err
	}
	return call[Announcement](ctx, a.c, http.MethodPut, fmt.Sprintf("/announcements/%d", id), nil, input)
}

func (a *AnnouncementAPI) Delete(ctx context.Context, id int) (*Ack, error) {
	if err := validateID("announcement id", id); err != nil {
		return nil, err
	}
	return ack(ctx, a.c, http.MethodDelete, fmt.Sprintf("/announcements/%d", id), nil)
}

func (a *AnnouncementAPI) MarkAsRead(ctx context.Context, id int) (*Ack, error) {
	if err := validateID("announcement id", id); err != nil {
		return nil, err
	}
	return ack(ctx, a.c, http.MethodPost, fmt.Sprintf("/announcements/%d/read", id), nil)
}
