package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type Notification struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type,omitempty"`
	Read      bool   `json:"read"`
	Link      string `json:"link,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// NotificationFilters - a nil Read returns both read and unread notifications
type NotificationFilters struct {
	Read  *bool `json:"read,omitempty"`
	Limit int   `json:"limit,omitempty" validate:"gte=0"`
}

type UnreadCount struct {
	Count int `json:"count"`
}

type NotificationAPI struct {
	c *Client
}

func (n *NotificationAPI) GetAll(ctx context.Context, filters NotificationFilters) (*Response[[]Notification], error) {
	if err := validateRequest(filters); err != nil {
		return nil, err
	}
	q := url.Values{}
	addBool(q, "read", filters.Read)
	addInt(q, "limit", filters.Limit)

	return call[[]Notification](ctx, n.c, http.MethodGet, "/notifications", q, nil)
}

func (n *NotificationAPI) MarkAsRead(ctx context.Context, notificationID int) (*Ack, error) {
	if err := validateID("notification id", notificationID); err != nil {
		return nil, err
	}
	return ack(ctx, n.c, http.MethodPut, fmt.Sprintf("/notifications/%d/read", notificationID), nil)
}

func (n *NotificationAPI) MarkAllAsRead(ctx context.Context) (*Ack, error) {
	return ack(ctx, n.c, http.MethodPut, "/notifications/read-all", nil)
}

func (n *NotificationAPI) GetUnreadCount(ctx context.Context) (*Response[UnreadCount], error) {
	return call[UnreadCount](ctx, n.c, http.MethodGet, "/notifications/unread-count", nil, nil)
}

func (n *NotificationAPI) Delete(ctx context.Context, notificationID int) (*Ack, error) {
	if err := validateID("notification id", notificationID); err != nil {
		return nil, err
	}
	return ack(ctx, n.c, http.MethodDelete, fmt.Sprintf("/notifications/%d", notificationID), nil)
}
