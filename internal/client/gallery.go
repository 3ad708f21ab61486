package client

import (
	"context"
	"fmt"
	"net/http"
)

type GalleryItem struct {
	ID        int    `json:"id"`
	EventID   int    `json:"eventId"`
	ImageURL  string `json:"imageUrl"`
	Caption   string `json:"caption,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type GalleryInput struct {
	EventID  int    `json:"eventId" validate:"gt=0"`
	ImageURL string `json:"imageUrl" validate:"required,url"`
	Caption  string `json:"caption,omitempty" validate:"max=500"`
}

type GalleryAPI struct {
	c *Client
}

func (g *GalleryAPI) Create(ctx context.Context, input GalleryInput) (*Response[GalleryItem], error) {
	return call[GalleryItem](ctx, g.c, http.MethodPost, "/gallery", nil, input)
}

func (g *GalleryAPI) GetEventGallery(ctx context.Context, eventID int) (*Response[[]GalleryItem], error) {
	if err := validateID("event id", eventID); err != nil {
		return nil, err
	}
	return call[[]GalleryItem](ctx, g.c, http.MethodGet, fmt.Sprintf("/gallery/event/%d", eventID), nil, nil)
}

func (g *GalleryAPI) Update(ctx context.Context, galleryID int, input GalleryInput) (*Response[GalleryItem], error) {
	if err := validateID("gallery id", galleryID); err != nil {
		return nil, err
	}
	return call[GalleryItem](ctx, g.c, http.MethodPut, fmt.Sprintf("/gallery/%d", galleryID), nil, input)
}

func (g *GalleryAPI) Delete(ctx context.Context, galleryID int) (*Ack, error) {
	if err := validateID("gallery id", galleryID); err != nil {
		return nil, err
	}
	return ack(ctx, g.c, http.MethodDelete, fmt.Sprintf("/gallery/%d", galleryID), nil)
}
