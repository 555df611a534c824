package api

import (
	"context"
	"net/http"

	"github.com/danaam/danaam-go/domain"
)

// GetProfile fetches the current user's profile.
func (c *Client) GetProfile(ctx context.Context) (*domain.Profile, error) {
	var out domain.Profile
	if err := c.do(ctx, http.MethodGet, "/profile", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes the editable subset of the current user's profile.
func (c *Client) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) error {
	return c.do(ctx, http.MethodPatch, "/profile", nil, update, nil)
}

// GetUserProfile fetches another user's profile. Admin only.
func (c *Client) GetUserProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var out domain.Profile
	if err := c.do(ctx, http.MethodGet, "/profile/"+userID, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

var _ domain.ProfileGateway = (*Client)(nil)
