package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/danaam/danaam-go/domain"
)

// ListUsers fetches one page of the user directory. Admin only.
func (c *Client) ListUsers(ctx context.Context, page, pageSize int, filter domain.UserFilter) (*domain.Page[domain.UserListItem], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(pageSize))
	if filter.City != "" {
		query.Set("city", filter.City)
	}
	if filter.NameSearch != "" {
		query.Set("nameSearch", filter.NameSearch)
	}
	if filter.EmailSearch != "" {
		query.Set("emailSearch", filter.EmailSearch)
	}
	if filter.SortBy != "" {
		query.Set("sortBy", filter.SortBy)
	}
	query.Set("sortDescending", strconv.FormatBool(filter.SortDescending))

	var out domain.Page[domain.UserListItem]
	if err := c.do(ctx, http.MethodGet, "/users", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ActivateUser re-enables a user account. Admin only.
func (c *Client) ActivateUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPatch, "/users/"+userID+"/activate", nil, nil, nil)
}

// DeactivateUser disables a user account. Admin only.
func (c *Client) DeactivateUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPatch, "/users/"+userID+"/deactivate", nil, nil, nil)
}

// DeleteUser soft-deletes a user account. Admin only.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+userID, nil, nil, nil)
}

var _ domain.UserDirectory = (*Client)(nil)
