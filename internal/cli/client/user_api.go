package client

import (
	"context"
	"net/http"
)

// User is the admin view of an account
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	IsStaff   bool   `json:"is_staff"`
	IsActive  bool   `json:"is_active"`
}

// UserAPI covers admin user management
type UserAPI struct {
	c *Client
}

// Users returns the admin user endpoints
func (c *Client) Users() *UserAPI {
	return &UserAPI{c: c}
}

// List fetches a page of accounts. pageURL is a next/previous link, or empty for the first page.
func (u *UserAPI) List(ctx context.Context, pageURL string) Result[Page[User]] {
	if pageURL == "" {
		pageURL = "user/users/"
	}
	return Do[Page[User]](ctx, u.c, http.MethodGet, pageURL, nil)
}
