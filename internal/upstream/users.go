package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// User is the upstream representation of an account.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	LastName  string `json:"lastname"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// UserParams carries create/update payloads for the users resource.
type UserParams struct {
	Email    string `json:"Email,omitempty"`
	Name     string `json:"Name,omitempty"`
	LastName string `json:"LastName,omitempty"`
	Role     string `json:"Role,omitempty"`
	Password string `json:"Password,omitempty"`
}

// ListUsers returns all users. Admin-only upstream.
func (c *Client) ListUsers(ctx context.Context, accessToken string) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/users", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser returns a single user by id.
func (c *Client) GetUser(ctx context.Context, accessToken, id string) (User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), accessToken, nil, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// CreateUser registers a user on behalf of an admin.
func (c *Client) CreateUser(ctx context.Context, accessToken string, params UserParams) (User, error) {
	var out User
	if err := c.do(ctx, http.MethodPost, "/users", accessToken, params, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// UpdateUser applies a partial update to a user.
func (c *Client) UpdateUser(ctx context.Context, accessToken, id string, params UserParams) (User, error) {
	var out User
	if err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), accessToken, params, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, accessToken, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), accessToken, nil, nil)
}

// InactiveUsers lists users with no activity for the given number of days.
func (c *Client) InactiveUsers(ctx context.Context, accessToken string, days int) ([]User, error) {
	var out []User
	path := fmt.Sprintf("/users/inactive/%d", days)
	if err := c.do(ctx, http.MethodGet, path, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
