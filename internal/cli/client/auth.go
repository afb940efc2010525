package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hireboard-dev/hireboard/internal/models"
)

// LoginRequest represents the login form
type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name,omitempty"`
}

// UpdateUserRequest carries the profile fields to change; empty fields are
// left as they are
type UpdateUserRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// Login exchanges username and password for a bearer token. The backend
// expects an OAuth2 password form.
func (c *Client) Login(ctx context.Context, username, password string) (*models.Token, error) {
	req := LoginRequest{Username: username, Password: password}
	if err := c.check("POST", "/auth/login", req); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var token models.Token
	if err := c.PostForm(ctx, "/auth/login", form, &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("login response carried no access token")
	}
	return &token, nil
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if err := c.check("POST", "/auth/register", req); err != nil {
		return nil, err
	}

	var user models.User
	if err := c.Post(ctx, "/auth/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser returns the profile of the token owner
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.Get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateCurrentUser changes the token owner's profile
func (c *Client) UpdateCurrentUser(ctx context.Context, req UpdateUserRequest) (*models.User, error) {
	if err := c.check("PUT", "/auth/me", req); err != nil {
		return nil, err
	}

	var user models.User
	if err := c.Put(ctx, "/auth/me", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
