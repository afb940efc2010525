package client

import (
	"context"
	"fmt"

	"github.com/hireboard-dev/hireboard/internal/models"
)

// CreateUserRequest represents an admin request to create an account
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name,omitempty"`
	IsAdmin  bool   `json:"is_superuser"`
}

// ListUsers returns all accounts (admin only)
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.Get(ctx, "/auth/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns one account (admin only)
func (c *Client) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := c.Get(ctx, fmt.Sprintf("/auth/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates an account (admin only)
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := c.check("POST", "/auth/users", req); err != nil {
		return nil, err
	}

	var user models.User
	if err := c.Post(ctx, "/auth/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser changes another account (admin only)
func (c *Client) UpdateUser(ctx context.Context, id uint, req UpdateUserRequest) (*models.User, error) {
	path := fmt.Sprintf("/auth/users/%d", id)
	if err := c.check("PUT", path, req); err != nil {
		return nil, err
	}

	var user models.User
	if err := c.Put(ctx, path, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account (admin only)
func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.Delete(ctx, fmt.Sprintf("/auth/users/%d", id))
}
