package client

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/hireboard-dev/hireboard/internal/models"
)

// GeneratePlanRequest asks the backend to draft a plan for a job
type GeneratePlanRequest struct {
	JobID        uint   `json:"job_id" validate:"required"`
	Title        string `json:"title,omitempty"`
	CandidateIDs []uint `json:"candidate_ids,omitempty"`
}

// PlanRequest is the body of plan create and update calls
type PlanRequest struct {
	Title        string `json:"title,omitempty" validate:"required"`
	JobID        uint   `json:"job_id,omitempty" validate:"required"`
	Description  string `json:"description,omitempty"`
	Strategy     string `json:"strategy,omitempty"`
	CandidateIDs []uint `json:"candidate_ids,omitempty"`
}

// ListPlans returns a page of plans
func (c *Client) ListPlans(ctx context.Context, p ListParams) ([]models.Plan, error) {
	var plans []models.Plan
	if err := c.Get(ctx, "/plans", p.values(), &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// GetPlan returns one plan
func (c *Client) GetPlan(ctx context.Context, id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := c.Get(ctx, fmt.Sprintf("/plans/%d", id), nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// GeneratePlan drafts a plan for a job
func (c *Client) GeneratePlan(ctx context.Context, req GeneratePlanRequest) (*models.Plan, error) {
	if err := c.check("POST", "/plans/generate", req); err != nil {
		return nil, err
	}

	var plan models.Plan
	if err := c.Post(ctx, "/plans/generate", req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// CreatePlan saves a plan written by hand
func (c *Client) CreatePlan(ctx context.Context, req PlanRequest) (*models.Plan, error) {
	if err := c.check("POST", "/plans", req); err != nil {
		return nil, err
	}

	var plan models.Plan
	if err := c.Post(ctx, "/plans", req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// UpdatePlan replaces the given fields of a plan; like UpdateJob it is not
// validated.
func (c *Client) UpdatePlan(ctx context.Context, id uint, req PlanRequest) (*models.Plan, error) {
	var plan models.Plan
	if err := c.Put(ctx, fmt.Sprintf("/plans/%d", id), req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// DeletePlan removes a plan
func (c *Client) DeletePlan(ctx context.Context, id uint) error {
	return c.Delete(ctx, fmt.Sprintf("/plans/%d", id))
}

// ExportPlan writes the plan rendered as format ("pdf" by default) to w
func (c *Client) ExportPlan(ctx context.Context, id uint, format string, w io.Writer) (int64, error) {
	if format == "" {
		format = "pdf"
	}
	return c.Download(ctx, fmt.Sprintf("/plans/%d/export", id), url.Values{"format": {format}}, w)
}
