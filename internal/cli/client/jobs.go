package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/hireboard-dev/hireboard/internal/models"
)

// ListParams is the paging shared by list endpoints
type ListParams struct {
	Skip  int
	Limit int
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	if p.Skip > 0 {
		v.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	return v
}

// JobQuery filters the job list
type JobQuery struct {
	ListParams
	PositionName string
	Department   string
}

// JobRequest is the body of job create and update calls
type JobRequest struct {
	PositionName     string   `json:"position_name,omitempty" validate:"required"`
	Department       string   `json:"department,omitempty"`
	Responsibilities string   `json:"responsibilities,omitempty" validate:"required"`
	Requirements     string   `json:"requirements,omitempty" validate:"required"`
	SalaryRange      string   `json:"salary_range,omitempty"`
	Location         string   `json:"location,omitempty"`
	Tags             []string `json:"tags,omitempty"`
}

// ListJobs returns the jobs matching q
func (c *Client) ListJobs(ctx context.Context, q JobQuery) ([]models.Job, error) {
	v := q.values()
	if q.PositionName != "" {
		v.Set("position_name", q.PositionName)
	}
	if q.Department != "" {
		v.Set("department", q.Department)
	}

	var jobs []models.Job
	if err := c.Get(ctx, "/jobs", v, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob returns one job
func (c *Client) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	if err := c.Get(ctx, fmt.Sprintf("/jobs/%d", id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJob creates a job
func (c *Client) CreateJob(ctx context.Context, req JobRequest) (*models.Job, error) {
	if err := c.check("POST", "/jobs", req); err != nil {
		return nil, err
	}

	var job models.Job
	if err := c.Post(ctx, "/jobs", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateJob replaces the given fields of a job. Validation is skipped since
// partial updates leave required fields empty.
func (c *Client) UpdateJob(ctx context.Context, id uint, req JobRequest) (*models.Job, error) {
	var job models.Job
	if err := c.Put(ctx, fmt.Sprintf("/jobs/%d", id), req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// DeleteJob removes a job
func (c *Client) DeleteJob(ctx context.Context, id uint) error {
	return c.Delete(ctx, fmt.Sprintf("/jobs/%d", id))
}

// UploadJobDocument uploads a job description document for parsing
func (c *Client) UploadJobDocument(ctx context.Context, path, positionName, department string) (*models.Job, error) {
	fields := map[string]string{
		"position_name": positionName,
		"department":    department,
	}

	var job models.Job
	if err := c.PostMultipart(ctx, "/jobs/upload", fields, []FileField{{FieldName: "file", Path: path}}, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ParseJobDocument extracts job fields from a document. Nothing is saved.
func (c *Client) ParseJobDocument(ctx context.Context, path string) (*models.JobParseResult, error) {
	var result models.JobParseResult
	if err := c.PostMultipart(ctx, "/jobs/parse", nil, []FileField{{FieldName: "file", Path: path}}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
