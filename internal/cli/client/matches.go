package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/hireboard-dev/hireboard/internal/models"
)

const defaultBestLimit = 10

// MatchQuery filters the match list
type MatchQuery struct {
	ListParams
	JobID    uint
	ResumeID uint
	MinScore float64
}

// CreateMatchRequest asks the backend to score one resume against one job
type CreateMatchRequest struct {
	JobID    uint `json:"job_id" validate:"required"`
	ResumeID uint `json:"resume_id" validate:"required"`
}

// BatchMatchRequest scores several resumes against one job
type BatchMatchRequest struct {
	JobID     uint   `json:"job_id" validate:"required"`
	ResumeIDs []uint `json:"resume_ids" validate:"required,min=1"`
}

// ListMatches returns matches filtered by q
func (c *Client) ListMatches(ctx context.Context, q MatchQuery) ([]models.Match, error) {
	v := q.values()
	if q.JobID != 0 {
		v.Set("job_id", strconv.FormatUint(uint64(q.JobID), 10))
	}
	if q.ResumeID != 0 {
		v.Set("resume_id", strconv.FormatUint(uint64(q.ResumeID), 10))
	}
	if q.MinScore > 0 {
		v.Set("min_score", strconv.FormatFloat(q.MinScore, 'f', -1, 64))
	}

	var matches []models.Match
	if err := c.Get(ctx, "/matches", v, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// CreateMatch scores one resume against one job
func (c *Client) CreateMatch(ctx context.Context, req CreateMatchRequest) (*models.Match, error) {
	if err := c.check("POST", "/matches", req); err != nil {
		return nil, err
	}

	var match models.Match
	if err := c.Post(ctx, "/matches", req, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// BatchCreateMatches scores several resumes against one job
func (c *Client) BatchCreateMatches(ctx context.Context, jobID uint, resumeIDs []uint) ([]models.Match, error) {
	req := BatchMatchRequest{JobID: jobID, ResumeIDs: resumeIDs}
	if err := c.check("POST", "/matches/batch", req); err != nil {
		return nil, err
	}

	var matches []models.Match
	if err := c.Post(ctx, "/matches/batch", req, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// BestMatchesForJob returns the top scored resumes for a job
func (c *Client) BestMatchesForJob(ctx context.Context, jobID uint, limit int) ([]models.Match, error) {
	return c.bestMatches(ctx, fmt.Sprintf("/matches/best-for-job/%d", jobID), limit)
}

// BestMatchesForResume returns the top scored jobs for a resume
func (c *Client) BestMatchesForResume(ctx context.Context, resumeID uint, limit int) ([]models.Match, error) {
	return c.bestMatches(ctx, fmt.Sprintf("/matches/best-for-resume/%d", resumeID), limit)
}

func (c *Client) bestMatches(ctx context.Context, path string, limit int) ([]models.Match, error) {
	if limit <= 0 {
		limit = defaultBestLimit
	}

	var matches []models.Match
	if err := c.Get(ctx, path, url.Values{"limit": {strconv.Itoa(limit)}}, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}
