package client

import (
	"context"
	"fmt"

	"github.com/hireboard-dev/hireboard/internal/models"
)

// ResumeSearch filters the resume search endpoint
type ResumeSearch struct {
	ListParams
	Keyword string
	Tags    []string
}

// ListResumes returns a page of resumes
func (c *Client) ListResumes(ctx context.Context, p ListParams) ([]models.Resume, error) {
	var resumes []models.Resume
	if err := c.Get(ctx, "/resumes", p.values(), &resumes); err != nil {
		return nil, err
	}
	return resumes, nil
}

// GetResume returns one resume
func (c *Client) GetResume(ctx context.Context, id uint) (*models.Resume, error) {
	var resume models.Resume
	if err := c.Get(ctx, fmt.Sprintf("/resumes/%d", id), nil, &resume); err != nil {
		return nil, err
	}
	return &resume, nil
}

// ResumeRequest is the body of resume create and update calls
type ResumeRequest struct {
	CandidateName  string `json:"candidate_name,omitempty" validate:"required"`
	FileURL        string `json:"file_url,omitempty"`
	FileType       string `json:"file_type,omitempty" validate:"omitempty,oneof=pdf docx doc jpg jpeg png"`
	ParsedContent  string `json:"parsed_content,omitempty"`
	TalentPortrait string `json:"talent_portrait,omitempty"`
}

// CreateResume registers a resume without uploading a document
func (c *Client) CreateResume(ctx context.Context, req ResumeRequest) (*models.Resume, error) {
	if err := c.check("POST", "/resumes", req); err != nil {
		return nil, err
	}

	var resume models.Resume
	if err := c.Post(ctx, "/resumes", req, &resume); err != nil {
		return nil, err
	}
	return &resume, nil
}

// UpdateResume changes the given fields of a resume
func (c *Client) UpdateResume(ctx context.Context, id uint, req ResumeRequest) (*models.Resume, error) {
	var resume models.Resume
	if err := c.Put(ctx, fmt.Sprintf("/resumes/%d", id), req, &resume); err != nil {
		return nil, err
	}
	return &resume, nil
}

// DeleteResume removes a resume
func (c *Client) DeleteResume(ctx context.Context, id uint) error {
	return c.Delete(ctx, fmt.Sprintf("/resumes/%d", id))
}

// UploadResume uploads one resume document
func (c *Client) UploadResume(ctx context.Context, path, candidateName string) (*models.Resume, error) {
	fields := map[string]string{"candidate_name": candidateName}

	var resume models.Resume
	if err := c.PostMultipart(ctx, "/resumes/upload", fields, []FileField{{FieldName: "file", Path: path}}, &resume); err != nil {
		return nil, err
	}
	return &resume, nil
}

// BatchUploadResumes uploads several resume documents in one request
func (c *Client) BatchUploadResumes(ctx context.Context, paths []string) ([]models.Resume, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to upload")
	}

	files := make([]FileField, len(paths))
	for i, p := range paths {
		files[i] = FileField{FieldName: "files", Path: p}
	}

	var resumes []models.Resume
	if err := c.PostMultipart(ctx, "/resumes/batch-upload", nil, files, &resumes); err != nil {
		return nil, err
	}
	return resumes, nil
}

// SearchResumes returns resumes matching a keyword and/or tags
func (c *Client) SearchResumes(ctx context.Context, s ResumeSearch) ([]models.Resume, error) {
	v := s.values()
	if s.Keyword != "" {
		v.Set("keyword", s.Keyword)
	}
	for _, tag := range s.Tags {
		v.Add("tags", tag)
	}

	var resumes []models.Resume
	if err := c.Get(ctx, "/resumes/search", v, &resumes); err != nil {
		return nil, err
	}
	return resumes, nil
}
