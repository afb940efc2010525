package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hireboard-dev/hireboard/internal/cli/apierror"
)

// FileField is one file part of a multipart upload
type FileField struct {
	FieldName string
	Path      string
}

// PostMultipart uploads files and plain fields as multipart/form-data and
// decodes the JSON response into out. Files are read before anything is sent,
// so a missing file is a construction failure.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files []FileField, out any) error {
	body, contentType, err := buildMultipart(fields, files)
	if err != nil {
		return c.fail(&http.Request{Method: http.MethodPost, URL: c.baseURL.JoinPath(path)}, apierror.Construction(err))
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body, contentType)
	if err != nil {
		return err
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

func buildMultipart(fields map[string]string, files []FileField) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		if err := addFile(w, f); err != nil {
			return nil, "", err
		}
	}

	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

func addFile(w *multipart.Writer, f FileField) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Path, err)
	}
	defer file.Close()

	part, err := w.CreateFormFile(f.FieldName, filepath.Base(f.Path))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	return nil
}
