package crawler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"review-crawler-go/pkg/models"
)

// SaveArtifact downloads the export for handle into dir under the
// server-provided filename. The file only appears under that name once it is
// fully written.
func (c *Client) SaveArtifact(ctx context.Context, handle models.JobHandle, format models.ExportFormat, dir string) (*Artifact, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	art, err := c.Download(ctx, handle, format, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to write file: %w", closeErr)
	}
	if err != nil {
		return nil, err
	}

	art.Path = filepath.Join(dir, art.Filename)
	if err := os.Rename(tmp.Name(), art.Path); err != nil {
		return nil, fmt.Errorf("failed to save artifact: %w", err)
	}
	return art, nil
}
