// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads the model archive over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pdiddy/webmodel/pkg/types"
)

// Client fetches archives with a configured timeout, User-Agent, and
// optional bearer token.
type Client struct {
	http      *http.Client
	userAgent string
	authToken string
}

// New builds a Client from the shared HTTP settings.
func New(cfg types.HTTPConfig) *Client {
	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		authToken: cfg.AuthToken,
	}
}

// Fetch downloads url to destPath. The body is written to a temporary file
// in the destination directory and renamed into place on success, so a
// failed download never leaves a partial file under the final name. The
// destination directory must already exist. HTTP 429 responses are retried
// with backoff; any other non-200 status is an error.
func (c *Client) Fetch(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := doWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
