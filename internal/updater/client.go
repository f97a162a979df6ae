package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const defaultUserAgent = "toolupdater/1.0"

// lookupToken is swapped in tests.
var lookupToken = func() string { return os.Getenv("GITHUB_TOKEN") }

// Client performs the plain GET requests the pipeline needs. Redirects are
// followed by the underlying http.Client and failures are never retried.
type Client struct {
	HTTP      *http.Client
	UserAgent string
}

// NewClient returns a client using http.DefaultClient.
func NewClient(userAgent string) *Client {
	return &Client{HTTP: http.DefaultClient, UserAgent: userAgent}
}

func (c *Client) do(ctx context.Context, rawURL string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request for %s: %w", ErrTransport, rawURL, err)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrTransport, rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: get %s: unexpected status %s", ErrTransport, rawURL, resp.Status)
	}
	return resp, nil
}

// GetText fetches rawURL and returns the body as a string.
func (c *Client) GetText(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.do(ctx, rawURL, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrTransport, rawURL, err)
	}
	return string(body), nil
}

// GetJSON fetches a release API document into v. A GITHUB_TOKEN from the
// environment is sent as a bearer token.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	header := http.Header{}
	header.Set("Accept", "application/vnd.github+json")
	if token := strings.TrimSpace(lookupToken()); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.do(ctx, rawURL, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrTransport, rawURL, err)
	}
	return nil
}

// Download streams rawURL into dest through a temp file in the same directory
// and returns the number of bytes written.
func (c *Client) Download(ctx context.Context, rawURL, dest string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("prepare download destination: %w", err)
	}

	resp, err := c.do(ctx, rawURL, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	tmpFile, err := os.CreateTemp(filepath.Dir(dest), "download-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	n, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		tmpFile.Close()
		return 0, fmt.Errorf("%w: download %s: %w", ErrTransport, rawURL, err)
	}
	if err := tmpFile.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return 0, fmt.Errorf("finalize download: %w", err)
	}
	return n, nil
}
