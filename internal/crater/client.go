package crater

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/roach88/craterreport/internal/ir"
	"github.com/roach88/craterreport/internal/runconfig"
)

const (
	// DefaultBaseURL is the public report bucket.
	DefaultBaseURL = "https://crater-reports.s3.amazonaws.com"

	// DefaultUserAgent identifies the tool to the bucket and the registry.
	DefaultUserAgent = "craterreport/" + ir.Version

	// maxConfigSize bounds config.json; real configs are a few KB.
	maxConfigSize = 1 << 20
)

// StatusError reports a non-200 response for an artifact.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Options configures a Client.
type Options struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// UserAgent defaults to DefaultUserAgent.
	UserAgent string

	// HTTPClient defaults to a client without an overall timeout, since
	// archives can be large. Cancel through the context instead.
	HTTPClient *http.Client
}

// Client fetches experiment artifacts.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// New creates a Client.
func New(opts Options) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		http:      opts.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.http == nil {
		c.http = &http.Client{Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: 30 * time.Second,
		}}
	}
	return c
}

// ConfigURL returns the location of the experiment's config.json.
func (c *Client) ConfigURL(experiment string) string {
	return c.baseURL + "/" + url.PathEscape(experiment) + "/config.json"
}

// ArchiveURL returns the location of the experiment's regressed-logs archive.
func (c *Client) ArchiveURL(experiment string) string {
	return c.baseURL + "/" + url.PathEscape(experiment) + "/logs-archives/regressed.tar.gz"
}

// FetchConfig downloads and validates the experiment's run configuration.
func (c *Client) FetchConfig(ctx context.Context, experiment string) (*runconfig.Config, error) {
	u := c.ConfigURL(experiment)
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}
	if len(data) > maxConfigSize {
		return nil, fmt.Errorf("read %s: larger than %d bytes", u, maxConfigSize)
	}

	cfg, err := runconfig.Parse(u, data)
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", experiment, err)
	}
	return cfg, nil
}

// OpenArchive starts downloading the regressed-logs archive. The caller
// must close the returned body.
func (c *Client) OpenArchive(ctx context.Context, experiment string) (io.ReadCloser, error) {
	return c.get(ctx, c.ArchiveURL(experiment))
}

func (c *Client) get(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}
