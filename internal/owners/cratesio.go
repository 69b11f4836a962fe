package owners

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRegistryURL is the crates.io API host.
	DefaultRegistryURL = "https://crates.io"

	// DefaultRequestsPerSecond follows the crates.io crawler policy.
	DefaultRequestsPerSecond = 1.0

	githubPrefix = "https://github.com/"
)

// StatusError reports a non-200 response from the registry.
type StatusError struct {
	Name       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("owners of %s: registry returned HTTP %d", e.Name, e.StatusCode)
}

// CratesIOConfig configures a CratesIO client.
type CratesIOConfig struct {
	// BaseURL defaults to DefaultRegistryURL.
	BaseURL string

	// UserAgent is required by the registry's API policy.
	UserAgent string

	// RequestsPerSecond defaults to DefaultRequestsPerSecond.
	// A negative value disables rate limiting.
	RequestsPerSecond float64

	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client
}

// CratesIO looks up crate owners through the registry's owners endpoint.
// Only individual users with a GitHub profile are returned: teams and
// other account kinds cannot be mentioned.
type CratesIO struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

// NewCratesIO creates a client from cfg.
func NewCratesIO(cfg CratesIOConfig) *CratesIO {
	c := &CratesIO{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    cfg.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultRegistryURL
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: 30 * time.Second}
	}

	rps := cfg.RequestsPerSecond
	if rps == 0 {
		rps = DefaultRequestsPerSecond
	}
	if rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return c
}

type ownersResponse struct {
	Users []registryUser `json:"users"`
}

type registryUser struct {
	Kind  string `json:"kind"`
	Login string `json:"login"`
	URL   string `json:"url"`
}

// githubLogin returns the user's GitHub handle, or "" if it has none.
func (u registryUser) githubLogin() string {
	if u.Kind == "user" && strings.HasPrefix(u.URL, githubPrefix) {
		return u.Login
	}
	return ""
}

// Owners implements Lookup.
func (c *CratesIO) Owners(ctx context.Context, name string) ([]string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("owners of %s: %w", name, err)
		}
	}

	endpoint := c.baseURL + "/api/v1/crates/" + url.PathEscape(name) + "/owners"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("owners of %s: %w", name, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("owners of %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("owners of %s: %w", name, ErrUnknownCrate)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Name: name, StatusCode: resp.StatusCode}
	}

	var body ownersResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("owners of %s: decode response: %w", name, err)
	}

	handles := []string{}
	for _, u := range body.Users {
		if login := u.githubLogin(); login != "" {
			handles = append(handles, login)
		}
	}
	return handles, nil
}
