// ABOUTME: HTTP client for the identity and metadata service
// ABOUTME: Wraps token, metadata, and health calls with error classification

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds every request when no timeout is configured
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error body is kept for display
const maxErrorBody = 4096

// Client is the API client for the identity service
type Client struct {
	baseURL    string
	httpClient *http.Client
	group      singleflight.Group
}

// New creates a client for baseURL. A non-positive timeout uses DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the service address the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// RequestToken exchanges credentials for an access token. Non-2xx responses
// return *APIError; transport failures return *ConnectionError.
func (c *Client) RequestToken(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.handleErrorResponse(resp)
	}

	var result TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if result.AccessToken == "" {
		return nil, errors.New("token response did not include access_token")
	}
	return &result, nil
}

// Metadata fetches the metadata aggregate with a bearer token. Concurrent
// calls for the same token share one request.
func (c *Client) Metadata(ctx context.Context, token string) (*AppMetadata, error) {
	if token == "" {
		return nil, &MetadataFetchError{Kind: RequestSetup, Err: ErrMissingToken}
	}

	v, err, _ := c.group.Do("metadata:"+token, func() (interface{}, error) {
		return c.fetchMetadata(ctx, token)
	})
	if err != nil {
		return nil, err
	}
	return v.(*AppMetadata), nil
}

func (c *Client) fetchMetadata(ctx context.Context, token string) (*AppMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/metadata", nil)
	if err != nil {
		return nil, &MetadataFetchError{Kind: RequestSetup, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &MetadataFetchError{Kind: NoResponse, Err: c.handleRequestError(ctx, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &MetadataFetchError{
			Kind:       ServerError,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var result AppMetadata
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &MetadataFetchError{Kind: InvalidResponse, StatusCode: resp.StatusCode, Err: err}
	}
	return &result, nil
}

// Health calls the unauthenticated /health endpoint
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var result HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &result, nil
}

// handleRequestError converts transport errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &ConnectionError{URL: c.baseURL, Err: errors.New("request canceled")}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ConnectionError{URL: c.baseURL, Err: errors.New("request timed out")}
	}
	return &ConnectionError{URL: c.baseURL, Err: err}
}

// handleErrorResponse parses {detail} error bodies
func (c *Client) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return &APIError{StatusCode: resp.StatusCode, Detail: errResp.Detail}
}
