// Package api is the typed HTTP client for the marketplace chat backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/logging"
)

// Error is a failed API call. Code carries the backend's machine-readable
// error code when the response body had one.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error (%d %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// Temporary reports whether retrying the same call later could succeed.
func (e *Error) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// IsNotFound reports whether err is an API error with status 404.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// IsStatus reports whether err is an API error with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}

// Config configures a Client.
type Config struct {
	BaseURL       string
	Token         string // bearer token; empty disables auth
	Timeout       time.Duration
	RetryMax      int
	BeaconTimeout time.Duration
	Log           *logging.Logger
}

// Client talks to the chat endpoints under /api/chat. Idempotent reads ride
// a retrying transport; mutations go out exactly once, tagged with a request
// id the backend can deduplicate on.
type Client struct {
	baseURL       string
	read          *http.Client
	write         *http.Client
	beaconTimeout time.Duration
	log           *logging.Logger
}

// New creates a Client from config.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BeaconTimeout <= 0 {
		cfg.BeaconTimeout = 2 * time.Second
	}
	if cfg.Log == nil {
		cfg.Log = logging.New(nil, "silent")
	}

	write := &http.Client{Timeout: cfg.Timeout}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
		write = oauth2.NewClient(context.Background(), ts)
		write.Timeout = cfg.Timeout
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = write
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		read:          rc.StandardClient(),
		write:         write,
		beaconTimeout: cfg.BeaconTimeout,
		log:           cfg.Log.Sub("api"),
	}, nil
}

// do performs one API call. body is marshalled to JSON when non-nil; the
// response body is decoded into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := c.write
	if method == http.MethodGet {
		client = c.read
	} else {
		// Request id lets the backend deduplicate a resent mutation.
		req.Header.Set("X-Request-ID", uuid.New().String())
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", strings.ToLower(method), path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// decodeError builds an *Error from a non-2xx response. Bodies that are not
// the backend's JSON error shape degrade to the raw text.
func decodeError(status int, body []byte) *Error {
	apiErr := &Error{StatusCode: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Code = ""
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	return apiErr
}
