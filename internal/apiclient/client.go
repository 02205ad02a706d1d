// Package apiclient talks to the InnoFeed backend API.
// One method per endpoint; no retries, batching, or caching.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/innofeed/innofeed/internal/metrics"
	"github.com/innofeed/innofeed/internal/middleware"
	"github.com/innofeed/innofeed/internal/model"
)

const (
	// DialTimeout is the connection timeout.
	DialTimeout = 5 * time.Second
	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 16 << 20
)

// NewHTTPClient creates an HTTP client configured for backend calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Client calls the backend API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// New creates a Client for baseURL. A nil httpClient gets NewHTTPClient defaults.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger, recorder metrics.Recorder) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(15 * time.Second)
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		logger:  logger.With("component", "apiclient"),
		metrics: recorder,
	}
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Message string  `json:"message"`
	UserID  *int64  `json:"user_id"`
	Name    *string `json:"name"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the body of a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  *int64 `json:"user_id"`
}

// PreferencesRequest is the body of POST /set-preferences/{userId}.
type PreferencesRequest struct {
	DomainIDs []int64 `json:"domain_ids"`
}

// FeedResponse is the body of GET /feed/{userId}.
type FeedResponse struct {
	UserID  int64            `json:"user_id"`
	Feed    []model.FeedItem `json:"feed"`
	Message string           `json:"message,omitempty"`
}

// Login posts credentials and returns the identity to keep for the session.
// The display name falls back to the local part of the submitted email.
func (c *Client) Login(ctx context.Context, req LoginRequest) (model.Identity, error) {
	var resp LoginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/login", req, &resp); err != nil {
		return model.Identity{}, err
	}
	if resp.UserID == nil {
		return model.Identity{}, &TransportError{Op: "login", Err: ErrMissingUserID}
	}

	name := model.EmailLocalPart(req.Email)
	if resp.Name != nil && *resp.Name != "" {
		name = *resp.Name
	}

	return model.Identity{UserID: *resp.UserID, Name: name}, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.do(ctx, "register", http.MethodPost, "/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Domains fetches the full domain catalog.
func (c *Client) Domains(ctx context.Context) ([]model.Domain, error) {
	var domains []model.Domain
	if err := c.do(ctx, "domains", http.MethodGet, "/domains", nil, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

// Feed fetches the personalized feed for userID, in server order.
func (c *Client) Feed(ctx context.Context, userID int64) ([]model.FeedItem, error) {
	var resp FeedResponse
	if err := c.do(ctx, "feed", http.MethodGet, "/feed/"+strconv.FormatInt(userID, 10), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Feed == nil {
		resp.Feed = []model.FeedItem{}
	}
	return resp.Feed, nil
}

// SetPreferences replaces the stored domain selection of userID.
func (c *Client) SetPreferences(ctx context.Context, userID int64, domainIDs []int64) error {
	if domainIDs == nil {
		domainIDs = []int64{}
	}
	path := "/set-preferences/" + strconv.FormatInt(userID, 10)
	return c.do(ctx, "set_preferences", http.MethodPost, path, PreferencesRequest{DomainIDs: domainIDs}, nil)
}

// do performs one JSON round trip. out may be nil when the body is not needed.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if requestID := middleware.GetRequestID(ctx); requestID != "" {
		req.Header.Set(middleware.RequestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveBackendDuration(time.Since(start))
	if err != nil {
		c.logger.WarnContext(ctx, "backend request failed", "op", op, "error", err)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Op: op, StatusCode: resp.StatusCode, Detail: parseDetail(data)}
		c.logger.WarnContext(ctx, "backend returned error status",
			"op", op,
			"status_code", resp.StatusCode,
			"detail", statusErr.Detail,
		)
		return statusErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
