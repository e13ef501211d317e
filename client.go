package galaxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"galaxy-sdk/services"
)

// DefaultBaseURL is the public Galaxy test server
const DefaultBaseURL = "https://test.galaxyproject.org"

var apiKeyHeader = http.CanonicalHeaderKey("x-api-key")

// ClientOption is a function that configures a GalaxyClient
type ClientOption func(*GalaxyClient)

// GalaxyClient is the main client for interacting with the Galaxy API
// After creation, the client is immutable and safe for concurrent use
type GalaxyClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	// Custom headers to include in all requests
	headers map[string]string

	// Session configuration
	timeout     time.Duration
	retryConfig *RetryConfig

	// Service groups
	Histories *services.HistoryService
	Tools     *services.ToolService
	Datasets  *services.DatasetService
}

// RetryConfig configures retry behavior for failed requests.
// Retries are disabled unless MaxRetries is raised above zero.
type RetryConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// NewClient creates a new GalaxyClient with the given options
func NewClient(apiKey string, opts ...ClientOption) (*GalaxyClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &ValidationError{Field: "api_key", Message: "must not be empty"}
	}

	client := &GalaxyClient{
		baseURL: DefaultBaseURL,
		apiKey:  strings.TrimSpace(apiKey),
		headers: make(map[string]string),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: 30 * time.Second,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retryConfig: &RetryConfig{
			MaxRetries: 0,
			RetryDelay: time.Second,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	if _, err := url.Parse(client.baseURL); err != nil {
		return nil, &ValidationError{Field: "base_url", Message: err.Error()}
	}

	client.Histories = services.NewHistoryService(client)
	client.Tools = services.NewToolService(client)
	client.Datasets = services.NewDatasetService(client)

	return client, nil
}

// WithBaseURL sets a custom base URL for the client. A trailing slash is
// dropped so that paths can always be appended with a leading slash.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *GalaxyClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout bounds every API call except dataset downloads. Non-positive
// values are ignored.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *GalaxyClient) {
		if timeout <= 0 {
			return
		}
		c.timeout = timeout
		c.httpClient.Timeout = timeout
	}
}

// WithRetryConfig enables retries of 5xx responses and transport failures.
// A nil config turns retries off.
func WithRetryConfig(config *RetryConfig) ClientOption {
	return func(c *GalaxyClient) {
		if config == nil {
			config = &RetryConfig{}
		}
		c.retryConfig = config
	}
}

// WithHTTPClient replaces the underlying HTTP client, e.g. to add a proxy
// or custom TLS settings
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *GalaxyClient) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithHeader sends an extra header with every API call
func WithHeader(key, value string) ClientOption {
	return WithHeaders(map[string]string{key: value})
}

// WithHeaders sends extra headers with every API call. They cannot
// override the x-api-key header.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *GalaxyClient) {
		for k, v := range headers {
			k = http.CanonicalHeaderKey(k)
			if k == apiKeyHeader {
				continue
			}
			c.headers[k] = v
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *GalaxyClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// GetAPIKey returns the configured API key
func (c *GalaxyClient) GetAPIKey() string {
	return c.apiKey
}

// GetBaseURL returns the configured base URL
func (c *GalaxyClient) GetBaseURL() string {
	return c.baseURL
}

// Logger returns the client's logger
func (c *GalaxyClient) Logger() *slog.Logger {
	return c.logger
}

// NewRequest creates a new HTTP request with auth headers and custom headers
func (c *GalaxyClient) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	return req, nil
}

// Do executes an HTTP request, retrying 5xx responses and transport
// failures according to the retry configuration
func (c *GalaxyClient) Do(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	maxRetries := 0
	if c.retryConfig != nil {
		maxRetries = c.retryConfig.MaxRetries
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if req, err = rewind(req); err != nil {
				return nil, err
			}
		}

		start := time.Now()
		resp, err = c.httpClient.Do(req)
		c.logger.Debug("galaxy request",
			slog.String("method", req.Method),
			slog.String("url", SanitizeURL(req.URL)),
			slog.Int("attempt", attempt+1),
			slog.Duration("duration", time.Since(start)),
			slog.Int("status", statusOf(resp)))

		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if attempt < maxRetries {
			if resp != nil {
				resp.Body.Close()
			}
			time.Sleep(c.retryConfig.RetryDelay * time.Duration(attempt+1))
		}
	}

	if err != nil {
		return nil, newNetworkError(req, err)
	}
	return resp, nil
}

// Stream executes req once, without retries and without the client
// timeout, for downloads whose size is unknown. Only the request context
// bounds it.
func (c *GalaxyClient) Stream(req *http.Request) (*http.Response, error) {
	hc := *c.httpClient
	hc.Timeout = 0

	start := time.Now()
	resp, err := hc.Do(req)
	c.logger.Debug("galaxy stream",
		slog.String("method", req.Method),
		slog.String("url", SanitizeURL(req.URL)),
		slog.Duration("duration", time.Since(start)),
		slog.Int("status", statusOf(resp)))
	if err != nil {
		return nil, newNetworkError(req, err)
	}
	return resp, nil
}

// CheckResponse returns an *APIError when the response status is not one
// of the accepted codes. The body is consumed on error.
func (c *GalaxyClient) CheckResponse(resp *http.Response, accepted ...int) error {
	if len(accepted) == 0 {
		accepted = []int{http.StatusOK}
	}
	for _, code := range accepted {
		if resp.StatusCode == code {
			return nil
		}
	}

	bodyBytes, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var errResp struct {
		ErrMsg  string `json:"err_msg"`
		ErrCode int    `json:"err_code"`
	}
	if err := json.Unmarshal(bodyBytes, &errResp); err == nil && errResp.ErrMsg != "" {
		apiErr.Message = errResp.ErrMsg
		apiErr.Code = errResp.ErrCode
	} else {
		apiErr.Message = strings.TrimSpace(string(bodyBytes))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}

// newNetworkError wraps a transport failure, redacting the request URL
// that *url.Error embeds in its message
func newNetworkError(req *http.Request, err error) *NetworkError {
	safeURL := SanitizeURL(req.URL)
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		redacted := *urlErr
		redacted.URL = safeURL
		err = &redacted
	}
	return &NetworkError{Method: req.Method, URL: safeURL, Err: err}
}

func rewind(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("cannot retry %s %s: request body is not replayable", req.Method, req.URL.Path)
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
