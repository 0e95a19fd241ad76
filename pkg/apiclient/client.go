// Package apiclient is a typed client for the tenant backend REST API.
//
// Every method takes the caller's context and, for authenticated endpoints,
// the bearer token explicitly. The client holds no per-user state.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/tendant/simple-admin-console/pkg/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RequestIDHeader is set on every outgoing request.
const RequestIDHeader = "X-Request-ID"

// APIPrefix is prepended to every backend path.
const APIPrefix = "/api/v1"

// ErrUnavailable is returned when the backend could not be reached.
var ErrUnavailable = errors.New("backend unavailable")

// ErrNotFound is matched by 404 responses.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %d", e.Method, e.Path, e.StatusCode)
}

// Is maps status codes onto the domain sentinels.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return target == domain.ErrUnauthorized
	case http.StatusForbidden:
		return target == domain.ErrForbidden
	case http.StatusNotFound:
		return target == ErrNotFound
	}
	return false
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	// Transport defaults to an OpenTelemetry-instrumented http.DefaultTransport.
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Client talks to the backend.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// New creates a Client.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	transport := opts.Transport
	if transport == nil {
		transport = otelhttp.NewTransport(http.DefaultTransport)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")+APIPrefix).
		SetTransport(transport).
		SetTimeout(timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Accept", "application/json")

	// Only idempotent reads are retried, and only on transport errors.
	client.AddRetryCondition(func(resp *resty.Response, err error) bool {
		return err != nil && resp != nil && resp.Request != nil && resp.Request.Method == http.MethodGet
	})

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if req.Header.Get(RequestIDHeader) == "" {
			req.SetHeader(RequestIDHeader, uuid.NewString())
		}
		return nil
	})

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("backend call",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"duration", resp.Time(),
			"request_id", resp.Request.Header.Get(RequestIDHeader),
		)
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		logger.Warn("backend call failed",
			"method", req.Method,
			"url", req.URL,
			"request_id", req.Header.Get(RequestIDHeader),
			"error", err,
		)
	})

	return &Client{http: client, logger: logger}
}

// envelope is the backend's response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Roles   []domain.Role   `json:"roles"`
	Data    json.RawMessage `json:"data"`
}

func (e *envelope) success() bool {
	return e.Status == "success"
}

// payload is the union of the entity keys found under "data".
type payload struct {
	User    *domain.User    `json:"user"`
	Users   []domain.User   `json:"users"`
	Tenant  *domain.Tenant  `json:"tenant"`
	Tenants []domain.Tenant `json:"tenants"`
	Post    *domain.Post    `json:"post"`
	Posts   []domain.Post   `json:"posts"`
	Config  *domain.Config  `json:"config"`
	Configs []domain.Config `json:"configs"`
}

func (e *envelope) payload() (*payload, error) {
	p := &payload{}
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return p, nil
	}
	if err := json.Unmarshal(e.Data, p); err != nil {
		return nil, fmt.Errorf("decode response data: %w", err)
	}
	return p, nil
}

// call builds and executes one request. prepare may set a body, multipart
// fields or query parameters.
func (c *Client) call(ctx context.Context, method, path, token string, prepare func(*resty.Request)) (*envelope, error) {
	env := &envelope{}
	req := c.http.R().
		SetContext(ctx).
		SetResult(env).
		SetError(env)
	if token != "" {
		req.SetAuthToken(token)
	}
	if prepare != nil {
		prepare(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}

	if resp.IsError() {
		return nil, &APIError{
			StatusCode: resp.StatusCode(),
			Message:    env.Message,
			Method:     method,
			Path:       path,
		}
	}

	return env, nil
}

// callJSON is call with an optional JSON body.
func (c *Client) callJSON(ctx context.Context, method, path, token string, body any) (*envelope, error) {
	return c.call(ctx, method, path, token, func(req *resty.Request) {
		if body != nil {
			req.SetHeader("Content-Type", "application/json").SetBody(body)
		}
	})
}
