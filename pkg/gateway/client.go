// Package gateway is the HTTP client loading and saving whole process-group
// documents on the workflow backend.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukex/operion-console/pkg/models"
	"github.com/dukex/operion-console/pkg/otelhelper"
	"github.com/moogar0880/problems"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

// Client talks to /process-groups on the backend. It is safe for concurrent
// use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	tracer     trace.Tracer
	logger     *slog.Logger
}

type Option func(*Client)

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit caps outgoing requests at rps with the given burst. A
// non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil

			return
		}

		if burst < 1 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tracer: otelhelper.NoopTracer(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// PathIdentifier encodes a nested group id for use as one path segment.
func PathIdentifier(id string) string {
	return strings.ReplaceAll(id, "/", ":")
}

// Get fetches the full document of group id.
func (c *Client) Get(ctx context.Context, id string) (*models.ProcessGroup, error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "gateway.get", otelhelper.ProcessGroupAttrs(id, "")...)
	defer span.End()

	group, err := c.do(ctx, http.MethodGet, "/process-groups/"+PathIdentifier(id), nil)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return group, nil
}

// Put replaces group id wholesale and returns the backend's stored version.
func (c *Client) Put(ctx context.Context, id string, group *models.ProcessGroup) (*models.ProcessGroup, error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "gateway.put", otelhelper.ProcessGroupAttrs(id, "")...)
	defer span.End()

	span.SetAttributes(attribute.Int("operion.process_group.messages", len(group.Messages)))

	saved, err := c.do(ctx, http.MethodPut, "/process-groups/"+PathIdentifier(id), group)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return saved, nil
}

// Create posts a new group.
func (c *Client) Create(ctx context.Context, group *models.ProcessGroup) (*models.ProcessGroup, error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "gateway.create", otelhelper.ProcessGroupAttrs(group.ID, "")...)
	defer span.End()

	created, err := c.do(ctx, http.MethodPost, "/process-groups", group)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return created, nil
}

func (c *Client) do(ctx context.Context, method, path string, body *models.ProcessGroup) (*models.ProcessGroup, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode process group: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %s %s: %w", method, path, err)
	}

	c.logger.DebugContext(ctx, "backend call", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, data)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyResponse
	}

	var group models.ProcessGroup

	err = json.Unmarshal(data, &group)
	if err != nil {
		return nil, fmt.Errorf("failed to decode process group: %w", err)
	}

	return &group, nil
}

// decodeError builds an *Error from a problem document, falling back to the
// raw body as detail when the backend did not send one.
func decodeError(status int, data []byte) error {
	gwErr := &Error{StatusCode: status, Type: http.StatusText(status)}

	var problem problems.Problem
	if json.Unmarshal(data, &problem) == nil && (problem.Type != "" || problem.Detail != "") {
		if problem.Type != "" {
			gwErr.Type = problem.Type
		}

		gwErr.Title = problem.Title
		gwErr.Detail = problem.Detail
		gwErr.Instance = problem.Instance

		return gwErr
	}

	gwErr.Detail = strings.TrimSpace(string(data))

	return gwErr
}
