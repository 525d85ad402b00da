// Package backend talks to the remote thread analysis service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/threadlens/pkg/observability"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

// Endpoint paths.
const (
	EndpointFast = "/receive_url_fast"
	EndpointBias = "/add_bias_analysis"
	EndpointFull = "/receive_url"
)

const (
	statusSuccess = "success"

	defaultTimeout  = 5 * time.Minute
	defaultMaxBytes = 64 << 20
)

// Default failure messages used when the envelope carries none.
const (
	msgSentimentFailed = "Failed to fetch sentiment data"
	msgBiasFailed      = "Failed to fetch bias data"
	msgFullFailed      = "Failed to fetch data"
)

// Config configures a Client. Zero values take defaults.
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	MaxResponseBytes int64

	HTTPClient *http.Client
	Tracer     trace.Tracer
	Metrics    *observability.REDMetrics
	Logger     *slog.Logger
}

// Client calls the analysis backend.
type Client struct {
	baseURL  string
	http     *http.Client
	maxBytes int64
	tracer   trace.Tracer
	red      *observability.REDMetrics
	logger   *slog.Logger
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}

		httpClient = &http.Client{Timeout: timeout}
	}

	maxBytes := cfg.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("threadlens")
	}

	red := cfg.Metrics
	if red == nil {
		red = observability.NoopREDMetrics()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     httpClient,
		maxBytes: maxBytes,
		tracer:   tracer,
		red:      red,
		logger:   observability.Component(logger, "backend"),
	}
}

// FetchSentiment runs the fast sentiment-only pass for a thread URL.
func (c *Client) FetchSentiment(ctx context.Context, threadURL string) ([]thread.Comment, error) {
	return c.call(ctx, EndpointFast, urlRequest{URL: threadURL}, msgSentimentFailed)
}

// AddBiasAnalysis submits comments for bias scoring and returns the
// enriched subset the backend sends back.
func (c *Client) AddBiasAnalysis(ctx context.Context, comments []thread.Comment) ([]thread.Comment, error) {
	if comments == nil {
		comments = []thread.Comment{}
	}

	return c.call(ctx, EndpointBias, commentsRequest{Comments: comments}, msgBiasFailed)
}

// FetchFull runs the legacy single-shot pipeline.
func (c *Client) FetchFull(ctx context.Context, threadURL string) ([]thread.Comment, error) {
	return c.call(ctx, EndpointFull, urlRequest{URL: threadURL}, msgFullFailed)
}

type urlRequest struct {
	URL string `json:"url"`
}

type commentsRequest struct {
	Comments []thread.Comment `json:"comments"`
}

type envelope struct {
	Status  string           `json:"status"`
	Data    []thread.Comment `json:"data"`
	Message string           `json:"message"`
}

func (c *Client) call(ctx context.Context, endpoint string, payload any, failMsg string) ([]thread.Comment, error) {
	ctx, span := c.tracer.Start(ctx, "backend"+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("backend.endpoint", endpoint)),
	)
	defer span.End()

	var comments []thread.Comment

	err := c.red.Observe(ctx, "backend"+endpoint, func(ctx context.Context) error {
		var callErr error

		comments, callErr = c.post(ctx, endpoint, payload, failMsg)

		return callErr
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.WarnContext(ctx, "backend call failed", "endpoint", endpoint, "error", err)

		return nil, err
	}

	span.SetAttributes(attribute.Int("backend.comments", len(comments)))
	c.logger.DebugContext(ctx, "backend call done", "endpoint", endpoint, "comments", len(comments))

	return comments, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, failMsg string) ([]thread.Comment, error) {
	fail := func(status int, msg string, err error) error {
		return &FetchError{Endpoint: endpoint, StatusCode: status, Message: msg, Err: err}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fail(0, "", fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fail(0, "", fmt.Errorf("build request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBytes))

		return nil, fail(resp.StatusCode, "", ErrHTTPStatus)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fail(resp.StatusCode, "", fmt.Errorf("read body: %w", err))
	}

	if int64(len(raw)) > c.maxBytes {
		return nil, fail(resp.StatusCode, "", ErrResponseTooLarge)
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, fail(resp.StatusCode, "", err)
	}

	if env.Status != statusSuccess {
		msg := env.Message
		if msg == "" {
			msg = failMsg
		}

		return nil, fail(resp.StatusCode, msg, ErrBackendStatus)
	}

	if env.Data == nil {
		return []thread.Comment{}, nil
	}

	return env.Data, nil
}

func decodeEnvelope(raw []byte) (envelope, error) {
	if !json.Valid(raw) {
		return envelope{}, fmt.Errorf("%w: body is not JSON", ErrMalformedResponse)
	}

	if err := validateEnvelope(raw); err != nil {
		return envelope{}, err
	}

	var env envelope

	if err := json.Unmarshal(raw, &env); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return envelope{}, fmt.Errorf("%w: field %s: %w", ErrMalformedResponse, typeErr.Field, err)
		}

		return envelope{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return env, nil
}
