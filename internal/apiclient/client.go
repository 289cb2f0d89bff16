package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leave-portal/internal/shared/apperror"
	"leave-portal/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource yields the bearer token for outgoing calls. An empty token
// means the request is sent without an Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Client talks JSON to the leave-management REST API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	logger         *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthorizedHandler registers the hook run when the API answers 401.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.Named("apiclient")
		}
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: zap.L().Named("apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, path string, out any, fallback string) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, fallback)
}

func (c *Client) Post(ctx context.Context, path string, body, out any, fallback string) error {
	return c.Do(ctx, http.MethodPost, path, body, out, fallback)
}

func (c *Client) Put(ctx context.Context, path string, body, out any, fallback string) error {
	return c.Do(ctx, http.MethodPut, path, body, out, fallback)
}

func (c *Client) Delete(ctx context.Context, path string, out any, fallback string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out, fallback)
}

// Do sends one request and decodes the response into out. It never retries.
// Failures come back as *apperror.AppError; fallback is the message used when
// the server does not provide one.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, fallback string) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rid := contextutil.GetRequestID(ctx)
	if rid == "" {
		rid = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", rid)

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return apperror.Wrap(err, apperror.CodeUnauthorized, apperror.ErrUnauthorized.Message, http.StatusUnauthorized)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := contextutil.GetLogger(ctx, c.logger)
	log.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", rid),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("api request failed", zap.String("path", path), zap.Error(err))
		return apperror.Wrap(err, apperror.CodeServiceUnavailable, fallback, http.StatusServiceUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeServiceUnavailable, fallback, http.StatusServiceUnavailable)
	}

	log.Debug("api response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := mapStatusError(resp.StatusCode, raw, fallback)
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		log.Warn("api request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if err := decodeBody(raw, out); err != nil {
		return apperror.Wrap(err, apperror.CodeServerError, fallback, http.StatusBadGateway)
	}
	return nil
}
