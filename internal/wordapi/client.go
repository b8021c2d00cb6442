package wordapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vytor/worddee/internal/errors"
	"github.com/vytor/worddee/internal/logger"
	"github.com/vytor/worddee/internal/metrics"
	"github.com/vytor/worddee/internal/models"
)

// Operation names used in logs and metrics.
const (
	OpFetchWord        = "fetch_word"
	OpValidateSentence = "validate_sentence"
	OpFetchSummary     = "fetch_summary"
	OpFetchHistory     = "fetch_history"
	OpPing             = "ping"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the Worddee backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRateLimit caps outbound requests to perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithMetrics records every call in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New builds a client for baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchWord loads today's word.
func (c *Client) FetchWord(ctx context.Context) (models.Word, error) {
	var w models.Word
	err := c.do(ctx, OpFetchWord, http.MethodGet, "/api/word", nil, nil, &w)
	return w, err
}

// ValidateSentence submits a sentence for scoring.
func (c *Client) ValidateSentence(ctx context.Context, req models.ValidateRequest) (models.ValidationResult, error) {
	var res models.ValidationResult
	err := c.do(ctx, OpValidateSentence, http.MethodPost, "/api/validate-sentence", nil, req, &res)
	return res, err
}

// FetchSummary loads aggregate statistics. clientDate is sent as YYYY-MM-DD
// so the backend computes the streak against the user's calendar day.
func (c *Client) FetchSummary(ctx context.Context, clientDate string) (models.Summary, error) {
	var s models.Summary
	q := url.Values{}
	if clientDate != "" {
		q.Set("client_date", clientDate)
	}
	err := c.do(ctx, OpFetchSummary, http.MethodGet, "/api/summary", q, nil, &s)
	return s, err
}

// FetchHistory loads past attempts. Order is whatever the backend sends.
func (c *Client) FetchHistory(ctx context.Context) ([]models.HistoryItem, error) {
	var items []models.HistoryItem
	if err := c.do(ctx, OpFetchHistory, http.MethodGet, "/api/history", nil, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.HistoryItem{}
	}
	return items, nil
}

// Ping checks that the backend root answers with a 2xx.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, OpPing, http.MethodGet, "/", nil, nil, nil)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) (err error) {
	log := logger.FromContext(ctx).WithPrefix("wordapi").WithField("op", op)
	start := time.Now()
	defer func() {
		c.metrics.ObserveUpstream(op, err, time.Since(start))
		if err != nil {
			err = errors.NewUpstreamError(op, err)
		}
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		log.Warn("rate limiter wait aborted: %v", err)
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.endpoint(path, query)
	log.Debug("%s %s", method, target)

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Warn("non-success status=%d, body=%s", resp.StatusCode, string(raw))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response: %v", err)
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
