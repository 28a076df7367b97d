// Package apiclient talks to the remote tournament API that owns scheduling,
// scoring, brackets and standings. Every endpoint the console uses has a
// typed method here; payloads are checked at this boundary.
package apiclient

import (
	"bytes"
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

	"github.com/Dosada05/tournament-console/metrics"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultRetries    = 2
	defaultBackoff    = 250 * time.Millisecond
	defaultRatePerSec = 20
	maxErrorBody      = 4 << 10
)

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Config controls how the client reaches the tournament API.
type Config struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Timeout    time.Duration
	// MaxRetries applies to GET requests only; mutations are sent once.
	MaxRetries int
	Backoff    time.Duration
	// RatePerSec caps outgoing requests; <= 0 uses the default.
	RatePerSec float64
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
}

type Client struct {
	baseURL    string
	token      string
	httpClient httpDoer
	maxRetries int
	backoff    time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
	metrics    *metrics.Recorder
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("tournament api base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid tournament api base url %q: %w", base, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = defaultRetries
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = defaultRatePerSec
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    base,
		token:      strings.TrimSpace(cfg.Token),
		httpClient: httpClient,
		maxRetries: retries,
		backoff:    backoff,
		limiter:    rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		logger:     logger,
		metrics:    cfg.Metrics,
	}, nil
}

// call describes one request. endpoint labels logs and metrics.
type call struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	body     any
}

// do sends c and decodes a 2xx JSON answer into out (when out is non-nil).
// GETs are retried on transport errors and 5xx answers.
func (cl *Client) do(ctx context.Context, c call, out any) error {
	attempts := 1
	if c.method == http.MethodGet {
		attempts += cl.maxRetries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = cl.once(ctx, c, out)
		if lastErr == nil || !retryable(lastErr) || attempt == attempts {
			break
		}
		cl.logger.WarnContext(ctx, "tournament api retry",
			slog.String("endpoint", c.endpoint),
			slog.Int("attempt", attempt),
			slog.Any("error", lastErr))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * cl.backoff):
		}
	}
	return lastErr
}

func (cl *Client) once(ctx context.Context, c call, out any) error {
	if err := cl.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTransport, c.endpoint, err)
	}

	req, err := cl.newRequest(ctx, c)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := cl.httpClient.Do(req)
	if err != nil {
		cl.metrics.ObserveUpstream(c.endpoint, 0, time.Since(start))
		return fmt.Errorf("%w: %s: %w", ErrTransport, c.endpoint, err)
	}
	defer resp.Body.Close()
	cl.metrics.ObserveUpstream(c.endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(c.endpoint, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, c.endpoint, err)
	}
	return nil
}

func (cl *Client) newRequest(ctx context.Context, c call) (*http.Request, error) {
	var body io.Reader
	if c.body != nil {
		buf, err := json.Marshal(c.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", c.endpoint, err)
		}
		body = bytes.NewReader(buf)
	}

	target := cl.baseURL + c.path
	if len(c.query) > 0 {
		target += "?" + c.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, c.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", c.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	return req, nil
}

func decodeError(endpoint string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{Status: resp.StatusCode, Endpoint: endpoint}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		apiErr.Message = payload.Error
		if apiErr.Message == "" {
			apiErr.Message = payload.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrTransport) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 500
}

func pathID(id fmt.Stringer) string {
	return url.PathEscape(id.String())
}
