package leagueapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

const (
	defaultBaseURL    = "http://localhost:8000"
	requestIDHeader   = "X-Request-ID"
	maxResponseBytes  = 4 << 20
	previewBodyLength = 256
)

var bearerTokenRegex = regexp.MustCompile(`Bearer\s+[^\s"']+`)
var errLeagueAPITransient = crerr.New("league api transient failure")

// TokenSource supplies the bearer token for authenticated calls. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	AccessToken() string
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Tokens         TokenSource
	RequestIDs     id.Generator
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client is the single gateway to the prediction-league backend. Reads go
// through a retry loop behind a circuit breaker and a single-flight group;
// writes are sent exactly once so the backend's uniqueness constraints stay
// the source of truth.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	tokens         TokenSource
	requestIDs     id.Generator
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	requestIDs := cfg.RequestIDs
	if requestIDs == nil {
		requestIDs = id.NewRandomGenerator()
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		tokens:         cfg.Tokens,
		requestIDs:     requestIDs,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// doGET fetches path, decodes the payload into target, and collapses
// concurrent identical reads through the single-flight group.
func (c *Client) doGET(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "league api circuit breaker rejected request", "state", c.breaker.State(), "path", path)
			return fmt.Errorf("%w: prediction backend is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeGET(ctx, fullURL)
		c.recordBreakerOutcome(reqErr)
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if target == nil {
		return nil
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode backend payload: %w", err)
	}
	return nil
}

// doSend issues a mutating request exactly once. No retries: a duplicate
// POST after a timed-out first attempt could create the very double write
// the client exists to prevent.
func (c *Client) doSend(ctx context.Context, method, path string, payload any, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "league api circuit breaker rejected request", "state", c.breaker.State(), "path", path)
			return fmt.Errorf("%w: prediction backend is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	var body []byte
	if payload != nil {
		encoded, err := sonic.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request payload: %w", err)
		}
		body = encoded
	}

	raw, err := c.executeOnce(ctx, method, c.baseURL+path, body, "application/json")
	c.recordBreakerOutcome(err)
	if err != nil {
		return err
	}

	if target == nil || len(raw) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode backend payload: %w", err)
	}
	return nil
}

func (c *Client) executeGET(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, err := c.executeOnce(ctx, http.MethodGet, fullURL, nil, "")
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !crerr.Is(err, errLeagueAPITransient) {
			return nil, err
		}
		if attempt == c.maxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * 500 * time.Millisecond
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("backend request failed")
	}
	c.logger.WarnContext(ctx, "league api request failed", "url", fullURL, "error", sanitizeSensitiveText(lastErr.Error()))
	return nil, lastErr
}

func (c *Client) executeOnce(ctx context.Context, method, fullURL string, body []byte, contentType string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" && body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	c.decorateRequest(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %s", errLeagueAPITransient, sanitizeSensitiveText(err.Error()))
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errLeagueAPITransient, readErr)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	if isRetryableStatus(resp.StatusCode) {
		return nil, fmt.Errorf("%w: %w", errLeagueAPITransient, mapStatusError(resp.StatusCode, raw))
	}
	return nil, mapStatusError(resp.StatusCode, raw)
}

// executeMultipart sends a prebuilt multipart body exactly once. Used by the
// profile update flow, which streams the form out of a pooled buffer.
func (c *Client) executeMultipart(ctx context.Context, method, path string, body []byte, contentType string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			return fmt.Errorf("%w: prediction backend is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	raw, err := c.executeOnce(ctx, method, c.baseURL+path, body, contentType)
	c.recordBreakerOutcome(err)
	if err != nil {
		return err
	}
	if target == nil || len(raw) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode backend payload: %w", err)
	}
	return nil
}

func (c *Client) decorateRequest(ctx context.Context, req *http.Request) {
	if c.tokens != nil {
		if token := strings.TrimSpace(c.tokens.AccessToken()); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	requestID, err := c.requestIDs.NewID()
	if err != nil {
		c.logger.WarnContext(ctx, "generate request id failed", "error", err)
		return
	}
	req.Header.Set(requestIDHeader, requestID)
}

func (c *Client) recordBreakerOutcome(err error) {
	if !c.circuitEnabled {
		return
	}
	if err != nil && isCircuitFailure(err) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	// Rejections by the backend itself (validation, auth, conflicts) are a
	// healthy dependency saying no; only transport-level and 5xx failures
	// count against the breaker.
	return crerr.Is(err, errLeagueAPITransient) || crerr.Is(err, usecase.ErrDependencyUnavailable)
}

func isRetryableStatus(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500
}

func sanitizeSensitiveText(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	return bearerTokenRegex.ReplaceAllString(value, "Bearer REDACTED")
}

func abbreviateBody(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) <= previewBodyLength {
		return text
	}
	return text[:previewBodyLength] + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
