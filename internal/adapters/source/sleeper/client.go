// Package sleeper reads league and player data from the Sleeper v1 API.
package sleeper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

const (
	defaultBaseURL          = "https://api.sleeper.app/v1"
	defaultTimeout          = 60 * time.Second
	defaultMaxRetries       = 2
	defaultBackoff          = 500 * time.Millisecond
	defaultRPS              = 10
	defaultBurst            = 5
	defaultBreakerThreshold = 5
	defaultBreakerTimeout   = 30 * time.Second

	maxBodyBytes = 64 << 20 // the full player catalog is large
	breakerName  = "sleeper"
)

// api decodes loosely-typed payloads, keeping numbers as json.Number.
var api = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Client is a rate-limited, retrying, circuit-broken Sleeper client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	leagueID   string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration

	rps              float64
	burst            int
	breakerThreshold uint32
	breakerTimeout   time.Duration

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  logger.Logger
}

// NewClient builds a client with configuration options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:          defaultBaseURL,
		timeout:          defaultTimeout,
		maxRetries:       defaultMaxRetries,
		backoff:          defaultBackoff,
		rps:              defaultRPS,
		burst:            defaultBurst,
		breakerThreshold: defaultBreakerThreshold,
		breakerTimeout:   defaultBreakerTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("sleeper")
	}
	c.limiter = rate.NewLimiter(rate.Limit(c.rps), c.burst)

	threshold := c.breakerThreshold
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     c.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A 404 is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, errTransient)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(name, int(to))
			c.logger.Warn(context.Background(), "circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	metrics.UpdateBreakerState(breakerName, int(gobreaker.StateClosed))
	return c
}

// LeagueID returns the configured league.
func (c *Client) LeagueID() string {
	return c.leagueID
}

// BreakerState reports the breaker state name.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// getJSON fetches path and decodes the body into target. endpoint labels metrics.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, target any) error {
	full := c.baseURL + path
	if enc := query.Encode(); enc != "" {
		full += "?" + enc
	}

	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.execute(ctx, full)
	})
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		outcome := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "breaker_open"
		}
		metrics.RecordSourceRequest(endpoint, outcome, latency)
		return fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, endpoint, err)
	}

	raw, _ := out.([]byte)
	if err := api.Unmarshal(raw, target); err != nil {
		metrics.RecordSourceRequest(endpoint, "decode_error", latency)
		return fmt.Errorf("%w: decode %s: %v", ErrSourceUnavailable, endpoint, err)
	}
	metrics.RecordSourceRequest(endpoint, "ok", latency)
	return nil
}

func (c *Client) execute(ctx context.Context, full string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read body: %v", errTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: status=%d body=%s", errTransient, resp.StatusCode, abbreviate(raw))
			default:
				return nil, fmt.Errorf("status=%d body=%s", resp.StatusCode, abbreviate(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	c.logger.Warn(ctx, "provider request failed", logger.String("url", full), logger.Error(lastErr))
	return nil, lastErr
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviate(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
