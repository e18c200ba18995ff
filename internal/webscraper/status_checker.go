package webscraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Describe returns the reason phrase of code. The second result is false for
// codes outside the standard registry, which get UnknownStatusDescription.
func Describe(code int) (StatusOutcome, bool) {
	text := http.StatusText(code)
	if text == "" {
		return StatusOutcome{StatusCode: code, Description: UnknownStatusDescription}, false
	}
	return StatusOutcome{StatusCode: code, Description: text}, true
}

// IsHealthy reports whether a link is live: its final URL answered 200 and the
// URL text carries no "404" marker (soft-404 pages often redirect to one).
func IsHealthy(code int, finalURL string) bool {
	return code == http.StatusOK && !strings.Contains(finalURL, notFoundMarker)
}

// StatusCheckerOptions configures an HTTPStatusChecker.
type StatusCheckerOptions struct {
	Timeout       time.Duration
	RetryAttempts int           // extra attempts after a failed connection
	RetryBackoff  time.Duration // pause between attempts
	RequestRate   float64       // requests per second, 0 for no limit
	UserAgent     string
}

// HTTPStatusChecker checks status codes with HEAD requests.
type HTTPStatusChecker struct {
	client        *http.Client
	userAgent     string
	retryAttempts int
	retryBackoff  time.Duration
	limiter       *rate.Limiter
}

func NewHTTPStatusChecker(opts StatusCheckerOptions) *HTTPStatusChecker {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRequestTimeout
	}
	if opts.RetryAttempts < 0 {
		opts.RetryAttempts = 0
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: opts.Timeout, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout: opts.Timeout,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}

	var limiter *rate.Limiter
	if opts.RequestRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestRate), 1)
	}

	return &HTTPStatusChecker{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent:     opts.UserAgent,
		retryAttempts: opts.RetryAttempts,
		retryBackoff:  opts.RetryBackoff,
		limiter:       limiter,
	}
}

// HeadStatus returns the status code of url. Connection failures are retried;
// when every attempt fails the error wraps ErrRetryExhausted.
func (c *HTTPStatusChecker) HeadStatus(ctx context.Context, url string) (int, error) {
	attempts := c.retryAttempts + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && c.retryBackoff > 0 {
			select {
			case <-time.After(c.retryBackoff):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return 0, err
			}
		}

		code, err := c.head(ctx, url)
		if err == nil {
			return code, nil
		}
		if !retryable(err) {
			return 0, err
		}
		lastErr = err
	}
	return 0, fmt.Errorf("%w for %s after %d attempts: %w", ErrRetryExhausted, url, attempts, lastErr)
}

func (c *HTTPStatusChecker) head(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// retryable reports whether err is a connection failure worth another attempt.
// DNS, TLS and timeout failures are final.
func retryable(err error) bool {
	if Classify(err) != KindUnknown {
		return false
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
