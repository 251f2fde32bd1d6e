// Package netclient wraps the single outbound HTTPS channel the station
// has. It adds retries with exponential backoff and a circuit breaker
// around the raw transport.
//
// A Client is not meant to run concurrent requests: on the device the
// underlying channel is a single TLS session, so all callers go through
// the network lock domain of the resource guard.
package netclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff behaviour between retries.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

type Client struct {
	http    *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
	log     *logrus.Entry
}

func New(timeout time.Duration, log *logrus.Entry) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "outbound-https",
		MaxRequests: 2,
		Interval:    30 * time.Second,
		Timeout:     time.Minute,
	})

	return &Client{
		http:    &http.Client{Timeout: timeout},
		backoff: BackoffConfig{MaxRetries: 3, InitialInterval: 500 * time.Millisecond, MaxInterval: 5 * time.Second},
		circuit: cb,
		log:     log.WithField("component", "netclient"),
	}
}

// CloseIdleConnections tears down the pooled transport connections. The
// power controller calls this when it disconnects networking.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// Get performs an HTTPS GET and returns the raw response body. bearerToken,
// when non-empty, is sent as an Authorization header.
func (c *Client) Get(ctx context.Context, rawURL, bearerToken string) ([]byte, error) {
	return c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		if bearerToken != "" {
			req.Header.Set("Authorization", "Bearer "+bearerToken)
		}
		return req, nil
	})
}

// PostForm performs an HTTPS POST with a URL-encoded body and returns the
// raw response body. Used for the token exchange round trip.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	body := form.Encode()
	return c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, rawURL, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
}

// do executes the request with retries, exponential backoff and the
// circuit breaker, and drains the body so the connection can be reused.
func (c *Client) do(ctx context.Context, buildRequest func() (*http.Request, error)) ([]byte, error) {
	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := c.circuit.Execute(func() (interface{}, error) {
			resp, execErr := c.http.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests {
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			body, readErr := io.ReadAll(resp.Body)
			if readErr != nil {
				return nil, fmt.Errorf("reading response body: %w", readErr)
			}
			return body, nil
		})

		if err == nil {
			return result.([]byte), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		// Client-side status errors will not get better on retry.
		if errors.Is(err, errUnexpected) {
			return nil, err
		}

		lastErr = err
		if attempt >= c.backoff.MaxRetries {
			return nil, lastErr
		}

		delay := c.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if c.backoff.MaxInterval > 0 && delay > c.backoff.MaxInterval {
			delay = c.backoff.MaxInterval
		}
		c.log.WithError(err).WithField("attempt", attempt).Debug("request failed, backing off")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
