package blastengine

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// HTTPDoer is the interface for executing HTTP requests. Both *http.Client
// and *retryTransport satisfy it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// retryTransport wraps an HTTPDoer with bounded retries using exponential
// backoff and full jitter. Transient failures (connection errors and the
// retryable status codes below) are retried; anything else is returned to
// the caller untouched.
type retryTransport struct {
	client     HTTPDoer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     *logrus.Logger
}

func newRetryTransport(client HTTPDoer, maxRetries int, logger *logrus.Logger) *retryTransport {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &retryTransport{
		client:     client,
		maxRetries: maxRetries,
		baseDelay:  time.Second,
		maxDelay:   30 * time.Second,
		logger:     logger,
	}
}

// Do executes the request, retrying transient failures. On the final attempt
// the response is returned as-is so the caller can inspect status and body.
func (rt *retryTransport) Do(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= rt.maxRetries; attempt++ {
		if req.Context().Err() != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, req.Context().Err()
		}

		if attempt > 0 {
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("resetting request body for retry: %w", err)
				}
				req.Body = body
			}

			delay := rt.backoff(attempt)
			rt.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"max":     rt.maxRetries,
				"method":  req.Method,
				"path":    req.URL.Path,
				"delay":   delay.String(),
			}).Warn("Retrying provider request")

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-req.Context().Done():
				timer.Stop()
				if lastErr != nil {
					return nil, lastErr
				}
				return nil, req.Context().Err()
			}
		}

		resp, err := rt.client.Do(req)
		if err != nil {
			lastErr = err
			if req.Context().Err() != nil {
				return nil, err
			}
			continue
		}

		if !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if attempt == rt.maxRetries {
			return resp, nil
		}

		// Drain for connection reuse before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("provider returned retryable status %d", resp.StatusCode)
	}

	return nil, lastErr
}

// backoff returns the delay before the given retry attempt: full jitter over
// an exponential curve, capped at maxDelay, floored at a tenth of baseDelay.
func (rt *retryTransport) backoff(attempt int) time.Duration {
	expDelay := float64(rt.baseDelay) * math.Pow(2, float64(attempt-1))
	if expDelay > float64(rt.maxDelay) {
		expDelay = float64(rt.maxDelay)
	}
	jittered := time.Duration(rand.Float64() * expDelay)
	if floor := rt.baseDelay / 10; jittered < floor {
		jittered = floor
	}
	return jittered
}

// isRetryableStatus reports whether the status code indicates a transient
// condition worth retrying. Matches the provider's documented retry set.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, // 408
		http.StatusTooEarly,            // 425
		http.StatusTooManyRequests,     // 429
		http.StatusInternalServerError, // 500
		http.StatusBadGateway,          // 502
		http.StatusServiceUnavailable,  // 503
		http.StatusGatewayTimeout:      // 504
		return true
	default:
		return false
	}
}
