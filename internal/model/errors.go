package model

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrMissingCV is returned when the CV text is empty or whitespace-only.
	ErrMissingCV = errors.New("Please provide your CV content.")
	// ErrMissingJobDescription is returned when the job description is empty or whitespace-only.
	ErrMissingJobDescription = errors.New("Please provide the job description.")
	// ErrMissingAPIKey is returned by providers constructed without a credential.
	ErrMissingAPIKey = errors.New("API key not configured")
	// ErrRetriesExhausted wraps the last upstream error once the rate-limit retry budget is spent.
	ErrRetriesExhausted = errors.New("max retries exceeded")
	// ErrEmptyLetter is returned when the model replies with no letter text.
	ErrEmptyLetter = errors.New("model returned an empty cover letter")
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err carries an HTTP 429 anywhere in its chain.
func IsRateLimited(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests
}
