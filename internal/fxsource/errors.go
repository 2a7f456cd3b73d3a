package fxsource

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Common fetch errors
var (
	ErrNetworkTimeout    = errors.New("network request timed out")
	ErrParsingFailed     = errors.New("failed to parse rate data")
	ErrInvalidResponse   = errors.New("invalid response from rate source")
	ErrRateLimited       = errors.New("rate limited by rate source")
	ErrSourceUnavailable = errors.New("rate source unavailable")
	ErrPairNotQuoted     = errors.New("currency pair not quoted by source")
)

// FetchError records which source failed for which pair
type FetchError struct {
	Source    string
	Pair      string
	Err       error
	Timestamp time.Time
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Source, e.Pair, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func newFetchError(source, from, to string, err error) *FetchError {
	return &FetchError{
		Source:    source,
		Pair:      from + "/" + to,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// IsRetryableError determines if an error should be retried
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Context errors should not be retried
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return errors.Is(err, ErrNetworkTimeout) ||
		errors.Is(err, ErrSourceUnavailable) ||
		errors.Is(err, ErrRateLimited)
}
