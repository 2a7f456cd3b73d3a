package fxsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "landedcost-fx/1.0 (+https://github.com/limjunsheng2110/CS203G4T2-Project-sub002)"

// NewHTTPClient returns the client shared by the HTTP sources.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// get performs a GET and maps transport failures and statuses onto the
// package's error kinds. The caller closes the body.
func get(ctx context.Context, client *http.Client, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)

	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("%w: %v", ErrNetworkTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	if err := classifyStatus(resp.StatusCode); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func classifyStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code >= 500:
		return fmt.Errorf("%w: status %d", ErrSourceUnavailable, code)
	default:
		return fmt.Errorf("%w: status %d", ErrInvalidResponse, code)
	}
}

// fetchJSON fetches JSON from a URL and returns the response body
func fetchJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	resp, err := get(ctx, client, url, "application/json")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// fetchPage fetches a web page and returns a goquery document
func fetchPage(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	resp, err := get(ctx, client, url, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %v", ErrParsingFailed, err)
	}
	return doc, nil
}
