package htcore

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// StatusCodeError is returned when HTTP endpoint responds with unexpected status code.
type StatusCodeError struct {
	Code int
}

// Error implements error interface.
func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("unexpected HTTP status code: code=%d", e.Code)
}

// URLFetcherParams represents various options for URLFetcher.
type URLFetcherParams struct {
	// URL - HTTP URL.
	URL string

	// Timeout - HTTP request timeout.
	Timeout time.Duration

	// User and Password are used for the HTTP basic authentication if User isn't empty.
	User     string
	Password string
}

// URLFetcher sends requests to the configured HTTP endpoint.
type URLFetcher struct {
	ctx    context.Context
	client *HTTPClient
	params URLFetcherParams
}

// NewURLFetcher is an initialization of URLFetcher.
//
// Parameters:
//   - ctx to pass to the HTTP request.
//   - client to perform an actual HTTP request.
//   - params - various fetcher options.
func NewURLFetcher(ctx context.Context, client *HTTPClient, params URLFetcherParams) *URLFetcher {
	return &URLFetcher{
		ctx:    ctx,
		client: client,
		params: params,
	}
}

// Fetch fetches data from the HTTP resource.
//
// Remarks:
//   - *StatusCodeError is returned if response code isn't 200.
func (f *URLFetcher) Fetch() ([]byte, error) {
	ctx, cancel := context.WithTimeout(f.ctx, f.params.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.params.URL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	if f.params.User != "" {
		req.SetBasicAuth(f.params.User, f.params.Password)
	}

	resp, body, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusCodeError{Code: resp.StatusCode}
	}

	return body, nil
}
