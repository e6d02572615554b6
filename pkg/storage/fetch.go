package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	resty "github.com/go-resty/resty/v2"
)

// ErrFetchFailed is returned when a sheet URL cannot be downloaded.
var ErrFetchFailed = errors.New("storage: fetch failed")

// FetchError names the URL that failed. It matches ErrFetchFailed.
type FetchError struct {
	URL    string
	Status int // zero for transport errors
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("storage: fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("storage: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetchFailed}
	}
	return []error{ErrFetchFailed, e.Err}
}

// Fetcher downloads stored sheets by URL.
type Fetcher struct {
	client *resty.Client
}

// NewFetcher returns a Fetcher whose requests time out after timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", ContentTypePDF),
	}
}

// NewFetcherWithClient wraps an existing *http.Client (tests use the one
// from httptest).
func NewFetcherWithClient(hc *http.Client) *Fetcher {
	return &Fetcher{client: resty.NewWithClient(hc).SetHeader("Accept", ContentTypePDF)}
}

// Fetch returns the body at url. Anything but a 2xx answer is an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, &FetchError{URL: url, Err: errors.New("empty url")}
	}

	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &FetchError{URL: url, Err: ctxErr}
		}
		return nil, &FetchError{URL: url, Err: err}
	}
	if !res.IsSuccess() {
		return nil, &FetchError{URL: url, Status: res.StatusCode()}
	}
	return res.Body(), nil
}
