package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

var _ Fetcher = (*HTTPFetcher)(nil)

// maxBody caps how much of a health response is read.
const maxBody = 1 << 20

type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a fetcher that uses the given client, or a new
// client with the given per-request timeout if client is nil.
func NewHTTPFetcher(client *http.Client, timeout time.Duration) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Name() string {
	return "http"
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET %s request: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get health: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read health response: %w", err)
	}
	if !successful(resp) {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(body)}
	}

	return body, nil
}

func successful(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
