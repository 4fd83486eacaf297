package fetch

import (
	"context"
	"errors"
	"fmt"
)

// Fetcher performs a single GET against a health endpoint and returns the
// raw body. Connection failures, timeouts and non-2xx responses are errors.
// Fetchers never retry.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, url string) ([]byte, error)
}

var ErrNoFetcherAvailable = errors.New("no health fetcher available")

// maxErrorBody caps how much of an unsuccessful response is kept for error
// messages.
const maxErrorBody = 512

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
