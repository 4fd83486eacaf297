package healthtest

import (
	"context"
	"errors"
	"sync"
)

var ErrConnectionRefused = errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")

// Probe is a StatusProbe with a fixed answer that counts its calls.
type Probe struct {
	mu       sync.Mutex
	IsActive bool
	Err      error
	calls    int
}

func (p *Probe) Active(_ context.Context, _ string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	return p.IsActive, p.Err
}

func (p *Probe) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls
}

// Response is one scripted fetch result.
type Response struct {
	Body string
	Err  error
}

func Body(body string) Response {
	return Response{Body: body}
}

func Failure(err error) Response {
	return Response{Err: err}
}

// Fetcher replays a sequence of responses. Once the sequence is exhausted,
// the last response repeats.
type Fetcher struct {
	mu        sync.Mutex
	responses []Response
	calls     int
	// OnFetch, if set, is called before each response is returned.
	OnFetch func(ctx context.Context, call int)
}

func NewFetcher(responses ...Response) *Fetcher {
	return &Fetcher{responses: responses}
}

func (f *Fetcher) Fetch(ctx context.Context, _ string) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	var resp Response
	if len(f.responses) > 0 {
		resp = f.responses[min(call, len(f.responses))-1]
	}
	onFetch := f.OnFetch
	f.mu.Unlock()

	if onFetch != nil {
		onFetch(ctx, call)
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return []byte(resp.Body), nil
}

func (f *Fetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

// Collector is a log collector that returns fixed lines and counts its calls.
type Collector struct {
	mu    sync.Mutex
	Lines []string
	calls int
}

func (c *Collector) Collect(_ context.Context, _ string, lines int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	if len(c.Lines) > lines {
		return c.Lines[len(c.Lines)-lines:]
	}
	return c.Lines
}

func (c *Collector) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls
}
