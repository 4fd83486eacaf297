package testutils

import (
	"bufio"
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// Logger writes to the test log under -v and discards otherwise.
func Logger(t testing.TB) zerolog.Logger {
	t.Helper()

	if testing.Verbose() {
		return zerolog.New(zerolog.NewTestWriter(t))
	}

	return zerolog.Nop()
}

// LogCapture keeps every JSON event written by its logger.
type LogCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// CaptureLogger returns a debug level logger and the capture that records its
// events.
func CaptureLogger() (zerolog.Logger, *LogCapture) {
	c := &LogCapture{}
	return zerolog.New(c).Level(zerolog.DebugLevel), c
}

func (c *LogCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.buf.Write(p)
}

// Events returns the decoded events with the given message, in order.
func (c *LogCapture) Events(msg string) []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	var events []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(c.buf.Bytes()))
	for scanner.Scan() {
		var event map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}
		if event[zerolog.MessageFieldName] == msg {
			events = append(events, event)
		}
	}
	return events
}
