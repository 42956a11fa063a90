// Package testutil holds helpers shared by package tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"
)

// NopLogger returns a logger that discards all output
func NopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// LogCapture records JSON log lines so tests can assert on them. It is safe
// for loggers used from several goroutines.
type LogCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewLogCapture returns a debug-level logger writing into a new LogCapture
func NewLogCapture() (*slog.Logger, *LogCapture) {
	c := &LogCapture{}
	return slog.New(slog.NewJSONHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug})), c
}

func (c *LogCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// Entries decodes every record written so far
func (c *LogCapture) Entries() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	var entries []map[string]any
	for line := range bytes.Lines(c.buf.Bytes()) {
		var entry map[string]any
		if json.Unmarshal(line, &entry) == nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Last returns the most recent record, or nil when nothing was logged
func (c *LogCapture) Last() map[string]any {
	entries := c.Entries()
	if len(entries) == 0 {
		return nil
	}
	return entries[len(entries)-1]
}

// Messages returns the msg field of every record in order
func (c *LogCapture) Messages() []string {
	var msgs []string
	for _, e := range c.Entries() {
		msg, _ := e["msg"].(string)
		msgs = append(msgs, msg)
	}
	return msgs
}
