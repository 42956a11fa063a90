package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/mcoot/boardbank/internal/model"
)

// Frame is one message on the realtime connection
type Frame struct {
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Decode unmarshals the frame's data into v
func (f Frame) Decode(v any) error {
	if len(f.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(f.Data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", f.Event, err)
	}
	return nil
}

// EventError is an error event sent back by the server
type EventError struct {
	Event   model.EventType
	Code    string
	Message string
}

func (e *EventError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

var errNoResponse = errors.New("no response from server; the request was ignored")

// Conn is a realtime connection to the server's /ws endpoint
type Conn struct {
	ws *websocket.Conn
	id model.ConnectionID
}

// Dial opens a realtime connection and waits for the server to announce the
// connection's identity
func Dial(ctx context.Context, serverURL string) (*Conn, error) {
	ws, _, err := websocket.Dial(ctx, realtimeURL(serverURL), nil)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	ws.SetReadLimit(1 << 20)

	c := &Conn{ws: ws}

	frame, err := c.Await(ctx, model.EventConnected)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	var connected model.ConnectedPayload
	if err := frame.Decode(&connected); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.id = connected.ConnectionID

	return c, nil
}

// ID returns the identity the server assigned to this connection
func (c *Conn) ID() model.ConnectionID {
	return c.id
}

// Send writes one request frame
func (c *Conn) Send(ctx context.Context, event model.EventType, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", event, err)
	}
	if cfg != nil && cfg.Verbose {
		fmt.Fprintf(errWriter, "> %s %s\n", event, payload)
	}
	return wsjson.Write(ctx, c.ws, Frame{Event: event, Data: payload})
}

// Next reads the next frame
func (c *Conn) Next(ctx context.Context) (Frame, error) {
	var frame Frame
	if err := wsjson.Read(ctx, c.ws, &frame); err != nil {
		if ctx.Err() != nil {
			return frame, ctx.Err()
		}
		return frame, fmt.Errorf("connection lost: %w", err)
	}
	if cfg != nil && cfg.Verbose {
		fmt.Fprintf(errWriter, "< %s %s\n", frame.Event, frame.Data)
	}
	return frame, nil
}

// Await reads frames until one named want arrives. A frame named in failures
// is returned as an *EventError. Other frames are skipped.
func (c *Conn) Await(ctx context.Context, want model.EventType, failures ...model.EventType) (Frame, error) {
	for {
		frame, err := c.Next(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return frame, errNoResponse
			}
			return frame, err
		}

		if frame.Event == want {
			return frame, nil
		}
		if slices.Contains(failures, frame.Event) {
			var payload model.ErrorPayload
			if err := frame.Decode(&payload); err != nil {
				return frame, err
			}
			return frame, &EventError{Event: frame.Event, Code: payload.Code, Message: payload.Message}
		}
	}
}

// Request sends one request and waits for its answer
func (c *Conn) Request(ctx context.Context, event model.EventType, data any, want model.EventType) (Frame, error) {
	if err := c.Send(ctx, event, data); err != nil {
		return Frame{}, err
	}

	failures := []model.EventType{model.EventError}
	if failure, ok := model.ErrorEvent(event); ok {
		failures = append(failures, failure)
	}
	return c.Await(ctx, want, failures...)
}

// Close closes the connection normally
func (c *Conn) Close() error {
	return c.ws.Close(websocket.StatusNormalClosure, "")
}

// realtimeURL maps the HTTP server URL onto its websocket endpoint
func realtimeURL(serverURL string) string {
	u := strings.TrimSuffix(serverURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}
