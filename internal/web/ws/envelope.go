package ws

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcoot/boardbank/internal/model"
)

// Envelope is one message on the wire in either direction
type Envelope struct {
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

var errNoEvent = errors.New("message has no event name")

// encode wraps a payload in an envelope
func encode(event model.EventType, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// decodeEnvelope parses an inbound frame
func decodeEnvelope(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("decoding envelope: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, errNoEvent
	}
	return env, nil
}

// decodeData parses an envelope's data into v. Numbers stay json.Number so
// amount validation sees the literal the client sent. Missing or null data
// leaves v at its zero value.
func decodeData(data json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding data: %w", err)
	}
	return nil
}
