package mocks

import (
	"sync"

	"github.com/mcoot/boardbank/internal/model"
	"github.com/mcoot/boardbank/internal/services/fanout"
)

// SentEvent is one event recorded by MockNotifier
type SentEvent struct {
	Conn    model.ConnectionID
	Event   model.EventType
	Payload any
}

// MockNotifier records every event instead of delivering it. Broadcasts are
// expanded into one SentEvent per group member so tests can assert per
// connection.
type MockNotifier struct {
	mu     sync.Mutex
	groups map[string][]model.ConnectionID
	sent   []SentEvent
	kicked []model.ConnectionID
}

// Ensure MockNotifier implements Notifier
var _ fanout.Notifier = (*MockNotifier)(nil)

// NewMockNotifier creates a new MockNotifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{groups: make(map[string][]model.ConnectionID)}
}

// Subscribe adds conn to group
func (n *MockNotifier) Subscribe(conn model.ConnectionID, group string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, c := range n.groups[group] {
		if c == conn {
			return
		}
	}
	n.groups[group] = append(n.groups[group], conn)
}

// Unsubscribe removes conn from group
func (n *MockNotifier) Unsubscribe(conn model.ConnectionID, group string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.removeLocked(conn, group)
}

func (n *MockNotifier) removeLocked(conn model.ConnectionID, group string) {
	members := n.groups[group]
	for i, c := range members {
		if c == conn {
			n.groups[group] = append(members[:i:i], members[i+1:]...)
			return
		}
	}
}

// Members returns the connections in group in subscription order
func (n *MockNotifier) Members(group string) []model.ConnectionID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.ConnectionID(nil), n.groups[group]...)
}

// Send records an event for conn
func (n *MockNotifier) Send(conn model.ConnectionID, event model.EventType, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, SentEvent{Conn: conn, Event: event, Payload: payload})
}

// Broadcast records an event for every member of group
func (n *MockNotifier) Broadcast(group string, event model.EventType, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, conn := range n.groups[group] {
		n.sent = append(n.sent, SentEvent{Conn: conn, Event: event, Payload: payload})
	}
}

// Kick records the connection and drops it from every group
func (n *MockNotifier) Kick(conn model.ConnectionID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kicked = append(n.kicked, conn)
	for group := range n.groups {
		n.removeLocked(conn, group)
	}
}

// Sent returns every recorded event
func (n *MockNotifier) Sent() []SentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]SentEvent(nil), n.sent...)
}

// SentTo returns the events recorded for conn, optionally filtered by type
func (n *MockNotifier) SentTo(conn model.ConnectionID, events ...model.EventType) []SentEvent {
	var out []SentEvent
	for _, e := range n.Sent() {
		if e.Conn != conn {
			continue
		}
		if len(events) > 0 && !containsEvent(events, e.Event) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Last returns the most recent event of the given type sent to conn
func (n *MockNotifier) Last(conn model.ConnectionID, event model.EventType) (SentEvent, bool) {
	events := n.SentTo(conn, event)
	if len(events) == 0 {
		return SentEvent{}, false
	}
	return events[len(events)-1], true
}

// Kicked returns the connections that were kicked
func (n *MockNotifier) Kicked() []model.ConnectionID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.ConnectionID(nil), n.kicked...)
}

// Reset forgets recorded events and kicks but keeps group membership
func (n *MockNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
	n.kicked = nil
}

func containsEvent(events []model.EventType, e model.EventType) bool {
	for _, candidate := range events {
		if candidate == e {
			return true
		}
	}
	return false
}
