package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/boardbank/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing. Queued results
// are returned first, then deterministic fallbacks, so game codes and ids stay
// predictable and distinct in tests.
type MockRandom struct {
	mu sync.Mutex

	// StringResults is a queue of results to return from String
	StringResults []string
	stringIndex   int
	stringCount   int

	// UUIDResults is a queue of results to return from UUID
	UUIDResults []string
	uuidIndex   int
	uuidCount   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// String returns the next queued result. Once the queue is drained it returns
// a counter padded to the requested length, so generated codes stay distinct.
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stringIndex >= len(r.StringResults) {
		r.stringCount++
		return fmt.Sprintf("%0*d", length, r.stringCount)
	}
	result := r.StringResults[r.stringIndex]
	r.stringIndex++
	return result
}

// UUID returns the next queued result, or "uuid-N" once the queue is drained
func (r *MockRandom) UUID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.uuidIndex >= len(r.UUIDResults) {
		r.uuidCount++
		return fmt.Sprintf("uuid-%d", r.uuidCount)
	}
	result := r.UUIDResults[r.uuidIndex]
	r.uuidIndex++
	return result
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StringResults = append(r.StringResults, values...)
}

// QueueUUID adds values to the UUID result queue
func (r *MockRandom) QueueUUID(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UUIDResults = append(r.UUIDResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StringResults = nil
	r.stringIndex = 0
	r.stringCount = 0
	r.UUIDResults = nil
	r.uuidIndex = 0
	r.uuidCount = 0
}
