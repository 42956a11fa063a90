package random

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// Random produces identifiers and codes, and can be mocked for testing
type Random interface {
	// String generates a random string of the given length from the given
	// alphabet. Alphabets longer than 256 bytes are truncated.
	String(length int, alphabet string) string

	// UUID returns a new random (version 4) UUID in its canonical string form
	UUID() string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// String draws uniformly from alphabet. Bytes that would bias the draw
// towards the start of the alphabet are rejected and redrawn.
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	if len(alphabet) > 256 {
		alphabet = alphabet[:256]
	}

	n := len(alphabet)
	limit := 256 - 256%n

	result := make([]byte, 0, length)
	buf := make([]byte, length*2)
	for len(result) < length {
		// crypto/rand.Read never returns an error
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			result = append(result, alphabet[int(b)%n])
			if len(result) == length {
				break
			}
		}
	}
	return string(result)
}

// UUID returns a new random UUID
func (r *CryptoRandom) UUID() string {
	return uuid.NewString()
}
