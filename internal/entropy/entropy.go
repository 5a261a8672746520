// Package entropy provides the process-wide cryptographic random byte
// source used by key and parameter generation.
//
// The source is the operating system CSPRNG exposed through
// crypto/rand.Reader. It is opened lazily on first use and shared by
// every caller in the process; access is serialized so concurrent
// generators never interleave partial reads.
package entropy

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
)

// Source is a synchronized handle over a cryptographic byte stream.
type Source struct {
	mu sync.Mutex
	r  io.Reader
}

var (
	sharedOnce sync.Once
	shared     *Source
)

// Shared returns the process-wide source, opening it on first call.
func Shared() *Source {
	sharedOnce.Do(func() {
		shared = &Source{r: rand.Reader}
	})
	return shared
}

// NewSource wraps an arbitrary reader. Intended for tests that need a
// deterministic stream; production callers use Shared.
func NewSource(r io.Reader) *Source {
	return &Source{r: r}
}

// Bytes reads exactly n bytes from the underlying stream.
func (s *Source) Bytes(n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.r == nil {
		return nil, fmt.Errorf("entropy: source is closed")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return nil, fmt.Errorf("entropy: short read from system source: %w", err)
	}
	return buf, nil
}

// Close releases the source. Reads after Close fail. Closing the shared
// source is intended only for process teardown.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.r.(io.Closer); ok {
		s.r = nil
		return c.Close()
	}
	s.r = nil
	return nil
}
