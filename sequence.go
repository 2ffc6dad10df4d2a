package rcon

import (
	"sync/atomic"

	"github.com/pior/rcon/protocol"
)

// Sequence allocates request ids. Ids start at 1 and increase
// monotonically; the sentinel id is skipped so the synthetic end-marker
// packet can never collide with a real command, no matter how long the
// sequence runs.
//
// A single Sequence is shared by every session a Console constructs, so
// ids never repeat across the foreground and background connections.
// Safe for concurrent use.
type Sequence struct {
	n atomic.Int32
}

// NewSequence returns a Sequence whose first Next is 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the next request id.
func (s *Sequence) Next() int32 {
	for {
		id := s.n.Add(1)
		if id != protocol.SentinelID {
			return id
		}
	}
}
